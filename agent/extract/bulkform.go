package extract

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// BulkForm is the one-message labeled form accepted as a shortcut from
// the datetime step straight to confirmation.
type BulkForm struct {
	Datetime        string // ISO-8601, assembled from the 日時 label
	PartySize       int
	Contact         contractx.Contact
	SpecialRequests string
}

var (
	bulkDatetime = regexp.MustCompile(`日時:\s*([0-9-]+)\s+([0-9:]+)`)
	bulkParty    = regexp.MustCompile(`人数:\s*(\d+)名`)
	bulkName     = regexp.MustCompile(`名前:\s*([^,]+)`)
	bulkPhone    = regexp.MustCompile(`電話:\s*([^,]+)`)
	bulkEmail    = regexp.MustCompile(`メール:\s*([^,]+)`)
	bulkRequests = regexp.MustCompile(`要望:\s*(.+?)(?:$|,)`)
)

// IsBulkForm reports whether the input looks like the labeled bulk
// form rather than a plain datetime reply.
func IsBulkForm(text string) bool {
	return strings.HasPrefix(text, "日時:") &&
		strings.Contains(text, "人数:") &&
		strings.Contains(text, "名前:")
}

// ParseBulkForm parses all labeled fields at once. When required labels
// are missing it returns their display names; the caller reports the
// list and keeps the session at the datetime step.
func ParseBulkForm(text string) (BulkForm, []string, error) {
	var missing []string

	dt := bulkDatetime.FindStringSubmatch(text)
	if dt == nil {
		missing = append(missing, "日時")
	}
	party := bulkParty.FindStringSubmatch(text)
	if party == nil {
		missing = append(missing, "人数")
	}
	name := bulkName.FindStringSubmatch(text)
	if name == nil {
		missing = append(missing, "名前")
	}
	phone := bulkPhone.FindStringSubmatch(text)
	if phone == nil {
		missing = append(missing, "電話番号")
	}
	email := bulkEmail.FindStringSubmatch(text)
	if email == nil {
		missing = append(missing, "メールアドレス")
	}

	if len(missing) > 0 {
		return BulkForm{}, missing, fmt.Errorf("%w: missing bulk form fields: %s", contractx.ErrValidation, strings.Join(missing, ", "))
	}

	size, err := PartySize(party[1])
	if err != nil {
		return BulkForm{}, nil, err
	}

	form := BulkForm{
		Datetime:  fmt.Sprintf("%sT%s:00", dt[1], dt[2]),
		PartySize: size,
		Contact: contractx.Contact{
			Name:  strings.TrimSpace(name[1]),
			Phone: strings.TrimSpace(phone[1]),
			Email: strings.TrimSpace(email[1]),
		},
	}
	if req := bulkRequests.FindStringSubmatch(text); req != nil {
		if v := strings.TrimSpace(req[1]); v != "" && v != "なし" {
			form.SpecialRequests = v
		}
	}
	return form, nil, nil
}
