package extract

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// Ordered phone patterns; the first match wins. Mobile numbers before
// landlines before bare digit runs, so the most specific shape is
// preferred.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`0[789]0-?\d{4}-?\d{4}`),
	regexp.MustCompile(`0\d{1,4}-?\d{1,4}-?\d{4}`),
	regexp.MustCompile(`\d{10,11}`),
}

var nameSeparators = regexp.MustCompile(`[、,\s]+`)

// Contact extracts a name and phone number from one line of text. The
// name is the residual text after removing the phone match, with purely
// numeric tokens discarded.
func Contact(text string) (contractx.Contact, error) {
	var phone string
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			phone = m
			break
		}
	}

	residual := text
	if phone != "" {
		residual = strings.Replace(residual, phone, "", 1)
	}

	parts := nameSeparators.Split(strings.TrimSpace(residual), -1)
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || isDigits(part) {
			continue
		}
		kept = append(kept, part)
	}
	name := strings.TrimSpace(strings.Join(kept, " "))

	if name == "" || phone == "" {
		return contractx.Contact{}, fmt.Errorf("%w: contact needs both name and phone, got name=%q phone=%q", contractx.ErrValidation, name, phone)
	}

	return contractx.Contact{Name: name, Phone: phone}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
