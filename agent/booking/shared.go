package booking

import (
	"regexp"
	"strings"
	"time"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// reservationIDPatterns is the ordered regex list tried over the final
// page content; the first capture wins.
var reservationIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`予約番号[：:]\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`予約ID[：:]\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`受付番号[：:]\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`確認番号[：:]\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`[A-Z]{2,3}-\d{6,10}`),
}

// ExtractReservationID scans page content for a reservation identifier
// and falls back to a synthesized timestamp-based one with the given
// site prefix.
func ExtractReservationID(content, prefix string, now time.Time) string {
	for _, p := range reservationIDPatterns {
		if m := p.FindStringSubmatch(content); m != nil {
			if len(m) > 1 {
				return m[1]
			}
			return m[0]
		}
	}
	return prefix + "-" + now.Format("20060102150405")
}

var completionTexts = []string{
	"予約が完了しました",
	"予約を受け付けました",
	"ご予約ありがとうございます",
	"予約完了",
}

var completionURLMarkers = []string{"complete", "success", "thanks"}

// CompletionDetected reports whether the post-submit page shows
// completion evidence, by text marker or URL marker.
func CompletionDetected(location, content string) bool {
	for _, t := range completionTexts {
		if strings.Contains(content, t) {
			return true
		}
	}
	for _, m := range completionURLMarkers {
		if strings.Contains(location, m) {
			return true
		}
	}
	return false
}

// Info snapshots the attempted booking values for manual-completion
// instructions.
func Info(req contractx.BookingRequest) contractx.BookingInfo {
	return contractx.BookingInfo{
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
		CustomerName: req.Contact.Name,
		Phone:        req.Contact.Phone,
		Email:        req.Contact.Email,
	}
}

// URLBlocked reports whether the current URL carries one of the known
// bot-detection markers.
func URLBlocked(location string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(location, m) {
			return true
		}
	}
	return false
}
