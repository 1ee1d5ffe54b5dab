package toreta

import browserx "github.com/tsukimori/yoyaku-agent/agent/browser"

const idPrefix = "TRT"

// Toreta fronts suspicious traffic with a generic challenge page.
var blockMarkers = []string{"captcha", "challenge"}

// First page: terms consent plus the start button.
var consentSelectors = []browserx.Candidate{
	browserx.Css(`input[type="checkbox"][name*="agree"]`),
	browserx.Css(`input[type="checkbox"][name*="terms"]`),
	browserx.Css(`input[type="checkbox"]`),
	browserx.Css(".consent-checkbox"),
}

var startSelectors = []browserx.Candidate{
	browserx.ByText("button", "予約する"),
	browserx.ByText("button", "予約へ進む"),
	browserx.ByText("a", "予約する"),
	browserx.Css(".reserve-button"),
	browserx.Css(`button[type="submit"]`),
}

var dateInputSelectors = []browserx.Candidate{
	browserx.Css(`input[type="date"]`),
	browserx.Css(`input[name="date"]`),
}

func daySelectors(isoDate, day string) []browserx.Candidate {
	return []browserx.Candidate{
		browserx.Css(`td[data-date="` + isoDate + `"]`),
		browserx.Css(`[data-date="` + isoDate + `"]`),
		browserx.ByText("button", day),
		browserx.ByText("td", day),
	}
}

func timeOptionSelectors(hhmm string) []browserx.Candidate {
	return []browserx.Candidate{
		browserx.ByText("button", hhmm),
		browserx.ByText("option", hhmm),
		browserx.ByText("li", hhmm),
	}
}

var timeInputSelectors = []browserx.Candidate{
	browserx.Css(`select[name="time"]`),
	browserx.Css(`input[name="time"]`),
}

func partyOptionSelectors(size string) []browserx.Candidate {
	return []browserx.Candidate{
		browserx.ByText("button", size+"名"),
		browserx.ByText("option", size),
	}
}

var partyInputSelectors = []browserx.Candidate{
	browserx.Css(`select[name="seats"]`),
	browserx.Css(`select[name="party_size"]`),
	browserx.Css(`input[name="seats"]`),
}

// Page-to-page advance buttons.
var nextSelectors = []browserx.Candidate{
	browserx.ByText("button", "次へ"),
	browserx.ByText("button", "進む"),
	browserx.ByText("a", "次へ"),
	browserx.Css(".next-button"),
}

var nameFieldSelectors = []browserx.Candidate{
	browserx.Css(`input[name="name"]`),
	browserx.Css(`input[name*="name"]`),
	browserx.Css(`input[placeholder*="名前"]`),
	browserx.Css(`input[placeholder*="氏名"]`),
}

var phoneFieldSelectors = []browserx.Candidate{
	browserx.Css(`input[name="tel"]`),
	browserx.Css(`input[type="tel"]`),
	browserx.Css(`input[name*="phone"]`),
	browserx.Css(`input[placeholder*="電話"]`),
}

var emailFieldSelectors = []browserx.Candidate{
	browserx.Css(`input[name="email"]`),
	browserx.Css(`input[type="email"]`),
	browserx.Css(`input[placeholder*="メール"]`),
}

var requestsFieldSelectors = []browserx.Candidate{
	browserx.Css(`textarea[name="note"]`),
	browserx.Css(`textarea[name*="request"]`),
	browserx.Css(`textarea[placeholder*="要望"]`),
}

var confirmSelectors = []browserx.Candidate{
	browserx.ByText("button", "確認"),
	browserx.ByText("button", "内容を確認"),
	browserx.Css(`button[type="submit"]`),
}

var finalConfirmSelectors = []browserx.Candidate{
	browserx.ByText("button", "予約を確定する"),
	browserx.ByText("button", "この内容で予約"),
	browserx.ByText("button", "OK"),
	browserx.ByText("button", "はい"),
}
