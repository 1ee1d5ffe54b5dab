package tabelog

import browserx "github.com/tsukimori/yoyaku-agent/agent/browser"

const (
	landingURL = "https://tabelog.com/"
	idPrefix   = "TBL"
)

// URL markers of the bot-detection interstitial.
var blockMarkers = []string{"ai_request_booking"}

var phoneSelectors = []browserx.Candidate{
	browserx.Css(".rst-info-table__tel-num"),
	browserx.Css(".rstinfo-table__tel-num"),
}

// Reservation entry points, most specific first.
var entrySelectors = []browserx.Candidate{
	browserx.Css(`a[href*="rstdtl-reservation"]`),
	browserx.Css(`a[href*="/reservation/"]`),
	browserx.ByText("a", "ネット予約"),
	browserx.ByText("a", "空席確認・予約"),
	browserx.Css(".rstdtl-reservation-btn a"),
	browserx.Css(".rstdtl-side-reserve-btn a"),
	browserx.ByText("button", "予約"),
	browserx.Css(`a[class*="reservation"]`),
	browserx.Css("a.js-reservation-btn"),
}

var dateInputSelectors = []browserx.Candidate{
	browserx.Css(`input[type="date"]`),
}

var calendarOpenSelectors = []browserx.Candidate{
	browserx.Css(".js-calendar-icon"),
	browserx.Css(`button[aria-label*="カレンダー"]`),
	browserx.Css(".calendar-trigger"),
	browserx.Css(`[class*="calendar-btn"]`),
}

func daySelectors(isoDate, day string) []browserx.Candidate {
	return []browserx.Candidate{
		browserx.Css(`td[data-date="` + isoDate + `"]`),
		browserx.ByText("button", day),
		browserx.ByText("a", day),
		browserx.ByText("*[contains(@class,'calendar-day')]", day),
	}
}

func timeOptionSelectors(hhmm string) []browserx.Candidate {
	return []browserx.Candidate{
		browserx.ByText("button", hhmm),
		browserx.ByText("a", hhmm),
		browserx.ByText("option", hhmm),
	}
}

var timeInputSelectors = []browserx.Candidate{
	browserx.Css(`input[name="reservation_time"]`),
	browserx.Css(`select[name="time"]`),
}

func partyOptionSelectors(size string) []browserx.Candidate {
	return []browserx.Candidate{
		browserx.ByText("button", size+"名"),
		browserx.ByText("button", size+"人"),
		browserx.ByText("option", size),
	}
}

var partyInputSelectors = []browserx.Candidate{
	browserx.Css(`select[name="party_size"]`),
	browserx.Css(`select[name="number"]`),
	browserx.Css(`input[name="party_size"]`),
}

// Course bypass: prefer an explicit "no course / seat only" option,
// then a generic skip control.
var noCourseSelectors = []browserx.Candidate{
	browserx.ByText("button", "コースなし"),
	browserx.ByText("button", "席のみ"),
	browserx.ByText("button", "アラカルト"),
	browserx.ByText("a", "コースなし"),
	browserx.ByText("a", "席のみ予約"),
}

var noSeatSelectors = []browserx.Candidate{
	browserx.ByText("button", "指定なし"),
	browserx.ByText("button", "お任せ"),
	browserx.ByText("a", "指定なし"),
	browserx.ByText("a", "お任せ"),
}

var skipSelectors = []browserx.Candidate{
	browserx.ByText("button", "スキップ"),
	browserx.ByText("button", "次へ"),
	browserx.ByText("button", "続ける"),
	browserx.ByText("a", "スキップ"),
	browserx.Css(".skip-button"),
}

var nameFieldSelectors = []browserx.Candidate{
	browserx.Css(`input[name*="name"]`),
	browserx.Css(`input[placeholder*="名前"]`),
	browserx.Css(`input[placeholder*="氏名"]`),
	browserx.Css("#name"),
	browserx.Css(".name-input"),
}

var phoneFieldSelectors = []browserx.Candidate{
	browserx.Css(`input[name*="phone"]`),
	browserx.Css(`input[name*="tel"]`),
	browserx.Css(`input[type="tel"]`),
	browserx.Css(`input[placeholder*="電話"]`),
	browserx.Css("#phone"),
	browserx.Css(".phone-input"),
}

var emailFieldSelectors = []browserx.Candidate{
	browserx.Css(`input[name*="email"]`),
	browserx.Css(`input[name*="mail"]`),
	browserx.Css(`input[type="email"]`),
	browserx.Css(`input[placeholder*="メール"]`),
	browserx.Css("#email"),
	browserx.Css(".email-input"),
}

var requestsFieldSelectors = []browserx.Candidate{
	browserx.Css(`textarea[name*="request"]`),
	browserx.Css(`textarea[name*="comment"]`),
	browserx.Css(`textarea[placeholder*="要望"]`),
	browserx.Css("#requests"),
}

var consentSelectors = []browserx.Candidate{
	browserx.Css(`input[type="checkbox"][name*="agree"]`),
	browserx.Css(`input[type="checkbox"][name*="terms"]`),
	browserx.Css(".agreement-checkbox"),
	browserx.Css("#agree"),
}

var submitSelectors = []browserx.Candidate{
	browserx.ByText("button", "予約を確定"),
	browserx.ByText("button", "予約する"),
	browserx.ByText("button", "確認画面へ"),
	browserx.Css(`input[type="submit"][value*="予約"]`),
	browserx.Css(".submit-button"),
	browserx.Css("#submit"),
}

var finalConfirmSelectors = []browserx.Candidate{
	browserx.ByText("button", "予約を確定する"),
	browserx.ByText("button", "この内容で予約"),
	browserx.ByText("button", "確定"),
	browserx.Css(`input[type="submit"][value*="確定"]`),
}
