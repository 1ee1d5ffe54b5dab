package reservationnode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

// Conversation copy. The flow speaks Japanese end to end; options carry
// the tappable quick replies for each prompt.

var datetimeOptions = []string{"今日のディナー", "明日のランチ", "今度の週末", "具体的な日時を入力"}

var partySizeOptions = []string{"1名", "2名", "3名", "4名", "5名", "6名", "その他"}

var requestsOptions = []string{"なし", "個室希望", "禁煙席希望", "アレルギーあり"}

var confirmationOptions = []string{"実行", "修正", "キャンセル"}

var aiBlockedOptions = []string{"予約サイトを開く", "今すぐ電話する", "別のレストランを探す", "他の予約サイトを使う"}

var semiAutomatedOptions = []string{"ブラウザで予約を完了しました", "電話で予約する", "別のレストランを探す"}

var manualFallbackOptions = []string{"電話で予約する", "別のレストランを探す"}

var retryOptions = []string{"実行", "電話で予約する", "キャンセル"}

const datetimePrompt = "ご予約希望の日時を教えてください。\n例: 「明日の19時」「12月25日 18時30分」「今週土曜日のランチ」"

const datetimeRetryPrompt = "申し訳ございません、日時を読み取れませんでした。\nもう一度、ご希望の日時を教えてください。\n例: 「明日の19時」「12月25日 18時30分」"

const partySizePrompt = "何名様でのご予約でしょうか?"

const partySizeRetryPrompt = "人数を読み取れませんでした。数字でお答えください。\n例: 「4名」「2人」"

const contactPrompt = "ご予約者様のお名前と電話番号を教えてください。\n例: 「田中太郎 090-1234-5678」"

const contactRetryPrompt = "お名前と電話番号の両方を読み取れませんでした。\nもう一度、お名前と電話番号をあわせて教えてください。\n例: 「田中太郎 090-1234-5678」"

const emailPrompt = "確認メールをお送りするメールアドレスを教えてください。\n例: tanaka@example.com"

const emailRetryPrompt = "メールアドレスの形式が正しくないようです。\nもう一度入力してください。\n例: tanaka@example.com"

const requestsPrompt = "特別なご要望はございますか?\n(アレルギー対応、お席のご希望など。なければ「なし」とお答えください)"

func ackDatetime(t time.Time) string {
	return fmt.Sprintf("%s ですね。承知しました。", formatDatetime(t))
}

func ackPartySize(size int) string {
	return fmt.Sprintf("%d名様ですね。", size)
}

func ackContact(c contractx.Contact) string {
	return fmt.Sprintf("%s様、お電話番号 %s で承りました。", c.Name, c.Phone)
}

const ackEmail = "メールアドレスを承りました。"

// promptFor returns the question that opens the given collection step.
func promptFor(step statex.Step) string {
	switch step {
	case statex.StepDatetimeInput:
		return datetimePrompt
	case statex.StepPartySizeInput:
		return partySizePrompt
	case statex.StepContactInfoInput:
		return contactPrompt
	case statex.StepEmailInput:
		return emailPrompt
	case statex.StepSpecialRequestsInput:
		return requestsPrompt
	}
	return ""
}

func optionsFor(step statex.Step) []string {
	switch step {
	case statex.StepDatetimeInput:
		return datetimeOptions
	case statex.StepPartySizeInput:
		return partySizeOptions
	case statex.StepSpecialRequestsInput:
		return requestsOptions
	case statex.StepConfirmation:
		return confirmationOptions
	}
	return nil
}

func renderBulkFormMissing(missing []string) string {
	return fmt.Sprintf("入力フォームに不足があります: %s\n\nすべての項目をご記入の上、もう一度お送りください。\n例:\n日時: 2025-12-25 19:00, 人数: 4名, 名前: 田中太郎, 電話: 090-1234-5678, メール: tanaka@example.com, 要望: なし",
		strings.Join(missing, "、"))
}

// renderConfirmation builds the full summary block shown before
// execution and after every edit.
func renderConfirmation(sess *statex.ReservationSession) string {
	var b strings.Builder
	b.WriteString("ご予約内容をご確認ください。\n\n")
	fmt.Fprintf(&b, "【店舗】%s\n", sess.Restaurant.Name)
	if t, ok := sess.ReservationTime(); ok {
		fmt.Fprintf(&b, "【日時】%s\n", formatDatetime(t))
	}
	fmt.Fprintf(&b, "【人数】%d名\n", sess.Fields.PartySize)
	if c := sess.Fields.Contact; c != nil {
		fmt.Fprintf(&b, "【お名前】%s\n", c.Name)
		fmt.Fprintf(&b, "【電話番号】%s\n", c.Phone)
	}
	if sess.Fields.Email != "" {
		fmt.Fprintf(&b, "【メール】%s\n", sess.Fields.Email)
	}
	requests := sess.Fields.SpecialRequests
	if requests == "" {
		requests = "なし"
	}
	fmt.Fprintf(&b, "【ご要望】%s\n", requests)
	b.WriteString("\nこの内容で予約を実行してもよろしいですか?\n「実行」で予約、「修正」で変更、「キャンセル」で中止できます。")
	return b.String()
}

const editMenu = "どの項目を修正しますか?\n1. 日時\n2. 人数\n3. お名前・電話番号\n4. メールアドレス\n5. ご要望\n\n項目名でお答えください。"

const confirmationNotUnderstood = "申し訳ございません。入力を理解できませんでした。\n「実行」「修正」「キャンセル」のいずれかを選んでください。"

const cancelledMessage = "ご予約をキャンセルしました。またのご利用をお待ちしております。"

func renderBookingSuccess(result *contractx.BookingResult) string {
	var b strings.Builder
	b.WriteString("🎉 ご予約が完了しました!\n")
	if result.ReservationID != "" {
		fmt.Fprintf(&b, "予約番号: %s\n", result.ReservationID)
	}
	b.WriteString("当日のご来店をお待ちしております。")
	return b.String()
}

func renderBookingFailure(result *contractx.BookingResult) string {
	var b strings.Builder
	switch {
	case result.ErrorKind == contractx.ErrorKindAIDetection:
		b.WriteString("申し訳ございません。予約サイトの自動予約対策によりオンライン予約を完了できませんでした。\n")
		if result.RestaurantURL != "" {
			fmt.Fprintf(&b, "こちらから直接ご予約いただけます: %s\n", result.RestaurantURL)
		}
		if result.PhoneNumber != "" {
			fmt.Fprintf(&b, "お電話でのご予約をお願いします: %s\n", result.PhoneNumber)
		}
	case result.SemiAutomated:
		b.WriteString("予約フォームをブラウザで開きました。お手数ですが、画面上で予約を完了してください。\n")
	case result.ManualBookingRequired:
		b.WriteString("このお店はオンライン自動予約に対応していないようです。\n")
		if result.RestaurantURL != "" {
			fmt.Fprintf(&b, "こちらからご予約ください: %s\n", result.RestaurantURL)
		}
	case result.ErrorKind == contractx.ErrorKindNotSupported:
		b.WriteString(result.Message)
		b.WriteString("\n")
		if result.PhoneNumber != "" {
			fmt.Fprintf(&b, "お電話でのご予約をお願いします: %s\n", result.PhoneNumber)
		}
	default:
		b.WriteString("申し訳ございません。予約の実行に失敗しました。\n「実行」でもう一度お試しいただくか、「キャンセル」で中止できます。\n")
	}
	for _, inst := range result.Instructions {
		b.WriteString(inst)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// failureOptions picks the quick replies matching the failure shape
// rendered by renderBookingFailure.
func failureOptions(result *contractx.BookingResult) []string {
	switch {
	case result.ErrorKind == contractx.ErrorKindAIDetection:
		return aiBlockedOptions
	case result.SemiAutomated:
		return semiAutomatedOptions
	case result.ManualBookingRequired, result.ErrorKind == contractx.ErrorKindNotSupported:
		return manualFallbackOptions
	}
	return retryOptions
}

// renderTerminal re-renders the closing message for a finished session.
func renderTerminal(sess *statex.ReservationSession) string {
	switch sess.Step {
	case statex.StepCancelled:
		return cancelledMessage
	case statex.StepCompleted:
		if sess.Result != nil && sess.Result.Success {
			return renderBookingSuccess(sess.Result)
		}
		if sess.Result != nil {
			return renderBookingFailure(sess.Result)
		}
		return "ご予約の手続きは終了しています。"
	case statex.StepSemiAutomated, statex.StepAIBlocked:
		if sess.Result != nil {
			return renderBookingFailure(sess.Result)
		}
	}
	return "ご予約の手続きは終了しています。新しい予約を開始してください。"
}

func formatDatetime(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 %s %d:%02d",
		t.Year(), int(t.Month()), t.Day(), weekdayJa(t.Weekday()), t.Hour(), t.Minute())
}

func weekdayJa(d time.Weekday) string {
	switch d {
	case time.Sunday:
		return "(日)"
	case time.Monday:
		return "(月)"
	case time.Tuesday:
		return "(火)"
	case time.Wednesday:
		return "(水)"
	case time.Thursday:
		return "(木)"
	case time.Friday:
		return "(金)"
	case time.Saturday:
		return "(土)"
	}
	return ""
}
