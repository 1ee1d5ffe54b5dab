// Package tabelog automates the Tabelog reservation flow.
package tabelog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tsukimori/yoyaku-agent/agent/booking"
	browserx "github.com/tsukimori/yoyaku-agent/agent/browser"
	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// Tabelog exposes at most 60 days of availability; requests beyond the
// horizon are retargeted to a week out and left for the restaurant to
// adjust.
const bookingHorizonDays = 60

type Driver struct {
	launcher browserx.Launcher
	now      func() time.Time
	settle   time.Duration
	nav      time.Duration
	step     time.Duration
	log      zerolog.Logger
}

type Option func(*Driver)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

func WithTimeouts(nav, step, settle time.Duration) Option {
	return func(d *Driver) {
		d.nav, d.step, d.settle = nav, step, settle
	}
}

func New(launcher browserx.Launcher, opts ...Option) *Driver {
	d := &Driver{
		launcher: launcher,
		now:      time.Now,
		settle:   2 * time.Second,
		nav:      30 * time.Second,
		step:     5 * time.Second,
		log:      log.With().Str("driver", "tabelog").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ contractx.Driver = (*Driver)(nil)

func (d *Driver) Name() string { return "tabelog" }

// Run drives one reservation attempt end to end. The returned error is
// reserved for infrastructure failures (no browser); every site-level
// outcome, including blocks and failed submissions, is a BookingResult.
func (d *Driver) Run(ctx context.Context, req contractx.BookingRequest, targetURL string) (contractx.BookingResult, error) {
	sess, err := d.launcher.NewSession(ctx)
	if err != nil {
		return contractx.BookingResult{}, fmt.Errorf("tabelog: %w", err)
	}
	defer sess.Close()

	var steps []string
	record := func(s string) {
		steps = append(steps, s)
		d.log.Info().Str("step", s).Msg("booking step")
	}

	// Warm up on the landing page first so the target visit looks like
	// ordinary browsing. Both navigations tolerate timeouts; heavy pages
	// often finish loading after the deadline.
	if err := sess.Navigate(ctx, landingURL, d.nav); err != nil {
		d.log.Warn().Err(err).Msg("landing page navigation incomplete")
	}
	_ = sess.Sleep(ctx, d.settle)

	if err := sess.Navigate(ctx, targetURL, d.nav); err != nil {
		d.log.Warn().Err(err).Str("url", targetURL).Msg("target navigation incomplete")
	}
	_ = sess.Sleep(ctx, d.settle)
	record("食べログの店舗ページを開きました")

	// Bot-detection gate. Once the interstitial shows there is nothing
	// to automate; recover the phone number and stop.
	loc, _ := sess.Location(ctx)
	if booking.URLBlocked(loc, blockMarkers) {
		d.log.Warn().Str("url", loc).Msg("bot detection interstitial")
		return d.blockedResult(ctx, sess, req, targetURL, steps), nil
	}

	entry, ok := browserx.ClickFirst(ctx, sess, entrySelectors, d.step)
	if !ok {
		d.log.Warn().Str("url", targetURL).Msg("no reservation entry point")
		return d.manualResult(req, targetURL, steps), nil
	}
	d.log.Debug().Stringer("selector", entry).Msg("entry point clicked")
	_ = sess.Sleep(ctx, d.settle)
	record("予約ページへ進みました")

	// The entry click can also land on the interstitial. The form is
	// open in the visible browser at this point, so hand over instead
	// of failing outright.
	loc, _ = sess.Location(ctx)
	if booking.URLBlocked(loc, blockMarkers) {
		d.log.Warn().Str("url", loc).Msg("bot detection after entry click")
		return d.semiAutomatedResult(req, targetURL, steps), nil
	}

	d.fillDate(ctx, sess, req.Date, record)
	d.fillTime(ctx, sess, req.Time, record)
	d.fillParty(ctx, sess, req.PartySize, record)
	d.bypassCourseAndSeat(ctx, sess, record)
	d.fillContact(ctx, sess, req, record)

	for _, c := range consentSelectors {
		if err := sess.EnsureChecked(ctx, c, d.step); err == nil {
			record("利用規約に同意しました")
			break
		}
	}

	if _, ok := browserx.ClickFirst(ctx, sess, submitSelectors, d.step); !ok {
		d.log.Warn().Msg("submit control not found")
		return d.submissionFailedResult(req, targetURL, steps), nil
	}
	record("予約内容を送信しました")
	_ = sess.Sleep(ctx, d.settle)

	// Some flows interpose a review page with a final confirm button.
	if _, ok := browserx.ClickFirst(ctx, sess, finalConfirmSelectors, d.step); ok {
		record("最終確認を完了しました")
		_ = sess.Sleep(ctx, d.settle)
	}

	loc, _ = sess.Location(ctx)
	content, _ := sess.Content(ctx)
	if !booking.CompletionDetected(loc, content) {
		d.log.Warn().Str("url", loc).Msg("no completion evidence after submit")
		return d.submissionFailedResult(req, targetURL, steps), nil
	}

	id := booking.ExtractReservationID(content, idPrefix, d.now())
	record("予約が完了しました")
	d.log.Info().Str("reservation_id", id).Msg("booking completed")
	return contractx.BookingResult{
		Success:        true,
		ReservationID:  id,
		Message:        "食べログでの予約が完了しました。",
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		RestaurantURL:  targetURL,
	}, nil
}

// effectiveDate clamps dates past the visible booking horizon to one
// week out; the exact day gets renegotiated with the restaurant.
func (d *Driver) effectiveDate(isoDate string) string {
	requested, err := time.ParseInLocation("2006-01-02", isoDate, time.Local)
	if err != nil {
		return isoDate
	}
	now := d.now()
	if requested.After(now.AddDate(0, 0, bookingHorizonDays)) {
		clamped := now.AddDate(0, 0, 7).Format("2006-01-02")
		d.log.Warn().Str("requested", isoDate).Str("clamped", clamped).Msg("date beyond booking horizon")
		return clamped
	}
	return isoDate
}

func (d *Driver) fillDate(ctx context.Context, sess browserx.Session, isoDate string, record func(string)) {
	date := d.effectiveDate(isoDate)
	if _, ok := browserx.FillFirst(ctx, sess, dateInputSelectors, date, d.step); ok {
		record("日付を入力しました: " + date)
		return
	}
	// Fall back to the calendar widget.
	if _, ok := browserx.ClickFirst(ctx, sess, calendarOpenSelectors, d.step); ok {
		day := date[len(date)-2:]
		if day[0] == '0' {
			day = day[1:]
		}
		if _, ok := browserx.ClickFirst(ctx, sess, daySelectors(date, day), d.step); ok {
			record("カレンダーから日付を選択しました: " + date)
			return
		}
	}
	d.log.Warn().Str("date", date).Msg("date control not found")
}

func (d *Driver) fillTime(ctx context.Context, sess browserx.Session, hhmm string, record func(string)) {
	if _, ok := browserx.ClickFirst(ctx, sess, timeOptionSelectors(hhmm), d.step); ok {
		record("時間を選択しました: " + hhmm)
		return
	}
	if _, ok := browserx.FillFirst(ctx, sess, timeInputSelectors, hhmm, d.step); ok {
		record("時間を入力しました: " + hhmm)
		return
	}
	d.log.Warn().Str("time", hhmm).Msg("time control not found")
}

func (d *Driver) fillParty(ctx context.Context, sess browserx.Session, size int, record func(string)) {
	s := strconv.Itoa(size)
	if _, ok := browserx.ClickFirst(ctx, sess, partyOptionSelectors(s), d.step); ok {
		record("人数を選択しました: " + s + "名")
		return
	}
	if _, ok := browserx.FillFirst(ctx, sess, partyInputSelectors, s, d.step); ok {
		record("人数を入力しました: " + s + "名")
		return
	}
	d.log.Warn().Int("party_size", size).Msg("party size control not found")
}

// bypassCourseAndSeat steps past the optional course and seat pickers,
// preferring the plain seat-only choices.
func (d *Driver) bypassCourseAndSeat(ctx context.Context, sess browserx.Session, record func(string)) {
	if _, ok := browserx.ClickFirst(ctx, sess, noCourseSelectors, d.step); ok {
		record("コースなしを選択しました")
	} else if _, ok := browserx.ClickFirst(ctx, sess, skipSelectors, d.step); ok {
		record("コース選択をスキップしました")
	}
	if _, ok := browserx.ClickFirst(ctx, sess, noSeatSelectors, d.step); ok {
		record("席指定なしを選択しました")
	} else if _, ok := browserx.ClickFirst(ctx, sess, skipSelectors, d.step); ok {
		record("席選択をスキップしました")
	}
}

func (d *Driver) fillContact(ctx context.Context, sess browserx.Session, req contractx.BookingRequest, record func(string)) {
	if _, ok := browserx.FillFirst(ctx, sess, nameFieldSelectors, req.Contact.Name, d.step); ok {
		record("お名前を入力しました")
	} else {
		d.log.Warn().Msg("name field not found")
	}
	if _, ok := browserx.FillFirst(ctx, sess, phoneFieldSelectors, req.Contact.Phone, d.step); ok {
		record("電話番号を入力しました")
	} else {
		d.log.Warn().Msg("phone field not found")
	}
	if req.Contact.Email != "" {
		if _, ok := browserx.FillFirst(ctx, sess, emailFieldSelectors, req.Contact.Email, d.step); ok {
			record("メールアドレスを入力しました")
		}
	}
	if req.SpecialRequests != "" {
		if _, ok := browserx.FillFirst(ctx, sess, requestsFieldSelectors, req.SpecialRequests, d.step); ok {
			record("ご要望を入力しました")
		}
	}
}

func (d *Driver) blockedResult(ctx context.Context, sess browserx.Session, req contractx.BookingRequest, targetURL string, steps []string) contractx.BookingResult {
	phone, _ := browserx.TextFirst(ctx, sess, phoneSelectors, d.step)
	instructions := []string{
		"自動予約がブロックされたため、お電話での予約をお願いします。",
		"希望日時: " + req.Date + " " + req.Time,
		"人数: " + strconv.Itoa(req.PartySize) + "名",
		"お名前: " + req.Contact.Name,
	}
	if phone != "" {
		instructions = append(instructions, "電話番号: "+phone)
	}
	return contractx.BookingResult{
		Success:        false,
		ErrorKind:      contractx.ErrorKindAIDetection,
		Message:        "食べログの自動予約検知によりブロックされました。お電話での予約をお願いします。",
		Instructions:   instructions,
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		PhoneNumber:    phone,
		RestaurantURL:  targetURL,
	}
}

func (d *Driver) semiAutomatedResult(req contractx.BookingRequest, targetURL string, steps []string) contractx.BookingResult {
	return contractx.BookingResult{
		Success:       false,
		SemiAutomated: true,
		BrowserOpened: true,
		Message:       "予約フォームを開きました。ブラウザで予約を完了してください。",
		Instructions: []string{
			"開いているブラウザで予約フォームに進んでください。",
			"日時: " + req.Date + " " + req.Time,
			"人数: " + strconv.Itoa(req.PartySize) + "名",
			"お名前と電話番号を入力して予約を確定してください。",
		},
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		RestaurantURL:  targetURL,
	}
}

func (d *Driver) manualResult(req contractx.BookingRequest, targetURL string, steps []string) contractx.BookingResult {
	return contractx.BookingResult{
		Success:               false,
		ErrorKind:             contractx.ErrorKindManualRequired,
		ManualBookingRequired: true,
		Message:               "このお店はネット予約に対応していないようです。お店のページから直接ご予約ください。",
		Instructions: []string{
			"店舗ページを開く: " + targetURL,
			"予約方法を確認してください (電話予約の場合があります)。",
			"希望日時: " + req.Date + " " + req.Time + " " + strconv.Itoa(req.PartySize) + "名",
		},
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		RestaurantURL:  targetURL,
	}
}

func (d *Driver) submissionFailedResult(req contractx.BookingRequest, targetURL string, steps []string) contractx.BookingResult {
	return contractx.BookingResult{
		Success:        false,
		ErrorKind:      contractx.ErrorKindSubmissionFailed,
		Message:        "予約の送信を確認できませんでした。お手数ですが、もう一度お試しいただくか直接ご予約ください。",
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		RestaurantURL:  targetURL,
	}
}
