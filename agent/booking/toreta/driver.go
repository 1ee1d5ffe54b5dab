// Package toreta automates the Toreta web reservation wizard.
package toreta

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tsukimori/yoyaku-agent/agent/booking"
	browserx "github.com/tsukimori/yoyaku-agent/agent/browser"
	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

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
		log:      log.With().Str("driver", "toreta").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ contractx.Driver = (*Driver)(nil)

func (d *Driver) Name() string { return "toreta" }

// Run walks Toreta's paged wizard: consent and start, date, time and
// party size, customer details, then a two-stage confirmation. Errors
// are reserved for infrastructure failures; site-level outcomes come
// back as a BookingResult.
func (d *Driver) Run(ctx context.Context, req contractx.BookingRequest, targetURL string) (contractx.BookingResult, error) {
	sess, err := d.launcher.NewSession(ctx)
	if err != nil {
		return contractx.BookingResult{}, fmt.Errorf("toreta: %w", err)
	}
	defer sess.Close()

	var steps []string
	record := func(s string) {
		steps = append(steps, s)
		d.log.Info().Str("step", s).Msg("booking step")
	}

	if err := sess.Navigate(ctx, targetURL, d.nav); err != nil {
		d.log.Warn().Err(err).Str("url", targetURL).Msg("target navigation incomplete")
	}
	_ = sess.Sleep(ctx, d.settle)
	record("Toretaの予約ページを開きました")

	loc, _ := sess.Location(ctx)
	if booking.URLBlocked(loc, blockMarkers) {
		d.log.Warn().Str("url", loc).Msg("challenge page")
		return d.blockedResult(req, targetURL, steps), nil
	}

	// Consent precedes the start button on the landing card.
	for _, c := range consentSelectors {
		if err := sess.EnsureChecked(ctx, c, d.step); err == nil {
			record("利用規約に同意しました")
			break
		}
	}

	if _, ok := browserx.ClickFirst(ctx, sess, startSelectors, d.step); !ok {
		d.log.Warn().Str("url", targetURL).Msg("start button not found")
		return d.manualResult(req, targetURL, steps), nil
	}
	_ = sess.Sleep(ctx, d.settle)
	record("予約手続きを開始しました")

	loc, _ = sess.Location(ctx)
	if booking.URLBlocked(loc, blockMarkers) {
		d.log.Warn().Str("url", loc).Msg("challenge page after start")
		return d.semiAutomatedResult(req, targetURL, steps), nil
	}

	d.fillDate(ctx, sess, req.Date, record)
	d.advance(ctx, sess)

	d.fillTime(ctx, sess, req.Time, record)
	d.fillParty(ctx, sess, req.PartySize, record)
	d.advance(ctx, sess)

	d.fillCustomer(ctx, sess, req, record)

	if _, ok := browserx.ClickFirst(ctx, sess, confirmSelectors, d.step); !ok {
		d.log.Warn().Msg("confirm control not found")
		return d.submissionFailedResult(req, targetURL, steps), nil
	}
	record("予約内容を確認しました")
	_ = sess.Sleep(ctx, d.settle)

	if _, ok := browserx.ClickFirst(ctx, sess, finalConfirmSelectors, d.step); ok {
		record("予約を確定しました")
		_ = sess.Sleep(ctx, d.settle)
	}

	loc, _ = sess.Location(ctx)
	content, _ := sess.Content(ctx)
	if !booking.CompletionDetected(loc, content) {
		d.log.Warn().Str("url", loc).Msg("no completion evidence after confirm")
		return d.submissionFailedResult(req, targetURL, steps), nil
	}

	id := booking.ExtractReservationID(content, idPrefix, d.now())
	record("予約が完了しました")
	d.log.Info().Str("reservation_id", id).Msg("booking completed")
	return contractx.BookingResult{
		Success:        true,
		ReservationID:  id,
		Message:        "Toretaでの予約が完了しました。",
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		RestaurantURL:  targetURL,
	}, nil
}

func (d *Driver) advance(ctx context.Context, sess browserx.Session) {
	if _, ok := browserx.ClickFirst(ctx, sess, nextSelectors, d.step); ok {
		_ = sess.Sleep(ctx, d.settle)
	}
}

func (d *Driver) fillDate(ctx context.Context, sess browserx.Session, isoDate string, record func(string)) {
	if _, ok := browserx.FillFirst(ctx, sess, dateInputSelectors, isoDate, d.step); ok {
		record("日付を入力しました: " + isoDate)
		return
	}
	day := isoDate[len(isoDate)-2:]
	if day[0] == '0' {
		day = day[1:]
	}
	if _, ok := browserx.ClickFirst(ctx, sess, daySelectors(isoDate, day), d.step); ok {
		record("カレンダーから日付を選択しました: " + isoDate)
		return
	}
	d.log.Warn().Str("date", isoDate).Msg("date control not found")
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

func (d *Driver) fillCustomer(ctx context.Context, sess browserx.Session, req contractx.BookingRequest, record func(string)) {
	if _, ok := browserx.FillFirst(ctx, sess, nameFieldSelectors, req.Contact.Name, d.step); ok {
		record("お名前を入力しました")
	} else {
		d.log.Warn().Msg("name field not found")
	}
	// Toreta's phone field rejects hyphenated input.
	phone := strings.ReplaceAll(req.Contact.Phone, "-", "")
	if _, ok := browserx.FillFirst(ctx, sess, phoneFieldSelectors, phone, d.step); ok {
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

func (d *Driver) blockedResult(req contractx.BookingRequest, targetURL string, steps []string) contractx.BookingResult {
	return contractx.BookingResult{
		Success:   false,
		ErrorKind: contractx.ErrorKindAIDetection,
		Message:   "Toretaの認証チャレンジによりブロックされました。お電話での予約をお願いします。",
		Instructions: []string{
			"自動予約がブロックされたため、お電話での予約をお願いします。",
			"希望日時: " + req.Date + " " + req.Time,
			"人数: " + strconv.Itoa(req.PartySize) + "名",
			"お名前: " + req.Contact.Name,
		},
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
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
		Message:               "予約フォームを開始できませんでした。お店のページから直接ご予約ください。",
		Instructions: []string{
			"予約ページを開く: " + targetURL,
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
		Message:        "予約の確定を確認できませんでした。お手数ですが、もう一度お試しいただくか直接ご予約ください。",
		StepsCompleted: steps,
		BookingInfo:    booking.Info(req),
		RestaurantURL:  targetURL,
	}
}
