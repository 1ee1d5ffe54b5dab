package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	bookingx "github.com/tsukimori/yoyaku-agent/agent/booking"
	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

type fakeDatetime struct {
	t     time.Time
	err   error
	calls int
}

func (f *fakeDatetime) Extract(ctx context.Context, text string, now time.Time) (time.Time, error) {
	f.calls++
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.t, nil
}

type fakeDriver struct {
	name    string
	results []contractx.BookingResult
	err     error
	reqs    []contractx.BookingRequest
	urls    []string
}

func (f *fakeDriver) Name() string { return f.name }

func (f *fakeDriver) Run(ctx context.Context, req contractx.BookingRequest, targetURL string) (contractx.BookingResult, error) {
	f.reqs = append(f.reqs, req)
	f.urls = append(f.urls, targetURL)
	if f.err != nil {
		return contractx.BookingResult{}, f.err
	}
	idx := len(f.reqs) - 1
	if idx >= len(f.results) {
		return contractx.BookingResult{}, fmt.Errorf("no driver result left at call=%d", len(f.reqs))
	}
	return f.results[idx], nil
}

func newTestAgent(t *testing.T, datetime *fakeDatetime, tabelog, toreta *fakeDriver) *Agent {
	t.Helper()

	var seq int
	a, err := New(
		statex.NewSessionStore(),
		datetime,
		bookingx.NewDispatcher(tabelog, toreta),
		WithClock(func() time.Time {
			return time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("session-%d", seq)
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func tabelogRestaurant() contractx.Restaurant {
	return contractx.Restaurant{
		Name:    "くら寿司 渋谷店",
		Website: "https://tabelog.com/tokyo/A1301/13000001/",
		Phone:   "03-1234-5678",
	}
}

func successResult() contractx.BookingResult {
	return contractx.BookingResult{
		Success:       true,
		ReservationID: "TBL-1234567",
	}
}

// walkToConfirmation drives a fresh session through every collection
// step and leaves it at the confirmation summary.
func walkToConfirmation(t *testing.T, a *Agent, sessionID string) {
	t.Helper()

	turns := []struct {
		text string
		step string
	}{
		{"明日の19時", "party_size_input"},
		{"3名", "contact_info_input"},
		{"田中太郎 090-1234-5678", "email_input"},
		{"tanaka@example.com", "special_requests_input"},
		{"なし", "confirmation"},
	}
	for _, turn := range turns {
		res, err := a.ProcessStep(context.Background(), sessionID, turn.text)
		if err != nil {
			t.Fatalf("ProcessStep(%q) error = %v", turn.text, err)
		}
		if res.Error {
			t.Fatalf("ProcessStep(%q) unexpected error reply: %s", turn.text, res.Message)
		}
		if res.Step != turn.step {
			t.Fatalf("ProcessStep(%q) step = %q, want %q", turn.text, res.Step, turn.step)
		}
	}
}

func TestStartReservationAvailable(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeDatetime{}, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, err := a.StartReservation(context.Background(), tabelogRestaurant())
	if err != nil {
		t.Fatalf("StartReservation() error = %v", err)
	}
	if start.SessionID != "session-1" {
		t.Fatalf("unexpected session id: %q", start.SessionID)
	}
	if start.AvailabilityStatus != "available" {
		t.Fatalf("availability = %q, want available", start.AvailabilityStatus)
	}
	if start.Step != "datetime_input" {
		t.Fatalf("step = %q, want datetime_input", start.Step)
	}
	if !strings.Contains(start.Message, "くら寿司 渋谷店") {
		t.Fatalf("message should name the restaurant: %q", start.Message)
	}
	if len(start.Options) == 0 {
		t.Fatal("expected quick-reply options")
	}
}

func TestStartReservationUnavailable(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeDatetime{}, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, err := a.StartReservation(context.Background(), contractx.Restaurant{
		Name:  "懐石 花見",
		Phone: "03-1111-2222",
	})
	if err != nil {
		t.Fatalf("StartReservation() error = %v", err)
	}
	if !start.EndSession {
		t.Fatal("expected EndSession for an unavailable restaurant")
	}
	if start.AvailabilityStatus != "unavailable" {
		t.Fatalf("availability = %q, want unavailable", start.AvailabilityStatus)
	}
	if !strings.Contains(start.Message, "03-1111-2222") {
		t.Fatalf("message should carry the fallback phone: %q", start.Message)
	}

	// The session is addressable for status but refuses further turns.
	res, err := a.ProcessStep(context.Background(), start.SessionID, "明日の19時")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if !res.RestartNeeded {
		t.Fatalf("expected RestartNeeded, got %+v", res)
	}
}

func TestStartReservationRequiresName(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeDatetime{}, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	_, err := a.StartReservation(context.Background(), contractx.Restaurant{})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFullConversation(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	tabelog := &fakeDriver{name: "tabelog", results: []contractx.BookingResult{successResult()}}
	a := newTestAgent(t, datetime, tabelog, &fakeDriver{name: "toreta"})

	start, err := a.StartReservation(context.Background(), tabelogRestaurant())
	if err != nil {
		t.Fatalf("StartReservation() error = %v", err)
	}
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "実行")
	if err != nil {
		t.Fatalf("ProcessStep(実行) error = %v", err)
	}
	if !res.Success || res.Step != "completed" {
		t.Fatalf("unexpected execute reply: %+v", res)
	}
	if res.BookingResult == nil || res.BookingResult.ReservationID != "TBL-1234567" {
		t.Fatalf("unexpected booking result: %+v", res.BookingResult)
	}

	if len(tabelog.reqs) != 1 {
		t.Fatalf("expected one driver call, got %d", len(tabelog.reqs))
	}
	req := tabelog.reqs[0]
	if req.Date != "2026-09-01" || req.Time != "19:00" {
		t.Fatalf("unexpected request datetime: %s %s", req.Date, req.Time)
	}
	if req.PartySize != 3 {
		t.Fatalf("party size = %d, want 3", req.PartySize)
	}
	if req.Contact.Name != "田中太郎" || req.Contact.Phone != "090-1234-5678" {
		t.Fatalf("unexpected contact: %+v", req.Contact)
	}
	if req.Contact.Email != "tanaka@example.com" {
		t.Fatalf("unexpected email: %q", req.Contact.Email)
	}

	status, err := a.GetSessionStatus(start.SessionID)
	if err != nil {
		t.Fatalf("GetSessionStatus() error = %v", err)
	}
	if status.Step != "completed" {
		t.Fatalf("status step = %q, want completed", status.Step)
	}

	// A further turn re-renders the closing message.
	again, err := a.ProcessStep(context.Background(), start.SessionID, "ありがとう")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if again.Step != "completed" || !again.Success {
		t.Fatalf("unexpected terminal reply: %+v", again)
	}
}

func TestExtractionFailureKeepsStep(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{err: errors.New("no datetime")}
	a := newTestAgent(t, datetime, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())

	res, err := a.ProcessStep(context.Background(), start.SessionID, "よくわからない")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if !res.Error || res.Step != "datetime_input" {
		t.Fatalf("expected datetime retry, got %+v", res)
	}

	datetime.err = nil
	datetime.t = time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)
	res, err = a.ProcessStep(context.Background(), start.SessionID, "明日の19時")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if res.Step != "party_size_input" {
		t.Fatalf("expected party_size_input after retry, got %q", res.Step)
	}
}

func TestBulkFormShortcut(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeDatetime{}, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())

	bulk := "日時: 2026-12-25 19:00, 人数: 4名, 名前: 田中太郎, 電話: 090-1234-5678, メール: tanaka@example.com, 要望: なし"
	res, err := a.ProcessStep(context.Background(), start.SessionID, bulk)
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if res.Step != "confirmation" {
		t.Fatalf("expected confirmation after bulk form, got %q", res.Step)
	}

	status, err := a.GetSessionStatus(start.SessionID)
	if err != nil {
		t.Fatalf("GetSessionStatus() error = %v", err)
	}
	if status.Fields.PartySize != 4 || status.Fields.Email != "tanaka@example.com" {
		t.Fatalf("unexpected fields: %+v", status.Fields)
	}
}

func TestCancelDuringConfirmation(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	a := newTestAgent(t, datetime, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "キャンセル")
	if err != nil {
		t.Fatalf("ProcessStep(キャンセル) error = %v", err)
	}
	if !res.Cancelled || res.Step != "cancelled" {
		t.Fatalf("unexpected cancel reply: %+v", res)
	}

	// The session is gone after a cancel.
	after, err := a.ProcessStep(context.Background(), start.SessionID, "やっぱり予約したい")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if !after.RestartNeeded {
		t.Fatalf("expected RestartNeeded after cancel, got %+v", after)
	}
}

func TestEditReturnsToConfirmation(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	a := newTestAgent(t, datetime, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "人数を修正")
	if err != nil {
		t.Fatalf("ProcessStep(人数を修正) error = %v", err)
	}
	if res.Step != "party_size_input" {
		t.Fatalf("expected party_size_input, got %q", res.Step)
	}

	res, err = a.ProcessStep(context.Background(), start.SessionID, "4名")
	if err != nil {
		t.Fatalf("ProcessStep(4名) error = %v", err)
	}
	if res.Step != "confirmation" {
		t.Fatalf("expected confirmation after edit, got %q", res.Step)
	}
	if !strings.Contains(res.Message, "4名") {
		t.Fatalf("summary should show the edited size: %q", res.Message)
	}
}

func TestConfirmationUnrecognizedInput(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	tabelog := &fakeDriver{name: "tabelog"}
	a := newTestAgent(t, datetime, tabelog, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "よくわからない入力")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if !res.Error || res.Step != "confirmation" {
		t.Fatalf("expected confirmation error reply, got %+v", res)
	}
	if !strings.Contains(res.Message, "入力を理解できませんでした") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if len(res.Options) != 3 {
		t.Fatalf("options = %v, want the three confirmation choices", res.Options)
	}
	if len(tabelog.reqs) != 0 {
		t.Fatal("unrecognized input must not trigger a booking")
	}

	// 続行 and an empty turn re-render the summary unchanged.
	for _, text := range []string{"続行", ""} {
		res, err = a.ProcessStep(context.Background(), start.SessionID, text)
		if err != nil {
			t.Fatalf("ProcessStep(%q) error = %v", text, err)
		}
		if res.Error || res.Step != "confirmation" {
			t.Fatalf("ProcessStep(%q) = %+v, want plain re-render", text, res)
		}
		if !strings.Contains(res.Message, "ご予約内容をご確認ください") {
			t.Fatalf("ProcessStep(%q) should re-render the summary: %q", text, res.Message)
		}
	}
}

func TestConfirmationExecuteWinsOverFieldWords(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	tabelog := &fakeDriver{name: "tabelog", results: []contractx.BookingResult{successResult()}}
	a := newTestAgent(t, datetime, tabelog, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "日時はそのままで実行")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if !res.Success || res.Step != "completed" {
		t.Fatalf("expected execution, got %+v", res)
	}
	if len(tabelog.reqs) != 1 {
		t.Fatalf("expected one driver call, got %d", len(tabelog.reqs))
	}
}

func TestUnsupportedSite(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	a := newTestAgent(t, datetime, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), contractx.Restaurant{
		Name:    "ビストロ青山",
		Website: "https://aoyama-bistro.example.com/reservation",
		Phone:   "03-2222-3333",
	})
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "実行")
	if err != nil {
		t.Fatalf("ProcessStep(実行) error = %v", err)
	}
	if res.Success {
		t.Fatal("expected failure for an unsupported site")
	}
	if res.BookingResult == nil || res.BookingResult.ErrorKind != contractx.ErrorKindNotSupported {
		t.Fatalf("unexpected booking result: %+v", res.BookingResult)
	}
	if len(res.BookingResult.SupportedSystems) != 2 {
		t.Fatalf("supported systems = %v", res.BookingResult.SupportedSystems)
	}
}

func TestBookingFailureAllowsRetry(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	tabelog := &fakeDriver{name: "tabelog", results: []contractx.BookingResult{
		{Success: false, ErrorKind: contractx.ErrorKindSubmissionFailed},
		successResult(),
	}}
	a := newTestAgent(t, datetime, tabelog, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "実行")
	if err != nil {
		t.Fatalf("ProcessStep(実行) error = %v", err)
	}
	if res.Success {
		t.Fatal("first attempt should fail")
	}
	if len(res.Options) == 0 || res.Options[0] != "実行" {
		t.Fatalf("failure reply should offer a retry option, got %v", res.Options)
	}

	status, _ := a.GetSessionStatus(start.SessionID)
	if status.Step != "confirmation" {
		t.Fatalf("failed booking should keep the session at confirmation, got %q", status.Step)
	}

	res, err = a.ProcessStep(context.Background(), start.SessionID, "実行")
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if !res.Success || res.BookingResult.ReservationID != "TBL-1234567" {
		t.Fatalf("unexpected retry reply: %+v", res)
	}
	if len(tabelog.reqs) != 2 {
		t.Fatalf("expected two driver calls, got %d", len(tabelog.reqs))
	}
}

func TestAIDetectionEndsSession(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	tabelog := &fakeDriver{name: "tabelog", results: []contractx.BookingResult{
		{
			Success:       false,
			ErrorKind:     contractx.ErrorKindAIDetection,
			PhoneNumber:   "03-1234-5678",
			RestaurantURL: "https://tabelog.com/tokyo/A1301/13000001/",
		},
	}}
	a := newTestAgent(t, datetime, tabelog, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	res, err := a.ProcessStep(context.Background(), start.SessionID, "実行")
	if err != nil {
		t.Fatalf("ProcessStep(実行) error = %v", err)
	}
	if res.Step != "ai_blocked" {
		t.Fatalf("expected ai_blocked, got %q", res.Step)
	}
	if !strings.Contains(res.Message, "03-1234-5678") {
		t.Fatalf("reply should carry the phone number: %q", res.Message)
	}
	if !strings.Contains(res.Message, "https://tabelog.com/tokyo/A1301/13000001/") {
		t.Fatalf("reply should carry the direct link: %q", res.Message)
	}
	if len(res.Options) != 4 {
		t.Fatalf("options = %v, want the four blocked-booking choices", res.Options)
	}
}

func TestStatusDuringConcurrentTurns(t *testing.T) {
	t.Parallel()

	datetime := &fakeDatetime{t: time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local)}
	a := newTestAgent(t, datetime, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	walkToConfirmation(t, a, start.SessionID)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := a.ProcessStep(context.Background(), start.SessionID, "人数を修正"); err != nil {
				t.Error(err)
				return
			}
			if _, err := a.ProcessStep(context.Background(), start.SessionID, "4名"); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			status, err := a.GetSessionStatus(start.SessionID)
			if err != nil {
				t.Error(err)
				return
			}
			if status.Step != "confirmation" && status.Step != "party_size_input" {
				t.Errorf("unexpected step: %q", status.Step)
				return
			}
		}
	}()
	wg.Wait()

	status, err := a.GetSessionStatus(start.SessionID)
	if err != nil {
		t.Fatalf("GetSessionStatus() error = %v", err)
	}
	if status.Fields.PartySize != 4 {
		t.Fatalf("party size = %d, want 4", status.Fields.PartySize)
	}
}

func TestProcessStepUnknownSession(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeDatetime{}, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	res, err := a.ProcessStep(context.Background(), "no-such-session", "hello")
	if err != nil {
		t.Fatalf("ProcessStep() error = %v", err)
	}
	if !res.RestartNeeded || !res.Error {
		t.Fatalf("expected restart reply, got %+v", res)
	}
}

func TestCancelSession(t *testing.T) {
	t.Parallel()

	a := newTestAgent(t, &fakeDatetime{}, &fakeDriver{name: "tabelog"}, &fakeDriver{name: "toreta"})

	start, _ := a.StartReservation(context.Background(), tabelogRestaurant())
	if err := a.CancelSession(start.SessionID); err != nil {
		t.Fatalf("CancelSession() error = %v", err)
	}
	if _, err := a.GetSessionStatus(start.SessionID); !errors.Is(err, contractx.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
