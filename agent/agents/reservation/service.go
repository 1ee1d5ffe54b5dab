// Package reservation is the conversation-facing reservation agent: it
// opens sessions, walks the collection steps and hands completed
// requests to the booking drivers.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tsukimori/yoyaku-agent/agent/assess"
	bookingx "github.com/tsukimori/yoyaku-agent/agent/booking"
	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	nodex "github.com/tsukimori/yoyaku-agent/agent/nodes/reservation"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

var startOptions = []string{"今日のディナー", "明日のランチ", "今度の週末", "具体的な日時を入力"}

type Agent struct {
	store *statex.SessionStore
	deps  nodex.Deps

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

type Option func(*Agent)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithIDGenerator overrides session id generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(a *Agent) { a.newID = newID }
}

func New(
	store *statex.SessionStore,
	datetime contractx.DatetimeExtractor,
	dispatcher *bookingx.Dispatcher,
	opts ...Option,
) (*Agent, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if datetime == nil {
		return nil, errors.New("datetime extractor is required")
	}
	if dispatcher == nil {
		return nil, errors.New("booking dispatcher is required")
	}

	a := &Agent{
		store: store,
		deps: nodex.Deps{
			Datetime:   datetime,
			Dispatcher: dispatcher,
		},
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}

	graphRunner, err := a.compileProcessStepGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

// StartReservation assesses the restaurant and opens a session. An
// unavailable verdict still creates an addressable session, but the
// conversation is over before it starts: the reply carries phone and
// alternative guidance and EndSession is set.
func (a *Agent) StartReservation(ctx context.Context, restaurant contractx.Restaurant) (contractx.StartResult, error) {
	if strings.TrimSpace(restaurant.Name) == "" {
		return contractx.StartResult{}, fmt.Errorf("%w: restaurant name is required", contractx.ErrValidation)
	}

	assessment := assess.Run(restaurant)
	sess := statex.NewReservationSession(a.newID(), restaurant, assessment, a.now())
	if err := a.store.Create(sess); err != nil {
		return contractx.StartResult{}, err
	}

	log.Info().
		Str("session_id", sess.ID).
		Str("restaurant", restaurant.Name).
		Bool("available", assessment.Available).
		Str("method", string(assessment.Method)).
		Msg("reservation session started")

	if !assessment.Available {
		return contractx.StartResult{
			SessionID:          sess.ID,
			Message:            renderUnavailable(restaurant, assessment),
			AvailabilityStatus: "unavailable",
			AvailabilityMethod: string(assessment.Method),
			Alternatives:       assessment.Alternatives,
			EndSession:         true,
		}, nil
	}

	return contractx.StartResult{
		SessionID: sess.ID,
		Message: fmt.Sprintf("「%s」のご予約を承ります。\n\nご希望の日時を教えてください。\n例: 「明日の19時」「12月25日 18時30分」",
			restaurant.Name),
		Step:               statex.StepDatetimeInput.String(),
		AvailabilityStatus: "available",
		AvailabilityMethod: string(assessment.Method),
		Options:            startOptions,
	}, nil
}

// ProcessStep handles one user turn. Turns for the same session are
// serialized on the store's per-session lock, so a second turn arriving
// mid-booking waits rather than racing the first.
func (a *Agent) ProcessStep(ctx context.Context, sessionID, text string) (contractx.StepResult, error) {
	release, err := a.store.Acquire(sessionID)
	if err != nil {
		if errors.Is(err, contractx.ErrSessionNotFound) {
			return sessionNotFoundReply(sessionID), nil
		}
		return contractx.StepResult{}, err
	}
	defer release()

	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrSessionNotFound) {
			return sessionNotFoundReply(sessionID), nil
		}
		return contractx.StepResult{}, err
	}
	return out.Reply, nil
}

// SessionStatus is a point-in-time snapshot of one session.
type SessionStatus struct {
	SessionID  string                   `json:"session_id"`
	Step       string                   `json:"step"`
	Restaurant contractx.Restaurant     `json:"restaurant"`
	Fields     statex.CollectedFields   `json:"data"`
	Assessment contractx.Assessment     `json:"availability"`
	Result     *contractx.BookingResult `json:"booking_result,omitempty"`
	Ended      bool                     `json:"ended,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// GetSessionStatus reads a consistent snapshot; a query racing an
// in-flight turn waits for the turn instead of observing it halfway.
func (a *Agent) GetSessionStatus(sessionID string) (SessionStatus, error) {
	sess, err := a.store.Snapshot(sessionID)
	if err != nil {
		return SessionStatus{}, err
	}
	return SessionStatus{
		SessionID:  sess.ID,
		Step:       sess.Step.String(),
		Restaurant: sess.Restaurant,
		Fields:     sess.Fields,
		Assessment: sess.Assessment,
		Result:     sess.Result,
		Ended:      sess.Ended,
		CreatedAt:  sess.CreatedAt,
		UpdatedAt:  sess.UpdatedAt,
	}, nil
}

// CancelSession removes the session out of band, without a turn.
func (a *Agent) CancelSession(sessionID string) error {
	return a.store.Delete(sessionID)
}

func renderUnavailable(restaurant contractx.Restaurant, assessment contractx.Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "申し訳ございません。「%s」のオンライン予約を開始できませんでした。\n", restaurant.Name)
	if assessment.Reason != "" {
		fmt.Fprintf(&b, "理由: %s\n", assessment.Reason)
	}
	if assessment.FallbackPhone != "" {
		fmt.Fprintf(&b, "\nお電話でのご予約をお願いします: %s\n", assessment.FallbackPhone)
	}
	if len(assessment.Alternatives) > 0 {
		b.WriteString("\n代わりの予約方法:\n")
		for _, alt := range assessment.Alternatives {
			b.WriteString(alt)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sessionNotFoundReply(sessionID string) contractx.StepResult {
	return contractx.StepResult{
		SessionID:     sessionID,
		Message:       "セッションが見つかりませんでした。お手数ですが、最初から予約をやり直してください。",
		Step:          "error",
		Error:         true,
		RestartNeeded: true,
	}
}
