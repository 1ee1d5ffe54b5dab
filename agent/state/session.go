package state

import (
	"time"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// Step is the session's position in the fixed conversation sequence.
// Adding or renaming a step is a compile-time-checked change; handlers
// switch exhaustively over these values.
type Step int

const (
	StepInitial Step = iota
	StepDatetimeInput
	StepPartySizeInput
	StepContactInfoInput
	StepEmailInput
	StepSpecialRequestsInput
	StepConfirmation
	StepCompleted
	StepCancelled
	StepSemiAutomated
	StepAIBlocked
)

func (s Step) String() string {
	switch s {
	case StepInitial:
		return "initial"
	case StepDatetimeInput:
		return "datetime_input"
	case StepPartySizeInput:
		return "party_size_input"
	case StepContactInfoInput:
		return "contact_info_input"
	case StepEmailInput:
		return "email_input"
	case StepSpecialRequestsInput:
		return "special_requests_input"
	case StepConfirmation:
		return "confirmation"
	case StepCompleted:
		return "completed"
	case StepCancelled:
		return "cancelled"
	case StepSemiAutomated:
		return "semi_automated"
	case StepAIBlocked:
		return "ai_blocked"
	}
	return "unknown"
}

// Terminal reports whether no further collection turns are expected.
// A failed execution leaves the session at confirmation, so a retry is
// still possible from there.
func (s Step) Terminal() bool {
	switch s {
	case StepCompleted, StepCancelled, StepSemiAutomated, StepAIBlocked:
		return true
	}
	return false
}

// CollectedFields is the mutable record filled in turn by turn. A field
// is only set once its extractor reported success.
type CollectedFields struct {
	Datetime        string            `json:"datetime,omitempty"` // ISO-8601, site-local
	PartySize       int               `json:"party_size,omitempty"`
	Contact         *contractx.Contact `json:"contact,omitempty"`
	Email           string            `json:"email,omitempty"`
	SpecialRequests string            `json:"special_requests,omitempty"`

	// RequestsCollected distinguishes "no requests" from "not asked
	// yet"; an empty SpecialRequests alone cannot.
	RequestsCollected bool `json:"requests_collected,omitempty"`
}

// ReservationSession is one in-progress reservation conversation. It is
// owned by the SessionStore; step handlers are the only mutators, and
// the store serializes them per session.
type ReservationSession struct {
	ID         string                  `json:"session_id"`
	Restaurant contractx.Restaurant    `json:"restaurant"`
	Fields     CollectedFields         `json:"data"`
	Step       Step                    `json:"step"`
	Assessment contractx.Assessment    `json:"availability"`
	Result     *contractx.BookingResult `json:"booking_result,omitempty"`

	// Ended marks a pre-terminated session (assessed unavailable at
	// creation). It stays addressable for status queries only.
	Ended bool `json:"ended,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewReservationSession(id string, restaurant contractx.Restaurant, assessment contractx.Assessment, now time.Time) *ReservationSession {
	return &ReservationSession{
		ID:         id,
		Restaurant: restaurant,
		Assessment: assessment,
		Step:       StepInitial,
		Ended:      !assessment.Available,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
}

func (s *ReservationSession) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Clone returns a deep copy detached from the store-owned original, so
// a reader never shares mutable state with an in-flight turn.
func (s *ReservationSession) Clone() ReservationSession {
	out := *s
	if s.Fields.Contact != nil {
		contact := *s.Fields.Contact
		out.Fields.Contact = &contact
	}
	if s.Result != nil {
		result := *s.Result
		result.Instructions = append([]string(nil), s.Result.Instructions...)
		result.StepsCompleted = append([]string(nil), s.Result.StepsCompleted...)
		result.SupportedSystems = append([]string(nil), s.Result.SupportedSystems...)
		out.Result = &result
	}
	out.Assessment.Alternatives = append([]string(nil), s.Assessment.Alternatives...)
	return out
}

// ReservationTime parses the collected datetime field.
func (s *ReservationSession) ReservationTime() (time.Time, bool) {
	if s.Fields.Datetime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02T15:04:05", s.Fields.Datetime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
