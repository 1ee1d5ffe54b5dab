package contract

// Restaurant is the record produced by the upstream discovery pipeline.
// It is frozen at session creation and treated as immutable for the
// session's life.
type Restaurant struct {
	PlaceID string `json:"place_id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone_number,omitempty"`
	Website string `json:"website,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type BookingMethod string

const (
	MethodWebForm   BookingMethod = "web_form"
	MethodPhoneOnly BookingMethod = "phone_only"
	MethodUnknown   BookingMethod = "unknown"
)

// Assessment is the pre-automation verdict on whether a restaurant is
// likely bookable and by what method. Computed once per session, from
// the restaurant record alone.
type Assessment struct {
	Available     bool          `json:"available"`
	Method        BookingMethod `json:"method"`
	Confidence    float64       `json:"confidence,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	FallbackPhone string        `json:"fallback_phone,omitempty"`
	Alternatives  []string      `json:"alternative_methods,omitempty"`
}

// BookingRequest is derived from the collected fields at confirmation
// time. Date and Time are in the reservation site's local time.
type BookingRequest struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	Time            string  `json:"time"` // HH:MM
	PartySize       int     `json:"party_size"`
	Contact         Contact `json:"contact"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

type ErrorKind string

const (
	ErrorKindAIDetection      ErrorKind = "ai_detection"
	ErrorKindManualRequired   ErrorKind = "manual_booking_required"
	ErrorKindNotSupported     ErrorKind = "not_supported"
	ErrorKindSubmissionFailed ErrorKind = "submission_failed"
)

// BookingInfo is the snapshot of the attempted booking values, echoed
// back in manual-completion instructions.
type BookingInfo struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
	CustomerName string `json:"customer_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

type BookingResult struct {
	Success       bool      `json:"success"`
	ReservationID string    `json:"reservation_id,omitempty"`
	ErrorKind     ErrorKind `json:"error,omitempty"`
	Message       string    `json:"message,omitempty"`

	// Degraded-completion flags. SemiAutomated means fields were
	// pre-filled but a human must finish the booking in the same
	// browser session; it is not an error state.
	SemiAutomated         bool `json:"semi_automated,omitempty"`
	BrowserOpened         bool `json:"browser_opened,omitempty"`
	ManualBookingRequired bool `json:"manual_booking_required,omitempty"`

	Instructions     []string    `json:"instructions,omitempty"`
	StepsCompleted   []string    `json:"steps_completed,omitempty"`
	BookingInfo      BookingInfo `json:"booking_info,omitempty"`
	PhoneNumber      string      `json:"phone_number,omitempty"`
	RestaurantURL    string      `json:"restaurant_url,omitempty"`
	SupportedSystems []string    `json:"supported_systems,omitempty"`
}

// StartResult is the response to StartReservation.
type StartResult struct {
	SessionID          string   `json:"session_id"`
	Message            string   `json:"message"`
	Step               string   `json:"step,omitempty"`
	AvailabilityStatus string   `json:"availability_status"`
	AvailabilityMethod string   `json:"availability_method,omitempty"`
	Options            []string `json:"options,omitempty"`
	Alternatives       []string `json:"alternative_methods,omitempty"`
	EndSession         bool     `json:"end_session,omitempty"`
}

// StepResult is the response to a single ProcessStep turn.
type StepResult struct {
	SessionID     string         `json:"session_id,omitempty"`
	Message       string         `json:"message"`
	Step          string         `json:"step"`
	Options       []string       `json:"options,omitempty"`
	Error         bool           `json:"error,omitempty"`
	Success       bool           `json:"success,omitempty"`
	Cancelled     bool           `json:"cancelled,omitempty"`
	RestartNeeded bool           `json:"restart_needed,omitempty"`
	BookingResult *BookingResult `json:"booking_result,omitempty"`
}
