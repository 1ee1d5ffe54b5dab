package contract

import (
	"context"
	"time"
)

// TextCompleter is the language-model text collaborator. It returns the
// raw model text for a system/user prompt pair.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DatetimeExtractor turns free text into a reservation timestamp. The
// returned time must be strictly later than now; anything else is an
// extraction failure wrapped in ErrValidation.
type DatetimeExtractor interface {
	Extract(ctx context.Context, text string, now time.Time) (time.Time, error)
}

// Driver automates booking against one family of reservation websites.
// Run always returns a usable BookingResult; the error return is for
// infrastructure failures only (browser could not be acquired).
type Driver interface {
	Name() string
	Run(ctx context.Context, req BookingRequest, targetURL string) (BookingResult, error)
}
