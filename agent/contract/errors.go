package contract

import "errors"

// Site-level booking outcomes (blocks, failed submissions) are not
// errors; they travel as BookingResult values.
var (
	ErrValidation      = errors.New("validation failed")
	ErrSessionNotFound = errors.New("reservation session not found")
	ErrUnsupportedSite = errors.New("unsupported reservation site")
	ErrInternal        = errors.New("internal error")
)
