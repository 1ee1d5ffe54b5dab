package reservationnode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// ValidateRequest normalizes the turn input. Empty text is legal: at
// the confirmation step it means "show me the summary again".
func ValidateRequest(in GraphInput, now func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", contractx.ErrValidation)
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      strings.TrimSpace(in.Text),
		Now:       now(),
	}, nil
}
