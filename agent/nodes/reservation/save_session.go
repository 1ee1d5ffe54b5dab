package reservationnode

import (
	"errors"
	"fmt"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

// SaveSession commits the turn: cancelled sessions are removed from the
// store, everything else gets its update timestamp refreshed.
func SaveSession(in *GraphState, store *statex.SessionStore) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state has no session", contractx.ErrValidation)
	}

	if in.Reply.Cancelled {
		if err := store.Delete(in.Session.ID); err != nil && !errors.Is(err, contractx.ErrSessionNotFound) {
			return nil, err
		}
		return in, nil
	}

	in.Session.Touch(in.Now)
	return in, nil
}
