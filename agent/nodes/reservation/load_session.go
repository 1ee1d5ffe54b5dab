package reservationnode

import (
	"fmt"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

// LoadSession resolves the session record. An unknown id surfaces as
// ErrSessionNotFound for the service to translate into a restart reply.
func LoadSession(in *GraphState, store *statex.SessionStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Get(in.SessionID)
	if err != nil {
		return nil, err
	}
	in.Session = sess
	return in, nil
}
