// Package reservationnode holds the per-node logic of the reservation
// step graph. Each node is a pure function over the graph state; the
// agent wires them into an eino graph.
package reservationnode

import (
	"time"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
	statex "github.com/tsukimori/yoyaku-agent/agent/state"
)

// GraphInput is one conversation turn addressed to a session.
type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply contractx.StepResult
}

// GraphState is threaded through the nodes of one turn. The session
// pointer is the store's live record; the caller holds the per-session
// lock for the whole graph run.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.ReservationSession
	Reply   contractx.StepResult
}
