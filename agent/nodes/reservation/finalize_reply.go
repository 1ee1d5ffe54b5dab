package reservationnode

import (
	"fmt"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Reply.Message) == "" {
		return GraphOutput{}, fmt.Errorf("%w: step handler produced an empty reply", contractx.ErrValidation)
	}

	in.Reply.SessionID = in.SessionID
	if in.Reply.Step == "" && in.Session != nil {
		in.Reply.Step = in.Session.Step.String()
	}
	return GraphOutput{Reply: in.Reply}, nil
}
