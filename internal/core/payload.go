package core

import "github.com/dkeye/Poll/internal/domain"

// Outbound payloads broadcast to every room member.

type resetPayload struct {
	Type ActionKind `json:"type"`
}

type promptPayload struct {
	Type   ActionKind `json:"type"`
	Prompt string     `json:"prompt"`
}

type responsesPayload struct {
	Type      ActionKind `json:"type"`
	Responses []string   `json:"responses"`
}

type votePayload struct {
	Type  ActionKind         `json:"type"`
	Votes *domain.VoteChange `json:"votes"`
}

// Outcome reports what Apply did with an action.
type Outcome int

const (
	// OutcomeApplied means state changed and a broadcast went out.
	OutcomeApplied Outcome = iota
	// OutcomeNoop means the action was valid but changed nothing observable.
	OutcomeNoop
	// OutcomeRejected means the action failed apply-time validation.
	OutcomeRejected
	// OutcomeUnauthorized means the caller lacks permission.
	OutcomeUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNoop:
		return "noop"
	case OutcomeRejected:
		return "rejected"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}
