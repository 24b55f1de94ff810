package core

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/dkeye/Poll/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory poll room.
// One mutex guards all state; fan-out happens inside the critical section
// so every mailbox observes deltas in commit order.
type roomImpl struct {
	room *domain.Room

	mu          sync.RWMutex
	prompt      string
	responses   []string
	votes       map[SessionID]string
	owner       SessionID
	subscribers []*Subscriber
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:      room,
		responses: []string{},
		votes:     make(map[SessionID]string),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

// Subscribe adds s to the fan-out list. The first subscriber ever becomes
// the owner; ownership is never reassigned.
func (r *roomImpl) Subscribe(s *Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(s.ID()) >= 0 {
		return false
	}
	if r.owner == "" {
		r.owner = s.ID()
	}
	r.subscribers = append(r.subscribers, s)
	log.Info().Str("module", "core.room").Str("room", string(r.room.Name)).Str("sid", string(s.ID())).Bool("owner", r.owner == s.ID()).Msg("subscriber added")
	return true
}

// Unsubscribe stops fan-out to id. Its recorded vote stays.
func (r *roomImpl) Unsubscribe(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		r.subscribers = slices.Delete(r.subscribers, i, i+1)
		log.Info().Str("module", "core.room").Str("room", string(r.room.Name)).Str("sid", string(id)).Msg("subscriber removed")
	}
}

func (r *roomImpl) indexOf(id SessionID) int {
	return slices.IndexFunc(r.subscribers, func(s *Subscriber) bool { return s.ID() == id })
}

func (r *roomImpl) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

func (r *roomImpl) Owner() SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

func (r *roomImpl) Prompt() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prompt
}

func (r *roomImpl) Responses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.responses)
}

func (r *roomImpl) Authorize(caller SessionID, a Action) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authorized(caller, a)
}

func (r *roomImpl) authorized(caller SessionID, a Action) bool {
	switch a.Permission() {
	case PermissionAll:
		return true
	case PermissionOwner:
		return r.owner != "" && caller == r.owner
	default:
		return false
	}
}

// Apply authorizes a, mutates the room and broadcasts the resulting delta.
func (r *roomImpl) Apply(caller SessionID, a Action) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.authorized(caller, a) {
		return OutcomeUnauthorized
	}
	payload, outcome := r.mutate(caller, a)
	if outcome != OutcomeApplied {
		return outcome
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("action", string(a.Kind())).Msg("marshal payload")
		return OutcomeRejected
	}
	sent := r.notifyLocked(Frame(data))
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Name)).Str("sid", string(caller)).Str("action", string(a.Kind())).Int("sent_to", sent).Msg("action applied")
	return OutcomeApplied
}

func (r *roomImpl) mutate(caller SessionID, a Action) (any, Outcome) {
	switch act := a.(type) {
	case ResetAction:
		clear(r.votes)
		return resetPayload{Type: KindReset}, OutcomeApplied
	case SetPromptAction:
		r.prompt = act.Prompt
		return promptPayload{Type: KindSetPrompt, Prompt: act.Prompt}, OutcomeApplied
	case SetResponsesAction:
		r.responses = distinct(act.Responses)
		return responsesPayload{Type: KindSetResponses, Responses: slices.Clone(r.responses)}, OutcomeApplied
	case VoteAction:
		if act.Option == nil {
			return nil, OutcomeRejected
		}
		change, outcome := r.voteLocked(caller, *act.Option)
		if outcome != OutcomeApplied {
			return nil, outcome
		}
		return votePayload{Type: KindVote, Votes: change}, OutcomeApplied
	default:
		return nil, OutcomeRejected
	}
}

// Vote records caller's choice. It reports false when option is not an
// allowed response or equals the current vote.
func (r *roomImpl) Vote(caller SessionID, option string) (*domain.VoteChange, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	change, outcome := r.voteLocked(caller, option)
	return change, outcome == OutcomeApplied
}

func (r *roomImpl) voteLocked(caller SessionID, option string) (*domain.VoteChange, Outcome) {
	if !slices.Contains(r.responses, option) {
		return nil, OutcomeRejected
	}
	old, voted := r.votes[caller]
	if voted && old == option {
		return nil, OutcomeNoop
	}
	r.votes[caller] = option

	change := &domain.VoteChange{VoteFor: &option}
	if voted {
		change.VoteAgainst = &old
	}
	return change, OutcomeApplied
}

// Tally counts current votes per option, including options that were
// removed from the response set since the vote was cast.
func (r *roomImpl) Tally() domain.Tally {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tallyLocked()
}

func (r *roomImpl) tallyLocked() domain.Tally {
	t := make(domain.Tally, len(r.votes))
	for _, v := range r.votes {
		t[v]++
	}
	return t
}

// Notify enqueues f to every current subscriber and returns how many accepted it.
func (r *roomImpl) Notify(f Frame) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notifyLocked(f)
}

func (r *roomImpl) notifyLocked(f Frame) int {
	sent := 0
	for _, s := range r.subscribers {
		if s.Notify(f) {
			sent++
		}
	}
	return sent
}

func (r *roomImpl) Snapshot() RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RoomSnapshot{
		Name:        r.room.Name,
		Prompt:      r.prompt,
		Responses:   slices.Clone(r.responses),
		Tally:       r.tallyLocked(),
		MemberCount: len(r.subscribers),
	}
}

func distinct(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
