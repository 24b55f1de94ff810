package core

import "github.com/dkeye/Poll/internal/domain"

// Frame is one serialized outbound text message.
type Frame []byte

// SessionID identifies one connection. Subscribers over the same
// connection share it, so it is safe to use as a map key.
type SessionID string

// SignalConnection abstracts the per-client text transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// Send writes one frame to the wire. It may block on a slow peer.
	Send(Frame) error
	Close()
}

// RoomService is the core-facing API of a poll room.
// It owns subscribers, votes and ownership but never touches transport resources.
type RoomService interface {
	Room() *domain.Room

	Subscribe(s *Subscriber) bool
	Unsubscribe(id SessionID)
	SubscriberCount() int

	Owner() SessionID
	Prompt() string
	Responses() []string

	Authorize(caller SessionID, a Action) bool
	Apply(caller SessionID, a Action) Outcome
	Vote(caller SessionID, option string) (*domain.VoteChange, bool)
	Tally() domain.Tally
	Notify(f Frame) int
	Snapshot() RoomSnapshot
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
}

// RoomSnapshot is a consistent read-only copy of room state for APIs.
type RoomSnapshot struct {
	Name        domain.RoomName `json:"name"`
	Prompt      string          `json:"prompt"`
	Responses   []string        `json:"responses"`
	Tally       domain.Tally    `json:"tally"`
	MemberCount int             `json:"client_count"`
}
