package core

import (
	"context"
	"fmt"

	"github.com/dkeye/Poll/internal/domain"
)

// Subscriber is one connected client inside a room: its identity,
// its transport endpoint and the mailbox decoupling fan-out from the wire.
type Subscriber struct {
	id      SessionID
	meta    *domain.Member
	conn    SignalConnection
	mailbox *Mailbox
}

func NewSubscriber(id SessionID, meta *domain.Member, conn SignalConnection) *Subscriber {
	return &Subscriber{
		id:      id,
		meta:    meta,
		conn:    conn,
		mailbox: NewMailbox(),
	}
}

func (s *Subscriber) ID() SessionID          { return s.id }
func (s *Subscriber) Meta() *domain.Member   { return s.meta }
func (s *Subscriber) Conn() SignalConnection { return s.conn }
func (s *Subscriber) Pending() int           { return s.mailbox.Len() }

// Notify queues f for delivery. Safe to call after Close; the frame is dropped.
func (s *Subscriber) Notify(f Frame) bool {
	return s.mailbox.Push(f)
}

// Forward drains the mailbox onto the connection, one frame at a time,
// until ctx is done, the mailbox is closed or a write fails.
func (s *Subscriber) Forward(ctx context.Context) error {
	for {
		f, ok := s.mailbox.Pop(ctx)
		if !ok {
			return ctx.Err()
		}
		if err := s.conn.Send(f); err != nil {
			return fmt.Errorf("forward to %s: %w", s.id, err)
		}
	}
}

func (s *Subscriber) Close() {
	s.mailbox.Close()
}
