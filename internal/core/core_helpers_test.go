package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Poll/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []Frame
	failOn int
	closed bool
}

var errFakeWrite = errors.New("fake write failure")

func (c *fakeConn) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOn > 0 && len(c.sent)+1 == c.failOn {
		return errFakeWrite
	}
	c.sent = append(c.sent, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) frames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.sent))
	copy(out, c.sent)
	return out
}

func newTestSubscriber(id string) *Subscriber {
	return NewSubscriber(SessionID(id), domain.NewMember("token-"+id), &fakeConn{})
}

func newTestRoom() RoomService {
	return NewRoomService(domain.NewRoom("test"))
}

// drain pops everything currently queued for s without blocking.
func drain(t *testing.T, s *Subscriber) []map[string]any {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out []map[string]any
	for {
		f, ok := s.mailbox.Pop(ctx)
		if !ok {
			return out
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
}

func mustParse(t *testing.T, msg string) Action {
	t.Helper()
	a, ok := ParseAction([]byte(msg))
	require.True(t, ok, "expected %q to parse", msg)
	return a
}
