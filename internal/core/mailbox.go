package core

import (
	"context"
	"sync"
)

// Mailbox is an unbounded FIFO of outbound frames.
// Any number of producers may Push; exactly one consumer may Pop.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Frame
	closed bool

	ready chan struct{}
	done  chan struct{}
	once  sync.Once
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Push enqueues f and never blocks. It reports false once the mailbox is closed.
func (m *Mailbox) Push(f Frame) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, f)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// Pop blocks until a frame is available, ctx is done or the mailbox is closed.
func (m *Mailbox) Pop(ctx context.Context) (Frame, bool) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, false
		}
		if len(m.queue) > 0 {
			f := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return f, true
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-m.done:
			return nil, false
		case <-m.ready:
		}
	}
}

func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close drops pending frames. Further pushes are ignored.
func (m *Mailbox) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.queue = nil
		m.mu.Unlock()
		close(m.done)
	})
}
