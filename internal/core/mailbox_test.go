package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_FIFO(t *testing.T) {
	m := NewMailbox()
	for i := range 1000 {
		require.True(t, m.Push(Frame(fmt.Sprint(i))))
	}
	assert.Equal(t, 1000, m.Len())

	ctx := context.Background()
	for i := range 1000 {
		f, ok := m.Pop(ctx)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(i), string(f))
	}
	assert.Zero(t, m.Len())
}

func TestMailbox_PopWaitsForPush(t *testing.T) {
	m := NewMailbox()
	got := make(chan Frame, 1)
	go func() {
		f, _ := m.Pop(context.Background())
		got <- f
	}()

	time.Sleep(20 * time.Millisecond)
	m.Push(Frame("late"))

	select {
	case f := <-got:
		assert.Equal(t, "late", string(f))
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestMailbox_PopHonorsContext(t *testing.T) {
	m := NewMailbox()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := m.Pop(ctx)
	assert.False(t, ok)
}

func TestMailbox_Close(t *testing.T) {
	m := NewMailbox()
	m.Push(Frame("dropped"))

	done := make(chan bool, 1)
	m2 := NewMailbox()
	go func() {
		_, ok := m2.Pop(context.Background())
		done <- ok
	}()

	m.Close()
	m.Close()
	m2.Close()

	assert.False(t, m.Push(Frame("after close")))
	_, ok := m.Pop(context.Background())
	assert.False(t, ok)
	assert.Zero(t, m.Len())

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not release a blocked Pop")
	}
}
