package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Poll/internal/core"
	"github.com/dkeye/Poll/internal/domain"
	"github.com/dkeye/Poll/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Orchestrator joins connections to rooms and runs the
// parse → authorize → apply → broadcast pipeline for inbound messages.
type Orchestrator struct {
	Registry *Registry
	Rooms    *Directory

	// OrderedApply applies actions inline on the reader goroutine. When false
	// every action gets its own goroutine and actions from one connection
	// may complete out of arrival order.
	OrderedApply bool

	mu       sync.RWMutex
	closing  bool
	inflight conc.WaitGroup
}

func NewOrchestrator(rooms *Directory, reg *Registry, orderedApply bool) *Orchestrator {
	return &Orchestrator{
		Registry:     reg,
		Rooms:        rooms,
		OrderedApply: orderedApply,
	}
}

// Join resolves roomName and subscribes a new Subscriber over conn.
// cancel tears down the connection's loops and is kept in the registry.
func (o *Orchestrator) Join(
	roomName domain.RoomName,
	sid core.SessionID,
	member *domain.Member,
	conn core.SignalConnection,
	cancel context.CancelFunc,
) (*core.Subscriber, core.RoomService, error) {
	room, err := o.Rooms.GetOrCreate(roomName)
	if err != nil {
		metrics.RoomsRefusedTotal.Inc()
		return nil, nil, fmt.Errorf("join %q: %w", roomName, err)
	}
	sub := core.NewSubscriber(sid, member, conn)
	room.Subscribe(sub)
	o.Registry.Bind(sid, roomName, cancel)
	metrics.SubscribersConnected.Inc()
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomName)).Msg("joined room")
	return sub, room, nil
}

// OnMessage handles one inbound text message. Malformed, unauthorized and
// invalid actions are dropped without reply.
func (o *Orchestrator) OnMessage(sub *core.Subscriber, room core.RoomService, data []byte) {
	action, ok := core.ParseAction(data)
	if !ok {
		metrics.MessagesDroppedTotal.Inc()
		log.Debug().Str("module", "app.orch").Str("sid", string(sub.ID())).Int("bytes", len(data)).Msg("dropped unparseable message")
		return
	}
	if o.OrderedApply {
		o.apply(sub.ID(), room, action)
		return
	}
	sid := sub.ID()
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closing {
		return
	}
	o.inflight.Go(func() {
		o.apply(sid, room, action)
	})
}

func (o *Orchestrator) apply(sid core.SessionID, room core.RoomService, action core.Action) core.Outcome {
	outcome := room.Apply(sid, action)
	metrics.ActionsTotal.WithLabelValues(string(action.Kind()), outcome.String()).Inc()
	if outcome != core.OutcomeApplied {
		log.Debug().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(room.Room().Name)).Str("action", string(action.Kind())).Str("outcome", outcome.String()).Msg("action not applied")
	}
	return outcome
}

// OnDisconnect removes sub from fan-out. Votes it cast remain counted.
func (o *Orchestrator) OnDisconnect(sub *core.Subscriber, room core.RoomService) {
	room.Unsubscribe(sub.ID())
	sub.Close()
	o.Registry.Unbind(sub.ID())
	metrics.SubscribersConnected.Dec()
	log.Info().Str("module", "app.orch").Str("sid", string(sub.ID())).Str("room", string(room.Room().Name)).Msg("left room")
}

// Wait blocks until every dispatched apply step has finished.
// A panicking apply step is logged, not re-raised.
func (o *Orchestrator) Wait() {
	if r := o.inflight.WaitAndRecover(); r != nil {
		log.Error().Str("module", "app.orch").Str("panic", r.String()).Msg("apply step panicked")
	}
}

// Shutdown stops dispatching, cancels every session and waits for
// in-flight applies.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	o.closing = true
	o.mu.Unlock()

	n := o.Registry.CancelAll()
	o.Wait()
	log.Info().Str("module", "app.orch").Int("sessions", n).Msg("orchestrator stopped")
}
