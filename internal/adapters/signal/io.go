package signal

import (
	"context"
	"fmt"

	"github.com/dkeye/Poll/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// serve runs the read, write and keepalive loops of one subscriber until
// any of them stops, then removes the subscriber from its room.
func (ctl *SignalWSController) serve(
	serverCtx context.Context,
	ctx context.Context,
	cancel context.CancelFunc,
	sub *core.Subscriber,
	room core.RoomService,
	conn *WsSignalConn,
) {
	defer cancel()
	sid := sub.ID()

	g, gctx := errgroup.WithContext(ctx)
	// ReadMessage does not observe ctx; closing the socket unblocks it.
	stop := context.AfterFunc(gctx, func() {
		if serverCtx.Err() != nil {
			conn.CloseWithReason(websocket.CloseGoingAway, "server shutting down")
			return
		}
		conn.Close()
	})
	defer stop()

	ctl.configureKeepalive(conn)
	g.Go(func() error { return ctl.readPump(sub, room, conn) })
	g.Go(func() error { return sub.Forward(gctx) })
	g.Go(func() error { return ctl.pingLoop(gctx, conn) })

	err := g.Wait()
	ctl.Orch.OnDisconnect(sub, room)
	conn.Close()
	log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("connection closed")
}

func (ctl *SignalWSController) readPump(sub *core.Subscriber, room core.RoomService, c *WsSignalConn) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		ctl.Orch.OnMessage(sub, room, data)
	}
}
