package signal

import (
	"context"
	"fmt"
	"time"
)

// pongWait derives the read deadline from the ping period, as in the
// gorilla chat example (ping at 9/10 of the pong wait).
func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.Cfg.PingPeriod * 10 / 9
}

func (ctl *SignalWSController) configureKeepalive(c *WsSignalConn) {
	if ctl.Cfg.PingPeriod <= 0 {
		return
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})
}

func (ctl *SignalWSController) pingLoop(ctx context.Context, c *WsSignalConn) error {
	if ctl.Cfg.PingPeriod <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Ping(); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}
