package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Poll/internal/app"
	"github.com/dkeye/Poll/internal/config"
	"github.com/dkeye/Poll/internal/core"
	"github.com/dkeye/Poll/internal/domain"
	"github.com/dkeye/Poll/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ReasonRoomRefused is sent in the close frame when no room can be provided.
const ReasonRoomRefused = "Room does not exist"

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	WriteControl(mt int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// WsSignalConn is the WebSocket transport endpoint of one subscriber.
// It implements core.SignalConnection.
type WsSignalConn struct {
	conn         WSConn
	writeTimeout time.Duration
	once         sync.Once
}

func NewWsSignalConn(conn WSConn, writeTimeout time.Duration) *WsSignalConn {
	return &WsSignalConn{conn: conn, writeTimeout: writeTimeout}
}

// Send writes one text frame. Only the subscriber's forward loop calls it.
func (c *WsSignalConn) Send(f core.Frame) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		metrics.WriteErrorsTotal.Inc()
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, f); err != nil {
		metrics.WriteErrorsTotal.Inc()
		return err
	}
	metrics.FramesSentTotal.Inc()
	return nil
}

func (c *WsSignalConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *WsSignalConn) Close() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}

// CloseWithReason sends a close frame carrying code and reason, then closes.
func (c *WsSignalConn) CloseWithReason(code int, reason string) {
	c.once.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
		_ = c.conn.Close()
	})
}

type SignalWSController struct {
	Orch *app.Orchestrator
	Cfg  *config.Config
}

func NewSignalWSController(orch *app.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{Orch: orch, Cfg: cfg}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and joins the room named by the "room"
// path parameter. When no room can be provided the socket is closed with
// ReasonRoomRefused.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	token := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client_token", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := NewWsSignalConn(ws, ctl.Cfg.WriteTimeout)

	name, err := domain.NewRoomName(c.Param("room"))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("path", c.Param("room")).Msg("bad room path")
		conn.CloseWithReason(websocket.CloseNormalClosure, ReasonRoomRefused)
		return
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sub, room, err := ctl.Orch.Join(name, sid, domain.NewMember(token), conn, cancel)
	if err != nil {
		cancel()
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join refused")
		conn.CloseWithReason(websocket.CloseNormalClosure, ReasonRoomRefused)
		return
	}

	ws.SetReadLimit(ctl.Cfg.ReadLimit)
	go ctl.serve(ctx, sessCtx, cancel, sub, room, conn)
}
