package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Poll/internal/app"
	"github.com/dkeye/Poll/internal/config"
	"github.com/dkeye/Poll/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, maxRooms int) (*httptest.Server, *app.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		WriteTimeout: time.Second,
		PingPeriod:   time.Minute,
		ReadLimit:    4096,
		MaxRooms:     maxRooms,
		OrderedApply: true,
	}
	orch := app.NewOrchestrator(app.NewDirectory(maxRooms), app.NewRegistry(), cfg.OrderedApply)
	ctl := NewSignalWSController(orch, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws/*room", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, orch
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func receive(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// waitForMembers blocks until the room has n subscribers, so joins are ordered.
func waitForMembers(t *testing.T, orch *app.Orchestrator, room domain.RoomName, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		r, ok := orch.Rooms.Get(room)
		return ok && r.SubscriberCount() == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSignal_PollScenario(t *testing.T) {
	srv, orch := newTestServer(t, 5)

	owner := dial(t, srv, "/ws/poll")
	waitForMembers(t, orch, "poll", 1)
	send(t, owner, `{"type":"set-responses","responses":["a","b"]}`)
	assert.Equal(t, map[string]any{"type": "set-responses", "responses": []any{"a", "b"}}, receive(t, owner))

	guest := dial(t, srv, "/ws/poll")
	waitForMembers(t, orch, "poll", 2)
	send(t, guest, `{"type":"vote","vote":"a"}`)

	want := map[string]any{"type": "vote", "votes": map[string]any{"vote_for": "a", "vote_against": nil}}
	assert.Equal(t, want, receive(t, owner))
	assert.Equal(t, want, receive(t, guest))

	send(t, guest, `{"type":"vote","vote":"b"}`)
	want = map[string]any{"type": "vote", "votes": map[string]any{"vote_for": "b", "vote_against": "a"}}
	assert.Equal(t, want, receive(t, owner))
	assert.Equal(t, want, receive(t, guest))

	room, ok := orch.Rooms.Get("poll")
	require.True(t, ok)
	assert.Equal(t, domain.Tally{"b": 1}, room.Tally())
}

func TestSignal_SilentDrops(t *testing.T) {
	srv, orch := newTestServer(t, 5)

	owner := dial(t, srv, "/ws/poll")
	waitForMembers(t, orch, "poll", 1)
	send(t, owner, `{"type":"set-responses","responses":["a","b"]}`)
	receive(t, owner)

	guest := dial(t, srv, "/ws/poll")
	waitForMembers(t, orch, "poll", 2)

	send(t, guest, `not json`)
	send(t, guest, `{"type":"unknown"}`)
	send(t, guest, `{"type":"set-prompt","prompt":"hijack"}`)
	send(t, guest, `{"type":"vote","vote":"zzz"}`)
	send(t, guest, `{"type":"vote","vote":"a"}`)
	send(t, guest, `{"type":"vote","vote":"a"}`)
	send(t, guest, `{"type":"vote","vote":"b"}`)

	// the connection survives garbage and only real deltas arrive, in order
	first := receive(t, guest)
	assert.Equal(t, "vote", first["type"])
	assert.Equal(t, map[string]any{"vote_for": "a", "vote_against": nil}, first["votes"])
	second := receive(t, guest)
	assert.Equal(t, map[string]any{"vote_for": "b", "vote_against": "a"}, second["votes"])

	room, _ := orch.Rooms.Get("poll")
	assert.Empty(t, room.Prompt())
}

func TestSignal_CapacityRefused(t *testing.T) {
	srv, orch := newTestServer(t, 1)

	dial(t, srv, "/ws/first")
	waitForMembers(t, orch, "first", 1)

	refused := dial(t, srv, "/ws/second")
	require.NoError(t, refused.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := refused.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, ReasonRoomRefused, closeErr.Text)

	// joining the existing room still works at the ceiling
	dial(t, srv, "/ws/first")
	waitForMembers(t, orch, "first", 2)
}

func TestSignal_DisconnectUnsubscribes(t *testing.T) {
	srv, orch := newTestServer(t, 5)

	owner := dial(t, srv, "/ws/poll")
	waitForMembers(t, orch, "poll", 1)
	guest := dial(t, srv, "/ws/poll")
	waitForMembers(t, orch, "poll", 2)

	require.NoError(t, guest.Close())
	waitForMembers(t, orch, "poll", 1)
	require.Eventually(t, func() bool { return orch.Registry.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	room, _ := orch.Rooms.Get("poll")
	send(t, owner, `{"type":"set-prompt","prompt":"still owner"}`)
	assert.Equal(t, map[string]any{"type": "set-prompt", "prompt": "still owner"}, receive(t, owner))
	assert.Equal(t, "still owner", room.Prompt())
}
