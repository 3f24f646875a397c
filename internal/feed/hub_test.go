package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/autoapprove/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticValidator string

func (v staticValidator) Validate(token string) (*auth.Claims, error) {
	if token != string(v) {
		return nil, errors.New("bad token")
	}
	return &auth.Claims{AdminID: 999}, nil
}

func startServer(t *testing.T, hub *Hub, origins []string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/events", hub.Handler(staticValidator("good"), origins))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events" + query
}

func TestPublish_NoClients(t *testing.T) {
	hub := NewHub(zap.NewNop())

	assert.NotPanics(t, func() {
		hub.Publish("join_approved", map[string]int{"n": 1})
		hub.Publish("join_approved", nil)
	})
	assert.Equal(t, int64(2), hub.seq.Load())
}

func TestHub_DeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zap.NewNop())
	fixed := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)
	hub.now = func() time.Time { return fixed }
	go hub.Run(ctx)

	srv := startServer(t, hub, nil)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("broadcast_done", map[string]int{"sent": 2})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		ID   string         `json:"id"`
		Kind string         `json:"kind"`
		Data map[string]int `json:"d"`
		Seq  int64          `json:"seq"`
		At   time.Time      `json:"at"`
	}
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "broadcast_done", ev.Kind)
	assert.Equal(t, map[string]int{"sent": 2}, ev.Data)
	assert.Equal(t, int64(1), ev.Seq)
	assert.True(t, fixed.Equal(ev.At))
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := startServer(t, hub, nil)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=good"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, hub.Clients())
}

func TestHandler_RejectsBadTokens(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := startServer(t, hub, nil)

	for name, query := range map[string]string{"missing": "", "invalid": "?token=bad"} {
		t.Run(name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, query), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	restricted := originChecker([]string{"https://dash.example.com"})
	assert.True(t, restricted(req("")))
	assert.True(t, restricted(req("https://dash.example.com")))
	assert.False(t, restricted(req("https://evil.example.com")))

	open := originChecker([]string{"*"})
	assert.True(t, open(req("https://anything.example.com")))

	none := originChecker(nil)
	assert.False(t, none(req("https://dash.example.com")))
}
