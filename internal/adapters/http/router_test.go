package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/config"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:           "test",
		AllowedOrigins: []string{"*"},
		ReadLimit:      1 << 20,
		PingPeriod:     time.Second,
		PongWait:       5 * time.Second,
		WriteWait:      time.Second,
		SendBuffer:     16,
		Secret:         "test-secret",
		CreateLimit:    10,
		CreateInterval: time.Minute,
		ICEServers: []config.ICEServer{
			{URLs: []string{"stun:stun.example:3478"}},
			{URLs: []string{"turn:turn.example:3478"}, Username: "u", Credential: "p"},
		},
	}
	o := orch.New(app.SimplePolicy{Action: app.KickConnection})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, cfg, o), o
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t)
	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))
}

func TestSessionCookieIsSet(t *testing.T) {
	r, _ := testRouter(t)
	w := get(r, "/health")
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionName, cookies[0].Name)
}

func TestICEServers(t *testing.T) {
	r, _ := testRouter(t)
	w := get(r, "/api/ice-servers")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ICEServers []struct {
			URLs       []string `json:"urls"`
			Username   string   `json:"username"`
			Credential string   `json:"credential"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ICEServers, 2)
	assert.Equal(t, []string{"stun:stun.example:3478"}, body.ICEServers[0].URLs)
	assert.Equal(t, "u", body.ICEServers[1].Username)
	assert.Equal(t, "p", body.ICEServers[1].Credential)

	var raw struct {
		ICEServers []map[string]any `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw.ICEServers[0], "credential")
	assert.NotContains(t, raw.ICEServers[0], "username")
}

func TestRoomLookupHidesConnectionIDs(t *testing.T) {
	r, o := testRouter(t)

	w := get(r, "/api/rooms/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var e domain.ErrorMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, domain.CodeRoomNotFound, e.Code)

	host, err := domain.NewUser("alice-conn-id", "Alice")
	require.NoError(t, err)
	id := o.Rooms.Create(host)
	guest, err := domain.NewUser("bob-conn-id", "Bob")
	require.NoError(t, err)
	_, err = o.Rooms.Join(id, guest)
	require.NoError(t, err)

	w = get(r, "/api/rooms/"+string(id))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "alice-conn-id")
	assert.NotContains(t, w.Body.String(), "bob-conn-id")

	var view domain.PublicRoomView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, id, view.RoomID)
	assert.Equal(t, "Alice", view.Host)
	assert.Equal(t, "Bob", view.Participant)
	assert.Equal(t, "fully_joined", view.Occupancy)
	assert.False(t, view.MeetingStarted)
}

func TestRoomListHidesRoomIDs(t *testing.T) {
	r, o := testRouter(t)
	host, err := domain.NewUser("h1", "alice")
	require.NoError(t, err)
	id := o.Rooms.Create(host)

	w := get(r, "/api/rooms")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), string(id))
	assert.NotContains(t, w.Body.String(), "h1")

	var body struct {
		Rooms []map[string]any `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.NotContains(t, body.Rooms[0], "id")
	assert.Equal(t, "half_joined", body.Rooms[0]["occupancy"])
	assert.Equal(t, false, body.Rooms[0]["started"])
}

func TestStats(t *testing.T) {
	r, o := testRouter(t)
	host, err := domain.NewUser("h1", "alice")
	require.NoError(t, err)
	o.Rooms.Create(host)

	w := get(r, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats["rooms"])
	assert.Equal(t, 0, stats["connections"])
}

func TestSignalEndpointUpgrades(t *testing.T) {
	r, _ := testRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ready domain.ConnectionReadyMessage
	require.NoError(t, ws.ReadJSON(&ready))
	assert.Equal(t, domain.EvConnectionReady, ready.Type)
	assert.NotEmpty(t, ready.ID)
}
