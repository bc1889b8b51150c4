package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/stretchr/testify/require"
)

var errFull = errors.New("buffer full")

// fakeConn records every frame it accepts.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool

	// onSend runs after a frame is accepted, outside mu.
	onSend func(core.Frame)
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	if c.full || c.closed {
		c.mu.Unlock()
		return errFull
	}
	c.frames = append(c.frames, f)
	hook := c.onSend
	c.mu.Unlock()
	if hook != nil {
		hook(f)
	}
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// events decodes the recorded frames into generic maps.
func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, ev := range c.events(t) {
		out = append(out, ev["type"].(string))
	}
	return out
}

// last returns the most recent event of the given type.
func (c *fakeConn) last(t *testing.T, typ domain.EventType) map[string]any {
	t.Helper()
	evs := c.events(t)
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i]["type"] == string(typ) {
			return evs[i]
		}
	}
	t.Fatalf("no %q event, got %v", typ, c.types(t))
	return nil
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

type testEnv struct {
	hub   *Hub
	rooms *RoomManager
}

func newTestEnv() *testEnv {
	hub := NewHub(SimplePolicy{Action: KickConnection})
	return &testEnv{hub: hub, rooms: NewRoomManager(hub)}
}

func (e *testEnv) connect(id domain.ConnID) *fakeConn {
	c := &fakeConn{}
	e.hub.Register(id, c, "token-"+string(id))
	return c
}
