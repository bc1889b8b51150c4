package signal

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainRoom(id string) domain.RoomID { return domain.RoomID(id) }

type memConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *memConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *memConn) Close() {}

func (c *memConn) last(t *testing.T) map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.frames)
	var m map[string]any
	require.NoError(t, json.Unmarshal(c.frames[len(c.frames)-1], &m))
	return m
}

func newController(t *testing.T) (*SignalWSController, *memConn, domain.ConnID) {
	t.Helper()
	ctl := NewSignalWSController(orch.New(app.SimplePolicy{Action: app.DropMessage}), testConfig())
	conn := &memConn{}
	sid := domain.ConnID("c1")
	ctl.Orch.OnConnect(sid, conn, "tok")
	return ctl, conn, sid
}

func TestDispatchTable_CoversInboundEvents(t *testing.T) {
	ctl, _, _ := newController(t)
	for _, ev := range domain.InboundEvents {
		assert.Contains(t, ctl.handlers, ev, "no handler for %s", ev)
	}
	assert.Len(t, ctl.handlers, len(domain.InboundEvents))
}

func TestHandleSignal_PanicBecomesInternalError(t *testing.T) {
	ctl, conn, sid := newController(t)
	ctl.handlers["test:boom"] = func(domain.ConnID, []byte) { panic("boom") }

	require.NotPanics(t, func() {
		ctl.handleSignal(sid, []byte(`{"type":"test:boom"}`))
	})
	got := conn.last(t)
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "internal", got["code"])
	assert.Equal(t, "failed to handle test:boom", got["error"])
}

func TestHandleSignal_MissingRoomIsSilent(t *testing.T) {
	ctl, conn, sid := newController(t)
	before := len(conn.frames)

	for _, raw := range []string{
		`{"type":"meeting:start","roomId":"gone"}`,
		`{"type":"start:meeting:request","roomId":"gone","to":"x"}`,
		`{"type":"meeting:accepted","roomId":"gone","to":"x"}`,
		`{"type":"meeting:declined","roomId":"gone","to":"x"}`,
		`{"type":"leave:meeting","roomId":"gone"}`,
		`{"type":"media:toggle","roomId":"gone","mediaType":"audio"}`,
	} {
		ctl.handleSignal(sid, []byte(raw))
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Len(t, conn.frames, before)
}

func TestHandleSignal_RelayToUnknownTargetIsSilent(t *testing.T) {
	ctl, conn, sid := newController(t)
	before := len(conn.frames)
	ctl.handleSignal(sid, []byte(`{"type":"user:call","to":"ghost","offer":{"sdp":"x"}}`))
	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Len(t, conn.frames, before)
}
