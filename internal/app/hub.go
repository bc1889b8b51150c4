package app

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	conn        core.SignalConnection
	clientToken string
	rooms       map[domain.RoomID]struct{}
}

// Hub tracks live connections and their room-channel subscriptions.
// It never touches room state.
type Hub struct {
	mu       sync.RWMutex
	conns    map[domain.ConnID]*connEntry
	channels map[domain.RoomID]map[domain.ConnID]struct{}
	policy   Policy
}

func NewHub(policy Policy) *Hub {
	if policy == nil {
		policy = SimplePolicy{Action: KickConnection}
	}
	return &Hub{
		conns:    make(map[domain.ConnID]*connEntry),
		channels: make(map[domain.RoomID]map[domain.ConnID]struct{}),
		policy:   policy,
	}
}

func (h *Hub) Register(id domain.ConnID, conn core.SignalConnection, clientToken string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = &connEntry{
		conn:        conn,
		clientToken: clientToken,
		rooms:       make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.hub").Str("sid", string(id)).Msg("registered connection")
}

// Unregister drops the connection and all of its subscriptions.
func (h *Hub) Unregister(id domain.ConnID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.conns[id]
	if !ok {
		return false
	}
	for room := range e.rooms {
		h.removeFromChannel(id, room)
	}
	delete(h.conns, id)
	log.Info().Str("module", "app.hub").Str("sid", string(id)).Msg("unregistered connection")
	return true
}

func (h *Hub) Subscribe(id domain.ConnID, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.conns[id]
	if !ok {
		return
	}
	e.rooms[room] = struct{}{}
	members, ok := h.channels[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		h.channels[room] = members
	}
	members[id] = struct{}{}
	log.Debug().Str("module", "app.hub").Str("sid", string(id)).Str("room_id", string(room)).Msg("subscribed")
}

func (h *Hub) Unsubscribe(id domain.ConnID, room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.conns[id]; ok {
		delete(e.rooms, room)
	}
	h.removeFromChannel(id, room)
}

// CloseChannel unsubscribes everyone from room.
func (h *Hub) CloseChannel(room domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.channels[room] {
		if e, ok := h.conns[id]; ok {
			delete(e.rooms, room)
		}
	}
	delete(h.channels, room)
}

func (h *Hub) removeFromChannel(id domain.ConnID, room domain.RoomID) {
	members, ok := h.channels[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.channels, room)
	}
}

func (h *Hub) SendTo(id domain.ConnID, v any) bool {
	data, ok := encode(v)
	if !ok {
		return false
	}
	h.mu.RLock()
	e, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "app.hub").Str("target", string(id)).Msg("drop: unknown connection")
		return false
	}
	return h.deliver(id, e.conn, data)
}

// BroadcastToRoom delivers v to every subscriber of room except exclude and
// returns how many accepted it.
func (h *Hub) BroadcastToRoom(room domain.RoomID, v any, exclude domain.ConnID) int {
	data, ok := encode(v)
	if !ok {
		return 0
	}

	type target struct {
		id   domain.ConnID
		conn core.SignalConnection
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.channels[room]))
	for id := range h.channels[room] {
		if id == exclude {
			continue
		}
		if e, ok := h.conns[id]; ok {
			targets = append(targets, target{id: id, conn: e.conn})
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, t := range targets {
		if h.deliver(t.id, t.conn, data) {
			sent++
		}
	}
	log.Debug().Str("module", "app.hub").Str("room_id", string(room)).Int("sent_to", sent).Int("targets", len(targets)).Msg("broadcast result")
	return sent
}

func (h *Hub) deliver(id domain.ConnID, conn core.SignalConnection, data core.Frame) bool {
	if err := conn.TrySend(data); err != nil {
		switch h.policy.OnBackPressure(id) {
		case KickConnection:
			log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(id)).Msg("slow connection, kicking")
			conn.Close()
		case DropMessage, NoAction:
			log.Warn().Err(err).Str("module", "app.hub").Str("sid", string(id)).Msg("message dropped")
		}
		return false
	}
	return true
}

func (h *Hub) Connected(id domain.ConnID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[id]
	return ok
}

func (h *Hub) ClientToken(id domain.ConnID) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if e, ok := h.conns[id]; ok {
		return e.clientToken
	}
	return ""
}

// RoomsOf lists the room channels id is subscribed to.
func (h *Hub) RoomsOf(id domain.ConnID) []domain.RoomID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.conns[id]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(e.rooms))
	for room := range e.rooms {
		out = append(out, room)
	}
	return out
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func encode(v any) (core.Frame, bool) {
	if f, ok := v.(core.Frame); ok {
		return f, true
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("encode")
		return nil, false
	}
	return b, true
}

var _ core.Notifier = (*Hub)(nil)
