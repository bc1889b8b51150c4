package app

import (
	"sync"
	"time"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// roomEntry serializes every operation on one room. closed is set under mu
// before the entry leaves the map, so a holder of a stale pointer still sees
// the room as gone.
type roomEntry struct {
	mu     sync.Mutex
	room   *domain.Room
	closed bool
}

// RoomManager is the in-memory core.RoomRegistry.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
	seats map[domain.ConnID]map[domain.RoomID]struct{}

	notify core.Notifier
	now    func() time.Time
}

func NewRoomManager(notify core.Notifier) *RoomManager {
	return &RoomManager{
		rooms:  make(map[domain.RoomID]*roomEntry),
		seats:  make(map[domain.ConnID]map[domain.RoomID]struct{}),
		notify: notify,
		now:    time.Now,
	}
}

func (m *RoomManager) Create(host domain.User) domain.RoomID {
	id := domain.RoomID(uuid.NewString())
	e := &roomEntry{room: domain.NewRoom(id, host, m.now())}

	m.mu.Lock()
	m.rooms[id] = e
	m.addSeat(host.ID, id)
	m.mu.Unlock()

	m.notify.Subscribe(host.ID, id)
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Str("sid", string(host.ID)).Str("username", host.Username).Msg("room created")
	return id
}

func (m *RoomManager) Join(id domain.RoomID, p domain.User) (domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	err := m.with(id, func(r *domain.Room) error {
		if _, ok := r.MemberOf(p.ID); ok {
			return domain.ErrAlreadyIn
		}
		if r.Participant != nil {
			return domain.ErrRoomFull
		}
		r.Participant = domain.NewMember(p, domain.RoleParticipant)

		m.mu.Lock()
		m.addSeat(p.ID, id)
		m.mu.Unlock()

		m.notify.Subscribe(p.ID, id)
		snap = r.Snapshot()

		// The joiner hears room:joined before the host can react to
		// participant:joined.
		m.notify.SendTo(p.ID, domain.RoomJoinedMessage{
			Type:           domain.EvRoomJoined,
			RoomID:         id,
			Host:           snap.Host,
			MeetingStarted: snap.MeetingStarted,
		})
		m.notify.BroadcastToRoom(id, domain.ParticipantJoinedMessage{
			Type: domain.EvParticipantJoined,
			User: p,
			ID:   p.ID,
		}, p.ID)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "app.rooms").Str("room_id", string(id)).Str("sid", string(p.ID)).Msg("join rejected")
		return domain.RoomSnapshot{}, err
	}
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Str("sid", string(p.ID)).Str("username", p.Username).Msg("participant joined")
	return snap, nil
}

func (m *RoomManager) Info(id domain.RoomID) (domain.RoomSnapshot, error) {
	e, ok := m.get(id)
	if !ok {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	return e.room.Snapshot(), nil
}

func (m *RoomManager) Start(id domain.RoomID) error {
	return m.with(id, func(r *domain.Room) error {
		r.Start = r.Start.Start()
		m.notify.BroadcastToRoom(id, domain.RoomEventMessage{Type: domain.EvMeetingStarted, RoomID: id}, "")
		return nil
	})
}

func (m *RoomManager) RequestStart(id domain.RoomID, from, to domain.ConnID) error {
	return m.with(id, func(r *domain.Room) error {
		r.Start = r.Start.Request()
		m.notify.SendTo(to, domain.RoomEventMessage{Type: domain.EvRequestStart, RoomID: id, From: from})
		return nil
	})
}

func (m *RoomManager) AcceptStart(id domain.RoomID, from, to domain.ConnID) error {
	return m.with(id, func(r *domain.Room) error {
		r.Start = r.Start.Start()
		m.notify.SendTo(to, domain.RoomEventMessage{Type: domain.EvAcceptStart, RoomID: id, From: from})
		m.notify.BroadcastToRoom(id, domain.RoomEventMessage{Type: domain.EvMeetingStarted, RoomID: id}, "")
		return nil
	})
}

func (m *RoomManager) DeclineStart(id domain.RoomID, from, to domain.ConnID) error {
	return m.with(id, func(r *domain.Room) error {
		r.Start = r.Start.Decline()
		m.notify.SendTo(to, domain.RoomEventMessage{Type: domain.EvDeclineStart, RoomID: id, From: from})
		return nil
	})
}

// End notifies the room and deletes it. The id is never valid again.
func (m *RoomManager) End(id domain.RoomID) error {
	e, ok := m.get(id)
	if !ok {
		return domain.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrRoomNotFound
	}
	m.endLocked(e)
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Msg("meeting ended")
	return nil
}

func (m *RoomManager) ToggleMedia(id domain.RoomID, from domain.ConnID, mediaType string, enabled bool) error {
	return m.with(id, func(r *domain.Room) error {
		member, ok := r.MemberOf(from)
		if !ok {
			return domain.ErrNotMember
		}
		member.Media[mediaType] = enabled
		m.notify.BroadcastToRoom(id, domain.MediaToggleMessage{
			Type:      domain.EvToggleMedia,
			MediaType: mediaType,
			Enabled:   enabled,
			Username:  member.User.Username,
		}, "")
		return nil
	})
}

// Leave vacates every seat id holds. The remaining peer gets peer:left;
// a room left with nobody in it is deleted.
func (m *RoomManager) Leave(id domain.ConnID) []domain.RoomID {
	m.mu.RLock()
	held := make([]domain.RoomID, 0, len(m.seats[id]))
	for room := range m.seats[id] {
		held = append(held, room)
	}
	m.mu.RUnlock()

	affected := make([]domain.RoomID, 0, len(held))
	for _, roomID := range held {
		e, ok := m.get(roomID)
		if !ok {
			continue
		}
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			continue
		}
		left, ok := e.room.Vacate(id)
		if !ok {
			e.mu.Unlock()
			continue
		}
		m.mu.Lock()
		m.removeSeat(id, roomID)
		m.mu.Unlock()
		m.notify.Unsubscribe(id, roomID)

		if e.room.Empty() {
			m.endLocked(e)
			log.Info().Str("module", "app.rooms").Str("room_id", string(roomID)).Msg("room deleted, last member left")
		} else {
			e.room.LastActive = m.now()
			m.notify.BroadcastToRoom(roomID, domain.PeerLeftMessage{
				Type:     domain.EvPeerLeft,
				RoomID:   roomID,
				ID:       id,
				Username: left.User.Username,
				Role:     left.Role,
			}, id)
			log.Info().Str("module", "app.rooms").Str("room_id", string(roomID)).Str("sid", string(id)).Str("role", string(left.Role)).Msg("peer left")
		}
		e.mu.Unlock()
		affected = append(affected, roomID)
	}
	return affected
}

// Reap ends every room whose last activity is older than ttl.
func (m *RoomManager) Reap(now time.Time, ttl time.Duration) []domain.RoomID {
	m.mu.RLock()
	entries := make([]*roomEntry, 0, len(m.rooms))
	for _, e := range m.rooms {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	var reaped []domain.RoomID
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed && now.Sub(e.room.LastActive) > ttl {
			reaped = append(reaped, e.room.ID)
			m.endLocked(e)
		}
		e.mu.Unlock()
	}
	if len(reaped) > 0 {
		log.Info().Str("module", "app.rooms").Int("count", len(reaped)).Dur("ttl", ttl).Msg("reaped idle rooms")
	}
	return reaped
}

func (m *RoomManager) List() []domain.RoomInfo {
	m.mu.RLock()
	entries := make([]*roomEntry, 0, len(m.rooms))
	for _, e := range m.rooms {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]domain.RoomInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			out = append(out, domain.RoomInfo{
				ID:        e.room.ID,
				Occupancy: e.room.Occupancy().String(),
				Started:   e.room.Start == domain.Started,
				CreatedAt: e.room.CreatedAt,
			})
		}
		e.mu.Unlock()
	}
	return out
}

func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *RoomManager) get(id domain.RoomID) (*roomEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.rooms[id]
	return e, ok
}

// with runs fn under the room lock. The room is touched only if fn succeeds.
func (m *RoomManager) with(id domain.RoomID, fn func(r *domain.Room) error) error {
	e, ok := m.get(id)
	if !ok {
		return domain.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrRoomNotFound
	}
	if err := fn(e.room); err != nil {
		return err
	}
	e.room.LastActive = m.now()
	return nil
}

// endLocked must be called with e.mu held.
func (m *RoomManager) endLocked(e *roomEntry) {
	id := e.room.ID
	e.closed = true
	m.notify.BroadcastToRoom(id, domain.RoomEventMessage{Type: domain.EvMeetingEnded, RoomID: id}, "")
	m.notify.CloseChannel(id)

	m.mu.Lock()
	delete(m.rooms, id)
	for _, member := range e.room.Members() {
		m.removeSeat(member.User.ID, id)
	}
	m.mu.Unlock()
}

func (m *RoomManager) addSeat(id domain.ConnID, room domain.RoomID) {
	rooms, ok := m.seats[id]
	if !ok {
		rooms = make(map[domain.RoomID]struct{})
		m.seats[id] = rooms
	}
	rooms[room] = struct{}{}
}

func (m *RoomManager) removeSeat(id domain.ConnID, room domain.RoomID) {
	rooms, ok := m.seats[id]
	if !ok {
		return
	}
	delete(rooms, room)
	if len(rooms) == 0 {
		delete(m.seats, id)
	}
}

var _ core.RoomRegistry = (*RoomManager)(nil)
