package domain

import "time"

type RoomID string

// Occupancy is the seat state of a live room. A room with no members is
// deleted, so there is no Empty value.
type Occupancy int

const (
	HalfJoined Occupancy = iota + 1
	FullyJoined
)

func (o Occupancy) String() string {
	switch o {
	case HalfJoined:
		return "half_joined"
	case FullyJoined:
		return "fully_joined"
	default:
		return "unknown"
	}
}

// StartState is orthogonal to Occupancy. Started is absorbing while the
// room lives.
type StartState int

const (
	NotStarted StartState = iota
	Requested
	Started
)

func (s StartState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Requested:
		return "requested"
	case Started:
		return "started"
	default:
		return "unknown"
	}
}

func (s StartState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Request moves NotStarted to Requested; any other state is kept.
func (s StartState) Request() StartState {
	if s == NotStarted {
		return Requested
	}
	return s
}

// Decline withdraws a pending request.
func (s StartState) Decline() StartState {
	if s == Requested {
		return NotStarted
	}
	return s
}

func (s StartState) Start() StartState { return Started }

// Room is the persistent part of a two-seat session.
type Room struct {
	ID          RoomID
	Host        *Member
	Participant *Member
	Start       StartState
	CreatedAt   time.Time
	LastActive  time.Time
}

func NewRoom(id RoomID, host User, now time.Time) *Room {
	return &Room{
		ID:         id,
		Host:       NewMember(host, RoleHost),
		Start:      NotStarted,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (r *Room) Occupancy() Occupancy {
	if r.Participant != nil {
		return FullyJoined
	}
	return HalfJoined
}

// MemberOf resolves a connection to its seat in the room.
func (r *Room) MemberOf(id ConnID) (*Member, bool) {
	if r.Host != nil && r.Host.User.ID == id {
		return r.Host, true
	}
	if r.Participant != nil && r.Participant.User.ID == id {
		return r.Participant, true
	}
	return nil, false
}

// Members returns the occupied seats, host first.
func (r *Room) Members() []*Member {
	out := make([]*Member, 0, 2)
	if r.Host != nil {
		out = append(out, r.Host)
	}
	if r.Participant != nil {
		out = append(out, r.Participant)
	}
	return out
}

// Vacate removes id from its seat. When the host leaves and a participant
// remains, the participant is promoted so the free seat is always the
// participant seat. It reports the removed member and whether the room is
// now empty.
func (r *Room) Vacate(id ConnID) (*Member, bool) {
	m, ok := r.MemberOf(id)
	if !ok {
		return nil, false
	}
	if m == r.Host {
		r.Host = r.Participant
		r.Participant = nil
		if r.Host != nil {
			r.Host.Role = RoleHost
		}
	} else {
		r.Participant = nil
	}
	return m, true
}

func (r *Room) Empty() bool { return r.Host == nil }

func (r *Room) Snapshot() RoomSnapshot {
	snap := RoomSnapshot{
		RoomID:         r.ID,
		MeetingStarted: r.Start == Started,
		StartState:     r.Start,
		Media:          make(map[ConnID]map[string]bool, 2),
	}
	if r.Host != nil {
		snap.Host = r.Host.User
		snap.Media[r.Host.User.ID] = r.Host.MediaSnapshot()
	}
	if r.Participant != nil {
		p := r.Participant.User
		snap.Participant = &p
		snap.Media[p.ID] = r.Participant.MediaSnapshot()
	}
	return snap
}

// RoomSnapshot is a read-only copy handed out of the registry.
type RoomSnapshot struct {
	RoomID         RoomID                     `json:"roomId"`
	Host           User                       `json:"host"`
	Participant    *User                      `json:"participant"`
	MeetingStarted bool                       `json:"meetingStarted"`
	StartState     StartState                 `json:"startState"`
	Media          map[ConnID]map[string]bool `json:"media,omitempty"`
}

// RoomInfo is the listing entry. The id stays server-side: room ids are the
// only secret guarding a room.
type RoomInfo struct {
	ID        RoomID    `json:"-"`
	Occupancy string    `json:"occupancy"`
	Started   bool      `json:"started"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicRoomView is a snapshot without connection ids, for the REST surface.
type PublicRoomView struct {
	RoomID         RoomID     `json:"roomId"`
	Occupancy      string     `json:"occupancy"`
	Host           string     `json:"host"`
	Participant    string     `json:"participant,omitempty"`
	MeetingStarted bool       `json:"meetingStarted"`
	StartState     StartState `json:"startState"`
}

func (s RoomSnapshot) Public() PublicRoomView {
	v := PublicRoomView{
		RoomID:         s.RoomID,
		Occupancy:      HalfJoined.String(),
		Host:           s.Host.Username,
		MeetingStarted: s.MeetingStarted,
		StartState:     s.StartState,
	}
	if s.Participant != nil {
		v.Occupancy = FullyJoined.String()
		v.Participant = s.Participant.Username
	}
	return v
}
