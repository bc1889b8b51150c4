package domain

type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	User  User
	Role  Role
	Media map[string]bool
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user User, role Role) *Member {
	return &Member{User: user, Role: role, Media: make(map[string]bool)}
}

// MediaSnapshot copies the last reported enabled flag per media type.
func (m *Member) MediaSnapshot() map[string]bool {
	out := make(map[string]bool, len(m.Media))
	for k, v := range m.Media {
		out[k] = v
	}
	return out
}
