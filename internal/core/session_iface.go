package core

import "github.com/dkeye/Duet/internal/domain"

// Notifier is the ConnectionHub surface the registry and relays depend on.
// Sends never block; a target that is gone or backed up is a silent drop.
type Notifier interface {
	SendTo(id domain.ConnID, v any) bool
	BroadcastToRoom(room domain.RoomID, v any, exclude domain.ConnID) int

	Subscribe(id domain.ConnID, room domain.RoomID)
	Unsubscribe(id domain.ConnID, room domain.RoomID)
	CloseChannel(room domain.RoomID)
}
