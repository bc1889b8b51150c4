package core

import (
	"time"

	"github.com/dkeye/Duet/internal/domain"
)

// RoomRegistry owns every Room record. Mutations of a single room are
// serialized; notifications go out through the Notifier it was built with.
type RoomRegistry interface {
	Create(host domain.User) domain.RoomID
	Join(id domain.RoomID, participant domain.User) (domain.RoomSnapshot, error)
	Info(id domain.RoomID) (domain.RoomSnapshot, error)

	Start(id domain.RoomID) error
	RequestStart(id domain.RoomID, from, to domain.ConnID) error
	AcceptStart(id domain.RoomID, from, to domain.ConnID) error
	DeclineStart(id domain.RoomID, from, to domain.ConnID) error
	End(id domain.RoomID) error
	ToggleMedia(id domain.RoomID, from domain.ConnID, mediaType string, enabled bool) error

	// Leave vacates every seat held by id and returns the affected rooms.
	Leave(id domain.ConnID) []domain.RoomID
	// Reap ends rooms idle for longer than ttl.
	Reap(now time.Time, ttl time.Duration) []domain.RoomID

	List() []domain.RoomInfo
	Count() int
}
