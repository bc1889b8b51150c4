package orch

import (
	"context"
	"time"

	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateRoom opens a room hosted by sid.
func (o *Orchestrator) CreateRoom(sid domain.ConnID, username string) (domain.RoomID, error) {
	host, err := domain.NewUser(sid, username)
	if err != nil {
		return "", err
	}
	return o.Rooms.Create(host), nil
}

func (o *Orchestrator) JoinRoom(sid domain.ConnID, id domain.RoomID, username string) (domain.RoomSnapshot, error) {
	p, err := domain.NewUser(sid, username)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}
	return o.Rooms.Join(id, p)
}

// LeaveMeeting ends the room for everyone. The sender is unsubscribed even
// when the room is already gone.
func (o *Orchestrator) LeaveMeeting(sid domain.ConnID, id domain.RoomID) error {
	err := o.Rooms.End(id)
	o.Hub.Unsubscribe(sid, id)
	return err
}

// RunReaper ends rooms idle for longer than ttl until ctx is done.
func (o *Orchestrator) RunReaper(ctx context.Context, interval, ttl time.Duration) error {
	if ttl <= 0 || interval <= 0 {
		log.Info().Str("module", "orch").Msg("room reaper disabled")
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Str("module", "orch").Dur("interval", interval).Dur("ttl", ttl).Msg("room reaper started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			o.Rooms.Reap(now, ttl)
		}
	}
}
