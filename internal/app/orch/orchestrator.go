package orch

import (
	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Hub     *app.Hub
	Rooms   core.RoomRegistry
	Signals *app.SignalRelay
	Files   *app.FileRelay
}

// New wires a hub, an in-memory room registry and both relays.
func New(policy app.Policy) *Orchestrator {
	hub := app.NewHub(policy)
	return &Orchestrator{
		Hub:     hub,
		Rooms:   app.NewRoomManager(hub),
		Signals: app.NewSignalRelay(hub),
		Files:   app.NewFileRelay(hub),
	}
}

// OnConnect registers the connection and tells the client its id.
func (o *Orchestrator) OnConnect(sid domain.ConnID, conn core.SignalConnection, clientToken string) {
	o.Hub.Register(sid, conn, clientToken)
	o.Hub.SendTo(sid, domain.ConnectionReadyMessage{Type: domain.EvConnectionReady, ID: sid})
}

// OnDisconnect deregisters the connection, then vacates any seat it held so
// no room keeps pointing at a dead connection.
func (o *Orchestrator) OnDisconnect(sid domain.ConnID) {
	o.Hub.Unregister(sid)
	rooms := o.Rooms.Leave(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("rooms_left", len(rooms)).Msg("disconnected")
}
