package signal

import (
	"errors"

	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleCreateRoom(sid domain.ConnID, data []byte) {
	if !ctl.limiter.Allow(sid) {
		ctl.replyError(sid, domain.ErrRateLimited)
		return
	}
	p, ok := decode[domain.CreateRoomMessage](ctl, sid, data)
	if !ok {
		return
	}
	id, err := ctl.Orch.CreateRoom(sid, p.Username)
	if err != nil {
		ctl.replyError(sid, err)
		return
	}
	ctl.reply(sid, domain.RoomCreatedMessage{Type: domain.EvRoomCreated, RoomID: id})
}

func (ctl *SignalWSController) handleJoinRoom(sid domain.ConnID, data []byte) {
	if !ctl.limiter.Allow(sid) {
		ctl.replyError(sid, domain.ErrRateLimited)
		return
	}
	p, ok := decode[domain.JoinRoomMessage](ctl, sid, data)
	if !ok {
		return
	}
	// room:joined is sent by the registry under the room lock.
	_, err := ctl.Orch.JoinRoom(sid, p.RoomID, p.User.Username)
	switch {
	case errors.Is(err, domain.ErrRoomFull):
		ctl.reply(sid, domain.ErrorMessage{Type: domain.EvRoomFull, Code: domain.CodeRoomFull, Error: err.Error()})
	case err != nil:
		ctl.replyError(sid, err)
	}
}

func (ctl *SignalWSController) handleRoomInfo(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.RoomRefMessage](ctl, sid, data)
	if !ok {
		return
	}
	snap, err := ctl.Orch.Rooms.Info(p.RoomID)
	if err != nil {
		ctl.replyError(sid, err)
		return
	}
	ctl.reply(sid, domain.RoomInfoMessage{Type: domain.EvRoomInfo, RoomSnapshot: snap})
}

func (ctl *SignalWSController) handleStartMeeting(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.RoomRefMessage](ctl, sid, data)
	if !ok {
		return
	}
	ctl.ignoreMissing(sid, p.RoomID, ctl.Orch.Rooms.Start(p.RoomID))
}

func (ctl *SignalWSController) handleLeaveMeeting(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.LeaveMeetingMessage](ctl, sid, data)
	if !ok {
		return
	}
	ctl.ignoreMissing(sid, p.RoomID, ctl.Orch.LeaveMeeting(sid, p.RoomID))
}

func (ctl *SignalWSController) handleRequestStart(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.TargetedRoomMessage](ctl, sid, data)
	if !ok {
		return
	}
	ctl.ignoreMissing(sid, p.RoomID, ctl.Orch.Rooms.RequestStart(p.RoomID, sid, p.To))
}

func (ctl *SignalWSController) handleAcceptStart(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.TargetedRoomMessage](ctl, sid, data)
	if !ok {
		return
	}
	ctl.ignoreMissing(sid, p.RoomID, ctl.Orch.Rooms.AcceptStart(p.RoomID, sid, p.To))
}

func (ctl *SignalWSController) handleDeclineStart(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.TargetedRoomMessage](ctl, sid, data)
	if !ok {
		return
	}
	ctl.ignoreMissing(sid, p.RoomID, ctl.Orch.Rooms.DeclineStart(p.RoomID, sid, p.To))
}

func (ctl *SignalWSController) handleToggleMedia(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.ToggleMediaMessage](ctl, sid, data)
	if !ok {
		return
	}
	ctl.ignoreMissing(sid, p.RoomID, ctl.Orch.Rooms.ToggleMedia(p.RoomID, sid, p.MediaType, p.Enabled))
}

// ignoreMissing drops RoomNotFound for operations that are no-ops on an
// unknown room and reports anything else.
func (ctl *SignalWSController) ignoreMissing(sid domain.ConnID, room domain.RoomID, err error) {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRoomNotFound):
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(room)).Msg("ignored: room not found")
	default:
		ctl.replyError(sid, err)
	}
}
