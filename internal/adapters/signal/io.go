package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dkeye/Duet/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type handlerFunc func(sid domain.ConnID, data []byte)

// dispatchTable maps every inbound event to its handler.
func (ctl *SignalWSController) dispatchTable() map[domain.EventType]handlerFunc {
	return map[domain.EventType]handlerFunc{
		domain.EvCreateRoom:        ctl.handleCreateRoom,
		domain.EvJoinRoom:          ctl.handleJoinRoom,
		domain.EvRequestRoomInfo:   ctl.handleRoomInfo,
		domain.EvStartMeeting:      ctl.handleStartMeeting,
		domain.EvLeaveMeeting:      ctl.handleLeaveMeeting,
		domain.EvUserCall:          ctl.handleUserCall,
		domain.EvCallAccepted:      ctl.handleCallAccepted,
		domain.EvNegotiationNeeded: ctl.handleNegotiationNeeded,
		domain.EvNegotiationDone:   ctl.handleNegotiationDone,
		domain.EvRequestStart:      ctl.handleRequestStart,
		domain.EvAcceptStart:       ctl.handleAcceptStart,
		domain.EvDeclineStart:      ctl.handleDeclineStart,
		domain.EvToggleMedia:       ctl.handleToggleMedia,
		domain.EvSendFile:          ctl.handleSendFile,
		domain.EvPing:              ctl.handlePing,
		domain.EvWhoAmI:            ctl.handleWhoAmI,
	}
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, ctl.deadline(ctl.cfg.WriteWait))
				return
			}
			if err := c.conn.SetWriteDeadline(ctl.deadline(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, ctl.deadline(ctl.cfg.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump handles frames strictly in arrival order for this connection.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.Orch.OnDisconnect(sid)
		ctl.limiter.Forget(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(ctl.deadline(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(ctl.deadline(ctl.cfg.PongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(sid, data)
	}
}

func (ctl *SignalWSController) handleSignal(sid domain.ConnID, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.replyError(sid, domain.ErrBadPayload)
		return
	}

	handler, ok := ctl.handlers[env.Type]
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", string(env.Type)).Msg("unknown signal")
		ctl.reply(sid, domain.ErrorMessage{
			Type:  domain.EvError,
			Code:  domain.CodeUnknownEvent,
			Error: fmt.Sprintf("unknown event %q", env.Type),
		})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("module", "signal").
				Str("sid", string(sid)).
				Str("type", string(env.Type)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
			ctl.reply(sid, domain.ErrorMessage{
				Type:  domain.EvError,
				Code:  domain.CodeInternal,
				Error: fmt.Sprintf("failed to handle %s", env.Type),
			})
		}
	}()
	handler(sid, data)
}

// decode unmarshals a payload, reporting failures to the sender.
func decode[T any](ctl *SignalWSController, sid domain.ConnID, data []byte) (T, bool) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad payload")
		ctl.replyError(sid, fmt.Errorf("%w: %v", domain.ErrBadPayload, err))
		return p, false
	}
	return p, true
}
