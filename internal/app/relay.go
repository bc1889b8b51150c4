package app

import (
	"encoding/json"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// SignalRelay forwards call-setup payloads between two connections. It keeps
// no state and does not check room membership: peers learn each other's id
// only from a participant:joined notice scoped to their shared room.
type SignalRelay struct {
	notify core.Notifier
}

func NewSignalRelay(notify core.Notifier) *SignalRelay {
	return &SignalRelay{notify: notify}
}

func (r *SignalRelay) Offer(from, to domain.ConnID, offer json.RawMessage) bool {
	return r.forward(to, domain.RelayOfferMessage{Type: domain.EvIncomingCall, From: from, Offer: offer})
}

func (r *SignalRelay) Answer(from, to domain.ConnID, answer json.RawMessage) bool {
	return r.forward(to, domain.RelayAnswerMessage{Type: domain.EvCallAccepted, From: from, Answer: answer})
}

// RenegotiationOffer starts a second offer/answer cycle on an established call.
func (r *SignalRelay) RenegotiationOffer(from, to domain.ConnID, offer json.RawMessage) bool {
	return r.forward(to, domain.RelayOfferMessage{Type: domain.EvNegotiationNeededOut, From: from, Offer: offer})
}

func (r *SignalRelay) RenegotiationDone(from, to domain.ConnID, answer json.RawMessage) bool {
	return r.forward(to, domain.RelayAnswerMessage{Type: domain.EvNegotiationFinal, From: from, Answer: answer})
}

// forward reports whether the target accepted the frame. Callers must not
// surface a false result to the sender.
func (r *SignalRelay) forward(to domain.ConnID, msg any) bool {
	ok := r.notify.SendTo(to, msg)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("target", string(to)).Msg("relay target gone, dropped")
	}
	return ok
}
