package signal

import (
	"github.com/dkeye/Duet/internal/domain"
)

// The offer/answer payloads are opaque; only the target id is checked.

func (ctl *SignalWSController) handleUserCall(sid domain.ConnID, data []byte) {
	if p, ok := ctl.decodeOffer(sid, data); ok {
		ctl.Orch.Signals.Offer(sid, p.To, p.Offer)
	}
}

func (ctl *SignalWSController) handleCallAccepted(sid domain.ConnID, data []byte) {
	if p, ok := ctl.decodeAnswer(sid, data); ok {
		ctl.Orch.Signals.Answer(sid, p.To, p.Answer)
	}
}

func (ctl *SignalWSController) handleNegotiationNeeded(sid domain.ConnID, data []byte) {
	if p, ok := ctl.decodeOffer(sid, data); ok {
		ctl.Orch.Signals.RenegotiationOffer(sid, p.To, p.Offer)
	}
}

func (ctl *SignalWSController) handleNegotiationDone(sid domain.ConnID, data []byte) {
	if p, ok := ctl.decodeAnswer(sid, data); ok {
		ctl.Orch.Signals.RenegotiationDone(sid, p.To, p.Answer)
	}
}

func (ctl *SignalWSController) decodeOffer(sid domain.ConnID, data []byte) (domain.OfferMessage, bool) {
	p, ok := decode[domain.OfferMessage](ctl, sid, data)
	if ok && p.To == "" {
		ctl.replyError(sid, domain.ErrBadPayload)
		return p, false
	}
	return p, ok
}

func (ctl *SignalWSController) decodeAnswer(sid domain.ConnID, data []byte) (domain.AnswerMessage, bool) {
	p, ok := decode[domain.AnswerMessage](ctl, sid, data)
	if ok && p.To == "" {
		ctl.replyError(sid, domain.ErrBadPayload)
		return p, false
	}
	return p, ok
}
