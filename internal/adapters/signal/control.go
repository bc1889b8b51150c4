package signal

import "github.com/dkeye/Duet/internal/domain"

func (ctl *SignalWSController) handlePing(sid domain.ConnID, _ []byte) {
	ctl.reply(sid, domain.Envelope{Type: domain.EvPong})
}
