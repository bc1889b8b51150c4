package signal

import "github.com/dkeye/Duet/internal/domain"

func (ctl *SignalWSController) handleSendFile(sid domain.ConnID, data []byte) {
	p, ok := decode[domain.SendFileMessage](ctl, sid, data)
	if !ok {
		return
	}
	if p.To == "" {
		ctl.replyError(sid, domain.ErrBadPayload)
		return
	}
	ctl.Orch.Files.Send(sid, p.To, p.FileName, p.FileData)
}
