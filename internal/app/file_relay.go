package app

import (
	"encoding/json"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// FileRelay is a one-shot forward of a named blob. The file:sent ack confirms
// dispatch, not receipt.
type FileRelay struct {
	notify core.Notifier
}

func NewFileRelay(notify core.Notifier) *FileRelay {
	return &FileRelay{notify: notify}
}

func (r *FileRelay) Send(from, to domain.ConnID, fileName string, data json.RawMessage) {
	delivered := r.notify.SendTo(to, domain.FileReceivedMessage{
		Type:     domain.EvFileReceived,
		From:     from,
		FileName: fileName,
		FileData: data,
	})
	r.notify.SendTo(from, domain.FileSentMessage{
		Type:     domain.EvFileSent,
		To:       to,
		FileName: fileName,
	})
	log.Debug().
		Str("module", "app.relay").
		Str("sid", string(from)).
		Str("target", string(to)).
		Str("file", fileName).
		Int("bytes", len(data)).
		Bool("delivered", delivered).
		Msg("file relayed")
}
