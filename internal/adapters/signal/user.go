package signal

import (
	"sort"

	"github.com/dkeye/Duet/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(sid domain.ConnID, _ []byte) {
	rooms := ctl.Orch.Hub.RoomsOf(sid)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i] < rooms[j] })
	ctl.reply(sid, domain.WhoAmIMessage{
		Type:        domain.EvWhoAmI,
		ID:          sid,
		ClientToken: ctl.Orch.Hub.ClientToken(sid),
		Rooms:       rooms,
	})
}
