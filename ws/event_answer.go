package ws

import (
	"encoding/json"

	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/rs/zerolog/log"
)

func init() {
	register("answer", func() Event {
		return &Answer{}
	})
}

// Answer is the host's negotiation answer, addressed to one viewer by id.
type Answer struct {
	ViewerID int             `json:"viewerId"`
	SDP      json.RawMessage `json:"sdp"`
}

func (e *Answer) Execute(b *Broker, current ClientInfo) error {
	sender, ok := b.registry.Lookup(current.ID)
	if !ok || sender.Role != RoleHost {
		log.Debug().Str("id", current.ID.String()).Msg("answer from non-host dropped")
		return nil
	}
	viewer, ok := b.registry.Viewer(e.ViewerID)
	if !ok {
		log.Debug().Int("viewerId", e.ViewerID).Msg("viewer gone, answer dropped")
		return nil
	}
	viewer.Info.WriteTimeout(outgoing.Answer{ViewerID: e.ViewerID, SDP: e.SDP})
	return nil
}
