package ws

import (
	"encoding/json"

	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/rs/zerolog/log"
)

func init() {
	register("ice-candidate", func() Event {
		return &ICECandidate{}
	})
}

// ICECandidate is routed by the sender's role: from the host it goes to
// the named viewer, from a viewer it goes to the host with the sender's
// id attached. Absent targets drop the message silently.
type ICECandidate struct {
	ViewerID  *int            `json:"viewerId,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

func (e *ICECandidate) Execute(b *Broker, current ClientInfo) error {
	sender, ok := b.registry.Lookup(current.ID)
	if !ok {
		log.Debug().Str("id", current.ID.String()).Msg("ice-candidate from unregistered peer dropped")
		return nil
	}

	switch sender.Role {
	case RoleHost:
		if e.ViewerID == nil {
			log.Debug().Msg("ice-candidate from host without viewerId dropped")
			return nil
		}
		viewer, ok := b.registry.Viewer(*e.ViewerID)
		if !ok {
			log.Debug().Int("viewerId", *e.ViewerID).Msg("viewer gone, ice-candidate dropped")
			return nil
		}
		viewer.Info.WriteTimeout(outgoing.ICECandidate{ViewerID: *e.ViewerID, Candidate: e.Candidate})
	case RoleViewer:
		host, ok := b.registry.Host()
		if !ok {
			log.Debug().Int("viewerId", sender.ViewerID).Msg("no host, ice-candidate dropped")
			return nil
		}
		host.Info.WriteTimeout(outgoing.ICECandidate{ViewerID: sender.ViewerID, Candidate: e.Candidate})
	}
	return nil
}
