package ws

import (
	"encoding/json"

	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/rs/zerolog/log"
)

func init() {
	register("offer", func() Event {
		return &Offer{}
	})
}

// Offer is a viewer's negotiation offer for the host. The SDP payload is
// relayed untouched; the broker only attaches the sender's viewer id.
type Offer struct {
	SDP json.RawMessage `json:"sdp"`
}

func (e *Offer) Execute(b *Broker, current ClientInfo) error {
	sender, ok := b.registry.Lookup(current.ID)
	if !ok || sender.Role != RoleViewer {
		log.Debug().Str("id", current.ID.String()).Msg("offer from non-viewer dropped")
		return nil
	}
	host, ok := b.registry.Host()
	if !ok {
		// fire-and-forget: the viewer learns about host absence via the
		// registered/host-ready cycle, not from this drop
		log.Debug().Int("viewerId", sender.ViewerID).Msg("no host, offer dropped")
		return nil
	}
	host.Info.WriteTimeout(outgoing.Offer{ViewerID: sender.ViewerID, SDP: e.SDP})
	return nil
}
