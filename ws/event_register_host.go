package ws

import (
	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func init() {
	register("register-host", func() Event {
		return &RegisterHost{}
	})
}

// RegisterHost declares the sender as the screen source. Registering while
// a host exists replaces it, last-writer-wins.
type RegisterHost struct{}

func (e *RegisterHost) Execute(b *Broker, current ClientInfo) error {
	replaced := b.registry.RegisterHost(current)
	if replaced != nil {
		b.revokeICE(replaced.Info.ID.String())
		replaced.Info.WriteTimeout(outgoing.CloseWriter{
			Code:   websocket.CloseNormalClosure,
			Reason: "host replaced",
		})
		// the close consumes the client's once, so no disconnect event
		// will follow for this connection
		delete(b.connected, replaced.Info.ID)
		connectedClients.Set(float64(len(b.connected)))
		log.Info().Str("old", replaced.Info.ID.String()).Str("new", current.ID.String()).Msg("Host replaced")
	}
	hostsRegisteredTotal.Inc()

	current.WriteTimeout(outgoing.Registered{
		Role:       RoleHost.String(),
		HostReady:  true,
		ICEServers: b.iceServers(current.ID.String(), current.Addr),
	})

	for _, viewer := range b.registry.Viewers() {
		viewer.Info.WriteTimeout(outgoing.HostReady{})
	}
	// a viewer switching roles leaves the viewer set here, not through a
	// disconnect, so the streamer has to hear about it
	b.stream.SetViewerCount(b.registry.ViewerCount())
	log.Info().Str("id", current.ID.String()).Int("viewers", b.registry.ViewerCount()).Msg("Host registered")
	return nil
}
