package ws

import (
	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/rs/zerolog/log"
)

func init() {
	register("register-viewer", func() Event {
		return &RegisterViewer{}
	})
}

// RegisterViewer declares the sender as an observer/controller. The
// assigned viewer id is stable for the connection's lifetime and never
// reused.
type RegisterViewer struct{}

func (e *RegisterViewer) Execute(b *Broker, current ClientInfo) error {
	id := b.registry.RegisterViewer(current)
	viewersJoinedTotal.Inc()

	hostReady := b.registry.HostPresent()
	current.WriteTimeout(outgoing.Registered{
		Role:       RoleViewer.String(),
		HostReady:  hostReady,
		ViewerID:   &id,
		ICEServers: b.iceServers(current.ID.String(), current.Addr),
	})

	if host, ok := b.registry.Host(); ok {
		host.Info.WriteTimeout(outgoing.ViewerJoined{ViewerID: id})
	}
	b.stream.SetViewerCount(b.registry.ViewerCount())
	log.Info().Int("viewerId", id).Bool("hostReady", hostReady).Msg("Viewer registered")
	return nil
}
