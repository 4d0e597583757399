package ws

import (
	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/rs/zerolog/log"
)

// Disconnected is raised on transport close or when an event handler
// returned an error.
type Disconnected struct {
	Code   int
	Reason string
}

func (e *Disconnected) Execute(b *Broker, current ClientInfo) error {
	e.executeNoError(b, current)
	return nil
}

func (e *Disconnected) executeNoError(b *Broker, current ClientInfo) {
	delete(b.connected, current.ID)
	connectedClients.Set(float64(len(b.connected)))

	removed, ok := b.registry.Unregister(current.ID)
	if ok {
		switch removed.Role {
		case RoleHost:
			// every viewer hears about the loss before the host's
			// transport is torn down
			for _, viewer := range b.registry.Viewers() {
				viewer.Info.WriteTimeout(outgoing.HostDisconnected{})
			}
			b.revokeICE(current.ID.String())
			log.Info().Str("id", current.ID.String()).Msg("Host disconnected")
		case RoleViewer:
			viewersLeftTotal.Inc()
			if host, present := b.registry.Host(); present {
				host.Info.WriteTimeout(outgoing.ViewerLeft{ViewerID: removed.ViewerID})
			}
			b.revokeICE(current.ID.String())
			b.stream.SetViewerCount(b.registry.ViewerCount())
			log.Debug().Int("viewerId", removed.ViewerID).Msg("Viewer disconnected")
		}
	}

	current.WriteTimeout(outgoing.CloseWriter{Code: e.Code, Reason: e.Reason})
}
