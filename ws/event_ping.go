package ws

import (
	"github.com/deskrelay/deskrelay/ws/outgoing"
)

func init() {
	register("ping", func() Event {
		return &Ping{}
	})
}

// Ping is the application-level liveness probe; the timestamp is echoed
// back so peers can estimate latency.
type Ping struct {
	Timestamp int64 `json:"timestamp"`
}

func (e *Ping) Execute(b *Broker, current ClientInfo) error {
	current.WriteTimeout(outgoing.Pong{Timestamp: e.Timestamp})
	return nil
}
