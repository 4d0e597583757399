package ws

// Health asks the broker loop for the connected client count. Internal
// only, never registered as a peer-facing message type.
type Health struct {
	Response chan int
}

func (e *Health) Execute(b *Broker, current ClientInfo) error {
	e.Response <- len(b.connected)
	return nil
}
