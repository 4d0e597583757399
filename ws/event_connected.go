package ws

// Connected is raised by Upgrade once the transport is established. The
// peer has no role until it announces one.
type Connected struct{}

func (Connected) Execute(b *Broker, current ClientInfo) error {
	b.connected[current.ID] = current
	connectedClients.Set(float64(len(b.connected)))
	return nil
}
