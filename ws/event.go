package ws

// Event is an inbound message executed on the broker loop. A returned
// error disconnects the sending client with the error as close reason.
type Event interface {
	Execute(b *Broker, current ClientInfo) error
}
