package ws

import (
	"sync"
	"time"

	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/rs/xid"
)

// Role is the announced role of a connection.
type Role int

const (
	RoleUnassigned Role = iota
	RoleHost
	RoleViewer
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleViewer:
		return "viewer"
	default:
		return "unassigned"
	}
}

// Connection is a registry entry for one peer. It references the client's
// write channel but never owns the transport.
type Connection struct {
	Info        ClientInfo
	Role        Role
	ViewerID    int // valid only for RoleViewer
	ConnectedAt time.Time
}

// Registry is the authoritative set of role-announced connections: at most
// one host, any number of viewers. Viewer ids are assigned once at
// registration, strictly increasing and never reused, so a stale id can
// never silently address the wrong peer after an earlier viewer leaves.
//
// The broker loop is the only mutator; the mutex exists because the frame
// broadcast path reads the viewer set from the streamer goroutine.
type Registry struct {
	mu           sync.RWMutex
	host         *Connection
	viewers      map[int]*Connection
	byID         map[xid.ID]*Connection
	nextViewerID int
}

func NewRegistry() *Registry {
	return &Registry{
		viewers: map[int]*Connection{},
		byID:    map[xid.ID]*Connection{},
	}
}

// RegisterHost makes info the host, replacing any current one
// (last-writer-wins). The replaced connection, if any, is returned so the
// caller can close it.
func (r *Registry) RegisterHost(info ClientInfo) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(info.ID)
	replaced := r.host

	conn := &Connection{Info: info, Role: RoleHost, ConnectedAt: time.Now()}
	r.host = conn
	r.byID[info.ID] = conn
	if replaced != nil {
		delete(r.byID, replaced.Info.ID)
	}
	return replaced
}

// RegisterViewer adds info as a viewer and returns its stable id.
func (r *Registry) RegisterViewer(info ClientInfo) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(info.ID)

	id := r.nextViewerID
	r.nextViewerID++
	conn := &Connection{Info: info, Role: RoleViewer, ViewerID: id, ConnectedAt: time.Now()}
	r.viewers[id] = conn
	r.byID[info.ID] = conn
	return id
}

// Unregister removes the connection and returns the removed entry so the
// caller can emit the matching notifications.
func (r *Registry) Unregister(id xid.ID) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	r.removeLocked(id)
	return conn, true
}

func (r *Registry) removeLocked(id xid.ID) {
	conn, ok := r.byID[id]
	if !ok {
		return
	}
	switch conn.Role {
	case RoleHost:
		r.host = nil
	case RoleViewer:
		delete(r.viewers, conn.ViewerID)
	}
	delete(r.byID, id)
}

// Lookup returns the registry entry for a connection id.
func (r *Registry) Lookup(id xid.ID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byID[id]
	return conn, ok
}

func (r *Registry) Host() (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host, r.host != nil
}

func (r *Registry) HostPresent() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host != nil
}

func (r *Registry) Viewer(viewerID int) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.viewers[viewerID]
	return conn, ok
}

func (r *Registry) ViewerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}

// Viewers returns a snapshot of all registered viewers.
func (r *Registry) Viewers() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.viewers))
	for _, conn := range r.viewers {
		out = append(out, conn)
	}
	return out
}

// BroadcastFrame sends a binary frame to every viewer. The send is
// non-blocking: a viewer whose write buffer is full loses this frame, the
// others are unaffected. Returns the number of deliveries.
func (r *Registry) BroadcastFrame(payload []byte) int {
	delivered := 0
	for _, viewer := range r.Viewers() {
		select {
		case viewer.Info.Write <- outgoing.Frame(payload):
			delivered++
		default:
			framesDroppedTotal.Inc()
		}
	}
	if delivered > 0 {
		framesBroadcastTotal.Inc()
		frameBytesTotal.Add(float64(len(payload) * delivered))
	}
	return delivered
}
