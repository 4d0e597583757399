package ws

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/deskrelay/deskrelay/auth"
	"github.com/deskrelay/deskrelay/config"
	"github.com/deskrelay/deskrelay/input"
	"github.com/deskrelay/deskrelay/turn"
	"github.com/deskrelay/deskrelay/ws/outgoing"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// StreamControl is told whenever the number of registered viewers changes.
type StreamControl interface {
	SetViewerCount(n int)
}

// Broker owns the event loop: every registry mutation and routing decision
// runs on the goroutine draining Incoming, so handlers never race each
// other. Frame broadcasts enter through Registry directly and only touch
// per-client write channels.
type Broker struct {
	Incoming  chan ClientMessage
	registry  *Registry
	connected map[xid.ID]ClientInfo

	users    *auth.Service
	injector input.Service
	stream   StreamControl
	turn     turn.Server
	config   config.Config
	upgrader websocket.Upgrader
}

func NewBroker(conf config.Config, registry *Registry, users *auth.Service, injector input.Service, stream StreamControl, tServer turn.Server) *Broker {
	return &Broker{
		Incoming:  make(chan ClientMessage),
		registry:  registry,
		connected: map[xid.ID]ClientInfo{},
		users:     users,
		injector:  injector,
		stream:    stream,
		turn:      tServer,
		config:    conf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Host == r.Host {
					return true
				}
				return conf.CheckOrigin(origin)
			},
		},
	}
}

// Upgrade authenticates the request and promotes it to a websocket
// connection. Remote callers without a valid session token are rejected
// before they can reach registration.
func (b *Broker) Upgrade(w http.ResponseWriter, req *http.Request) {
	if !b.users.Authorized(req) {
		unauthorizedTotal.Inc()
		log.Debug().Str("ip", req.RemoteAddr).Msg("Unauthorized stream connection")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("unauthorized"))
		return
	}

	conn, err := b.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Debug().Err(err).Msg("Websocket upgrade")
		w.WriteHeader(400)
		_, _ = w.Write([]byte(fmt.Sprintf("Upgrade failed %s", err)))
		return
	}

	c := newClient(conn, req, b.Incoming, b.config.TrustProxyHeaders)
	b.Incoming <- ClientMessage{Info: c.info, Incoming: Connected{}, SkipConnectedCheck: true}

	go c.startReading(time.Second * 20)
	go c.startWriteHandler(time.Second * 5)
}

// Start runs the event loop. It returns when Incoming is closed.
func (b *Broker) Start() {
	for msg := range b.Incoming {
		_, connected := b.connected[msg.Info.ID]
		if !msg.SkipConnectedCheck && !connected {
			log.Debug().Interface("event", fmt.Sprintf("%T", msg.Incoming)).Msg("WebSocket Ignore")
			continue
		}

		if err := msg.Incoming.Execute(b, msg.Info); err != nil {
			dis := Disconnected{Code: websocket.CloseNormalClosure, Reason: err.Error()}
			dis.executeNoError(b, msg.Info)
		}
	}
}

// Count returns the number of connected clients, answered by the event
// loop itself so it doubles as a liveness check for /health.
func (b *Broker) Count() (int, string) {
	timeout := time.After(5 * time.Second)

	h := Health{Response: make(chan int, 1)}
	select {
	case b.Incoming <- ClientMessage{SkipConnectedCheck: true, Incoming: &h}:
	case <-timeout:
		return -1, "main loop didn't accept a message within 5 second"
	}
	select {
	case count := <-h.Response:
		return count, ""
	case <-timeout:
		return -1, "main loop didn't respond to a message within 5 second"
	}
}

// HostPresent reports whether a host is currently registered.
func (b *Broker) HostPresent() bool {
	return b.registry.HostPresent()
}

// ViewerCount returns the number of registered viewers.
func (b *Broker) ViewerCount() int {
	return b.registry.ViewerCount()
}

// iceServers mints TURN credentials for a registering peer. Without an
// embedded TURN server peers negotiate LAN-direct and get an empty list.
func (b *Broker) iceServers(id string, addr net.IP) []outgoing.ICEServer {
	if b.turn == nil || b.config.TurnPublicIP == "" {
		return nil
	}
	username, password := b.turn.Credentials(id, addr)
	ip := b.config.TurnPublicIP
	port := b.config.TurnPort()
	return []outgoing.ICEServer{
		{URLs: []string{fmt.Sprintf("stun:%s:%s", ip, port)}},
		{
			URLs: []string{
				fmt.Sprintf("turn:%s:%s", ip, port),
				fmt.Sprintf("turn:%s:%s?transport=tcp", ip, port),
			},
			Username:   username,
			Credential: password,
		},
	}
}

func (b *Broker) revokeICE(id string) {
	if b.turn != nil {
		b.turn.Disallow(id)
	}
}
