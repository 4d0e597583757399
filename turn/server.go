package turn

import (
	"fmt"
	"net"
	"sync"

	"github.com/deskrelay/deskrelay/config"
	"github.com/pion/randutil"
	"github.com/pion/turn/v4"
	"github.com/rs/zerolog/log"
)

// Server hands out short-lived relay credentials to registering peers and
// revokes them when the peer disconnects.
type Server interface {
	Credentials(id string, addr net.IP) (string, string)
	Disallow(username string)
}

const Realm = "deskrelay"

const credentialRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type internalServer struct {
	lock   sync.RWMutex
	lookup map[string]entry
}

type entry struct {
	addr net.IP
	key  []byte
}

// Start runs the embedded TURN/STUN server on conf.TurnAddress.
func Start(conf config.Config) (Server, error) {
	if net.ParseIP(conf.TurnPublicIP) == nil {
		return nil, fmt.Errorf("invalid turn public ip: %q", conf.TurnPublicIP)
	}
	udpListener, err := net.ListenPacket("udp", conf.TurnAddress)
	if err != nil {
		return nil, fmt.Errorf("udp: could not listen on %s: %s", conf.TurnAddress, err)
	}
	tcpListener, err := net.Listen("tcp", conf.TurnAddress)
	if err != nil {
		return nil, fmt.Errorf("tcp: could not listen on %s: %s", conf.TurnAddress, err)
	}

	svr := &internalServer{lookup: map[string]entry{}}
	gen := generator(conf)

	_, err = turn.NewServer(turn.ServerConfig{
		Realm:       Realm,
		AuthHandler: svr.authenticate,
		ListenerConfigs: []turn.ListenerConfig{
			{Listener: tcpListener, RelayAddressGenerator: gen},
		},
		PacketConnConfigs: []turn.PacketConnConfig{
			{PacketConn: udpListener, RelayAddressGenerator: gen},
		},
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("addr", conf.TurnAddress).Msg("Start TURN/STUN")
	return svr, nil
}

func generator(conf config.Config) turn.RelayAddressGenerator {
	relayIP := net.ParseIP(conf.TurnPublicIP)
	if min, max, useRange := conf.PortRange(); useRange {
		log.Debug().Uint16("min", min).Uint16("max", max).Msg("Using Port Range")
		return &turn.RelayAddressGeneratorPortRange{
			RelayAddress: relayIP,
			Address:      "0.0.0.0",
			MinPort:      min,
			MaxPort:      max,
		}
	}
	return &turn.RelayAddressGeneratorStatic{
		RelayAddress: relayIP,
		Address:      "0.0.0.0",
	}
}

func (s *internalServer) Credentials(id string, addr net.IP) (string, string) {
	password, err := randutil.GenerateCryptoRandomString(16, credentialRunes)
	if err != nil {
		// rand failure leaves the entry unusable, never half-authenticated
		log.Error().Err(err).Msg("could not generate TURN credentials")
		return id, ""
	}

	s.lock.Lock()
	s.lookup[id] = entry{addr: addr, key: turn.GenerateAuthKey(id, Realm, password)}
	s.lock.Unlock()
	return id, password
}

func (s *internalServer) Disallow(username string) {
	s.lock.Lock()
	delete(s.lookup, username)
	s.lock.Unlock()
}

func (s *internalServer) authenticate(username, realm string, srcAddr net.Addr) ([]byte, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok := s.lookup[username]
	if !ok {
		log.Debug().Str("username", username).Msg("TURN username not found")
		return nil, false
	}

	var ip net.IP
	switch addr := srcAddr.(type) {
	case *net.UDPAddr:
		ip = addr.IP
	case *net.TCPAddr:
		ip = addr.IP
	default:
		return nil, false
	}
	if !e.addr.Equal(ip) {
		log.Debug().Str("username", username).Msg("TURN source address mismatch")
		return nil, false
	}
	return e.key, true
}
