// Package outgoing contains every message the broker sends to peers.
package outgoing

import "encoding/json"

// Message is serialized into a {type, payload} envelope by the write loop.
type Message interface {
	Type() string
}

// ICEServer describes a STUN/TURN endpoint handed to a peer on
// registration.
type ICEServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Registered acknowledges a register-host or register-viewer request.
type Registered struct {
	Role       string      `json:"role"`
	HostReady  bool        `json:"hostReady"`
	ViewerID   *int        `json:"viewerId,omitempty"`
	ICEServers []ICEServer `json:"iceServers,omitempty"`
}

func (Registered) Type() string { return "registered" }

// HostReady tells viewers a host became available.
type HostReady struct{}

func (HostReady) Type() string { return "host-ready" }

// HostDisconnected tells viewers the host left.
type HostDisconnected struct{}

func (HostDisconnected) Type() string { return "host-disconnected" }

// ViewerJoined tells the host a viewer registered.
type ViewerJoined struct {
	ViewerID int `json:"viewerId"`
}

func (ViewerJoined) Type() string { return "viewer-joined" }

// ViewerLeft tells the host a viewer disconnected.
type ViewerLeft struct {
	ViewerID int `json:"viewerId"`
}

func (ViewerLeft) Type() string { return "viewer-left" }

// Offer relays a viewer's negotiation offer to the host. The SDP is
// passed through unmodified; the broker only attaches the viewer id.
type Offer struct {
	ViewerID int             `json:"viewerId"`
	SDP      json.RawMessage `json:"sdp"`
}

func (Offer) Type() string { return "offer" }

// Answer relays the host's negotiation answer to one viewer.
type Answer struct {
	ViewerID int             `json:"viewerId"`
	SDP      json.RawMessage `json:"sdp"`
}

func (Answer) Type() string { return "answer" }

// ICECandidate relays a transport candidate between host and viewer.
type ICECandidate struct {
	ViewerID  int             `json:"viewerId"`
	Candidate json.RawMessage `json:"candidate"`
}

func (ICECandidate) Type() string { return "ice-candidate" }

// Pong answers an application-level ping.
type Pong struct {
	Timestamp int64 `json:"timestamp"`
}

func (Pong) Type() string { return "pong" }

// Frame is a binary screen frame; the write loop sends it as a binary
// websocket message instead of a JSON envelope.
type Frame []byte

func (Frame) Type() string { return "frame" }

// CloseWriter instructs the write loop to close the connection.
type CloseWriter struct {
	Code   int
	Reason string
}

func (CloseWriter) Type() string { return "close" }
