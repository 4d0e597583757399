package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hostsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_hosts_registered_total",
		Help: "Total number of host registrations (including replacements).",
	})
	viewersJoinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_viewers_joined_total",
		Help: "Total number of viewer registrations.",
	})
	viewersLeftTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_viewers_left_total",
		Help: "Total number of viewer disconnects.",
	})
	framesBroadcastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_frames_broadcast_total",
		Help: "Total number of frames broadcast to at least one viewer.",
	})
	framesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_frames_dropped_total",
		Help: "Frames dropped for a single slow viewer.",
	})
	frameBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_frame_bytes_total",
		Help: "Total frame bytes queued for delivery.",
	})
	unauthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_unauthorized_connections_total",
		Help: "Remote connection attempts rejected for a missing or invalid session token.",
	})
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deskrelay_connected_clients",
		Help: "Currently connected websocket clients.",
	})
)
