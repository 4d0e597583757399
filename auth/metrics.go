package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pinFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_pin_failures_total",
		Help: "Total number of failed PIN verifications.",
	})
	lockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_lockouts_total",
		Help: "Total number of addresses locked out after repeated PIN failures.",
	})
	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deskrelay_sessions_created_total",
		Help: "Total number of bearer sessions created.",
	})
)
