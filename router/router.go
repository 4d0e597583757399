package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/deskrelay/deskrelay/auth"
	"github.com/deskrelay/deskrelay/config"
	"github.com/deskrelay/deskrelay/ws"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type Health struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Reason  string `json:"reason,omitempty"`
}

// UIConfig is what the local display page needs to render its state.
type UIConfig struct {
	Authenticated bool   `json:"authenticated"`
	HostPresent   bool   `json:"hostPresent"`
	Viewers       int    `json:"viewers"`
	Version       string `json:"version"`
}

func Router(conf config.Config, broker *ws.Broker, users *auth.Service, version string) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// https://github.com/gorilla/mux/issues/416
		accessLogger(r, 404, 0, 0)
	})
	router.Use(hlog.AccessHandler(accessLogger))
	router.Use(handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST"}),
		handlers.AllowedOriginValidator(conf.CheckOrigin),
	))

	router.HandleFunc("/stream", broker.Upgrade)
	router.Methods("POST").Path("/auth/login").HandlerFunc(users.Authenticate)
	router.Methods("POST").Path("/auth/logout").HandlerFunc(users.Logout)
	router.Methods("GET").Path("/config").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&UIConfig{
			Authenticated: users.Authorized(r),
			HostPresent:   broker.HostPresent(),
			Viewers:       broker.ViewerCount(),
			Version:       version,
		})
	})
	router.Methods("GET").Path("/health").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, reason := broker.Count()
		status := "up"
		if reason != "" {
			status = "down"
			w.WriteHeader(500)
		}
		_ = json.NewEncoder(w).Encode(Health{
			Status:  status,
			Clients: count,
			Reason:  reason,
		})
	})
	if conf.Prometheus {
		log.Info().Msg("Prometheus enabled")
		router.Methods("GET").Path("/metrics").Handler(localOnly(promhttp.Handler(), conf.TrustProxyHeaders))
	}

	return router
}

func accessLogger(r *http.Request, status, size int, dur time.Duration) {
	log.Debug().
		Str("host", r.Host).
		Int("status", status).
		Int("size", size).
		Str("ip", r.RemoteAddr).
		Str("path", r.URL.Path).
		Str("duration", dur.String()).
		Msg("HTTP")
}

// localOnly restricts an endpoint to loopback callers.
func localOnly(handler http.Handler, trustProxy bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsLocal(auth.RemoteIP(r, trustProxy)) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("Forbidden.\n"))
			return
		}
		handler.ServeHTTP(w, r)
	}
}
