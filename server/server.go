// Package server starts the HTTP(S) listener and shuts it down when the
// process context ends.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

func Start(ctx context.Context, handler http.Handler, address, certFile, keyFile string) error {
	srv := &http.Server{Addr: address, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	}()

	var err error
	if certFile != "" && keyFile != "" {
		log.Info().Str("addr", address).Msg("Start HTTPS server")
		err = srv.ListenAndServeTLS(certFile, keyFile)
	} else {
		log.Info().Str("addr", address).Msg("Start HTTP server")
		err = srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
