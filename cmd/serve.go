package cmd

import (
	"context"
	"crypto/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskrelay/deskrelay/auth"
	"github.com/deskrelay/deskrelay/capture"
	"github.com/deskrelay/deskrelay/config"
	"github.com/deskrelay/deskrelay/input"
	"github.com/deskrelay/deskrelay/logger"
	"github.com/deskrelay/deskrelay/router"
	"github.com/deskrelay/deskrelay/server"
	"github.com/deskrelay/deskrelay/stream"
	"github.com/deskrelay/deskrelay/turn"
	"github.com/deskrelay/deskrelay/ws"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func serveCmd(version string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the session broker",
		Action: func(ctx *cli.Context) error {
			conf, errs := config.Get()
			logger.Init(conf.LogLevel.AsZeroLogLevel())

			exit := false
			for _, err := range errs {
				log.WithLevel(err.Level).Msg(err.Msg)
				exit = exit || err.Level == zerolog.FatalLevel || err.Level == zerolog.PanicLevel
			}
			if exit {
				os.Exit(1)
			}

			secret := conf.Secret
			if len(secret) == 0 {
				secret = make([]byte, 32)
				if _, err := rand.Read(secret); err != nil {
					log.Fatal().Err(err).Msg("could not generate secret")
				}
				log.Info().Msg("DESKRELAY_SECRET unset, generated a random one; sessions won't survive a restart (they never do)")
			}

			guard := auth.NewGuard(conf.PinAttempts, conf.LockoutDuration)
			pin, err := guard.GeneratePin()
			if err != nil {
				log.Fatal().Err(err).Msg("could not generate PIN")
			}

			appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessions := auth.NewSessions(conf.SessionTTL)
			sessions.StartSweep(appCtx, conf.SessionSweepInterval)
			users := auth.NewService(guard, sessions, secret, conf.TrustProxyHeaders)

			var tServer turn.Server
			if conf.TurnEnabled() {
				tServer, err = turn.Start(conf)
				if err != nil {
					log.Fatal().Err(err).Msg("could not start turn server")
				}
			}

			registry := ws.NewRegistry()
			streamer := stream.New(capture.Backend(), registry, conf.FrameInterval)
			broker := ws.NewBroker(conf, registry, users, input.Backend(), streamer, tServer)
			go broker.Start()

			// shown on the local console only, never transmitted
			log.Info().Str("pin", pin).Msg("Session PIN")

			r := router.Router(conf, broker, users, version)
			if err := server.Start(appCtx, r, conf.ServerAddress, conf.TLSCertFile, conf.TLSKeyFile); err != nil {
				log.Fatal().Err(err).Msg("http server")
			}
			log.Info().Msg("Server exited")
			return nil
		},
	}
}
