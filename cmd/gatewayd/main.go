// Package main is the entry point for the gateway client daemon. It
// connects to the Discord Gateway, mirrors the session's state in memory
// and fans events out to subscribers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/config"
	"github.com/parsascontentcorner/discordlitegateway/internal/dispatch"
	"github.com/parsascontentcorner/discordlitegateway/internal/gateway"
	"github.com/parsascontentcorner/discordlitegateway/internal/models"
	"github.com/parsascontentcorner/discordlitegateway/internal/rest"
	"github.com/parsascontentcorner/discordlitegateway/internal/state"
	"github.com/parsascontentcorner/discordlitegateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		// Sync errors on stdout/stderr are expected for non-syncable
		// file descriptors and can be safely ignored.
		_ = log.Sync()
	}()

	log.Info("starting gateway client",
		zap.String("gateway_url", cfg.Discord.GatewayURL),
		zap.Int("max_messages", cfg.State.MaxMessages),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := dispatch.New(log, cfg.Dispatch.Workers)
	defer dispatcher.Stop()

	restClient := rest.New(cfg.Discord.Token, cfg.Discord.APIBaseURL, true, log)

	conn := gateway.New(cfg.Discord.Token, cfg.Discord.GatewayURL, log)

	engine := state.New(
		log,
		dispatcher.Dispatch,
		conn.RequestGuildMembers,
		conn.RequestGuildSync,
		restClient,
		state.Options{
			MaxMessages:           cfg.State.MaxMessages,
			GuildReadyQuietPeriod: cfg.State.GuildReadyQuietPeriod,
			ChunkWait:             cfg.State.ChunkWait,
		},
	)
	conn.Bind(engine)

	dispatcher.Subscribe("ready", func(_ ...any) {
		log.Info("session ready",
			zap.Int("guilds", len(engine.Guilds())),
			zap.Int("private_channels", len(engine.PrivateChannels())),
		)
	})
	dispatcher.Subscribe("message", func(args ...any) {
		if len(args) == 0 {
			return
		}
		if msg, ok := args[0].(*models.Message); ok {
			log.Debug("message observed",
				zap.Int64("message_id", int64(msg.ID)),
				zap.Int64("channel_id", int64(msg.ChannelID)),
			)
		}
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- conn.Connect(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			log.Error("gateway connection failed", zap.Error(err))
		}
	}

	conn.Close()
	cancel()
	log.Info("gateway client shut down")
}
