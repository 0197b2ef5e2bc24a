package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/discord-telegram-relay/internal/di"
	relayService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/config"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/logger"
	"github.com/reshetovitsme/discord-telegram-relay/internal/transport/discord"
	httpServer "github.com/reshetovitsme/discord-telegram-relay/internal/transport/http"
	telegramTransport "github.com/reshetovitsme/discord-telegram-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewRunCmd creates the run command
func NewRunCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start relaying messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags.ConfigPath)
		},
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	closeLog, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	injector, err := di.Setup(cfg)
	if err != nil {
		return oops.With("context", "failed to setup dependency injection").Wrap(err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stop := sync.OnceValue(func() error { return shutdown(injector) })
	if err := start(ctx, injector, stop); err != nil {
		stop()
		return err
	}
	return nil
}

func start(ctx context.Context, injector do.Injector, stop func() error) error {
	cfg := do.MustInvoke[*config.Config](injector)

	b, err := do.Invoke[*bot.Bot](injector)
	if err != nil {
		return err
	}
	me, err := b.GetMe(ctx)
	if err != nil {
		return oops.With("context", "failed to identify telegram bot").Wrap(err)
	}
	do.MustInvoke[*telegramTransport.Handler](injector).SetUsername(me.Username)

	source, err := do.Invoke[*discord.Source](injector)
	if err != nil {
		return err
	}
	dispatcher, err := do.Invoke[*relayService.Dispatcher](injector)
	if err != nil {
		return err
	}
	server, err := do.Invoke[*httpServer.Server](injector)
	if err != nil {
		return err
	}

	if err := source.Open(); err != nil {
		return oops.With("context", "failed to connect to discord").Wrap(err)
	}

	slog.Info("Relay started",
		"telegram_bot", me.Username,
		"pairings", len(cfg.ChannelPairs),
		"backend", cfg.CorrelationBackend,
		"port", cfg.HTTPPort,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Start(gctx)
		return nil
	})
	g.Go(server.Start)
	g.Go(func() error {
		dispatcher.Run(gctx, source.Events())
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")
		return stop()
	})

	return g.Wait()
}

func shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := di.Shutdown(ctx, injector); err != nil {
		slog.Error("Error during shutdown", "error", err)
		return err
	}
	return nil
}
