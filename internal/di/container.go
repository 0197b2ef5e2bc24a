package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/redis/go-redis/v9"
	activityRepo "github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/repository"
	activityService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/service"
	backfillService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/backfill/service"
	deliveryRepo "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/repository"
	diagnosticsService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/diagnostics/service"
	pairingService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/service"
	relayService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/config"
	"github.com/reshetovitsme/discord-telegram-relay/internal/transport/discord"
	httpServer "github.com/reshetovitsme/discord-telegram-relay/internal/transport/http"
	telegramTransport "github.com/reshetovitsme/discord-telegram-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container. Nothing connects to
// Discord, Telegram or Redis until the matching service is invoked.
func Setup(cfg *config.Config) (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.ProvideValue(injector, cfg)

	// Register Pairing Table
	do.Provide(injector, func(i do.Injector) (*pairingService.Table, error) {
		cfg := do.MustInvoke[*config.Config](i)
		table, err := pairingService.NewTable(cfg.ChannelPairs)
		if err != nil {
			return nil, oops.With("context", "failed to build pairing table").Wrap(err)
		}
		return table, nil
	})

	// Register Redis Client
	do.Provide(injector, func(i do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client, err := deliveryRepo.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, oops.With("redis_addr", cfg.RedisAddr, "context", "failed to connect to redis").Wrap(err)
		}
		return client, nil
	})

	// Register Delivery Repository
	do.Provide(injector, func(i do.Injector) (deliveryRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.CorrelationBackend == config.BackendRedis {
			client, err := do.Invoke[*redis.Client](i)
			if err != nil {
				return nil, err
			}
			return deliveryRepo.NewRedisStorage(client, cfg.RedisPrefix, cfg.RecordTTL), nil
		}
		return deliveryRepo.NewMemoryStorage(cfg.RecordTTL), nil
	})

	// Register Activity Repository
	do.Provide(injector, func(i do.Injector) (activityRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := activityRepo.NewFileStorage(cfg.StoragePath, activityRepo.DefaultRetention)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize activity repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Activity Service
	do.Provide(injector, func(i do.Injector) (*activityService.Service, error) {
		repo := do.MustInvoke[activityRepo.Repository](i)
		return activityService.New(repo, slog.Default()), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return telegramTransport.NewHandler(cfg.MentionAck, slog.Default()), nil
	})

	// Register Bot
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramTransport.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
		}
		if cfg.TelegramAPIURL != "" {
			opts = append(opts, bot.WithServerURL(cfg.TelegramAPIURL))
		}

		b, err := bot.New(cfg.TelegramToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return b, nil
	})

	// Register Telegram Client
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Client, error) {
		return telegramTransport.NewClient(do.MustInvoke[*bot.Bot](i)), nil
	})

	// Register Discord Source
	do.Provide(injector, func(i do.Injector) (*discord.Source, error) {
		cfg := do.MustInvoke[*config.Config](i)
		source, err := discord.NewSource(cfg.DiscordToken, cfg.EventBuffer, slog.Default())
		if err != nil {
			return nil, oops.With("context", "failed to create discord source").Wrap(err)
		}
		return source, nil
	})

	// Register Relay Engine
	do.Provide(injector, func(i do.Injector) (*relayService.Engine, error) {
		table := do.MustInvoke[*pairingService.Table](i)
		records := do.MustInvoke[deliveryRepo.Repository](i)
		client := do.MustInvoke[*telegramTransport.Client](i)
		activity := do.MustInvoke[*activityService.Service](i)
		return relayService.New(table, records, client, activity, slog.Default()), nil
	})

	// Register Backfill Coordinator
	do.Provide(injector, func(i do.Injector) (*backfillService.Coordinator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		engine := do.MustInvoke[*relayService.Engine](i)
		source := do.MustInvoke[*discord.Source](i)
		return backfillService.New(engine, source, backfillService.Options{
			Enabled:      cfg.BackfillEnabled,
			Limit:        cfg.BackfillLimit,
			Pace:         cfg.BackfillPace,
			AutoReverse:  cfg.BackfillAutoReverse,
			ReverseDelay: cfg.BackfillReverseDelay,
		}, slog.Default()), nil
	})

	// Register Access Checker
	do.Provide(injector, func(i do.Injector) (*diagnosticsService.Checker, error) {
		source := do.MustInvoke[*discord.Source](i)
		client := do.MustInvoke[*telegramTransport.Client](i)
		return diagnosticsService.New(source, client, slog.Default()), nil
	})

	// Register Dispatcher; the ready hook runs the access check, then backfill.
	do.Provide(injector, func(i do.Injector) (*relayService.Dispatcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		engine := do.MustInvoke[*relayService.Engine](i)
		coordinator := do.MustInvoke[*backfillService.Coordinator](i)
		checker := do.MustInvoke[*diagnosticsService.Checker](i)

		dispatcher := relayService.NewDispatcher(engine, slog.Default())
		dispatcher.OnReady(func(ctx context.Context) {
			if cfg.AccessCheck {
				checker.Check(ctx, engine.Pairings())
			}
			coordinator.OnReady(ctx)
		})
		return dispatcher, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		engine := do.MustInvoke[*relayService.Engine](i)
		activity := do.MustInvoke[*activityService.Service](i)
		server := httpServer.New(cfg.HTTPPort, engine, activity)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(ctx context.Context, injector do.Injector) error {
	var errs []error

	// Stop receiving Discord events first
	if source, err := do.Invoke[*discord.Source](injector); err == nil && source != nil {
		if err := source.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	cfg := do.MustInvoke[*config.Config](injector)
	if cfg.CorrelationBackend == config.BackendRedis {
		if client, err := do.Invoke[*redis.Client](injector); err == nil && client != nil {
			if err := client.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return oops.With("context", "shutdown").Wrap(errors.Join(errs...))
	}
	return nil
}
