// Package service replays recent Discord history into Telegram after startup.
package service

import (
	"context"
	"log/slog"
	"time"

	deliveryDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/domain"
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/samber/lo"
)

const (
	DefaultPace         = 500 * time.Millisecond
	DefaultReverseDelay = 5 * time.Second
)

// History reads recent Discord messages of a channel, newest first.
type History interface {
	FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.Event, error)
}

// Relay is the part of the relay engine the coordinator drives.
type Relay interface {
	Pairings() []pairingDomain.Pairing
	Lookup(ctx context.Context, sourceID string) (*deliveryDomain.DeliveryRecord, bool)
	RelayCreate(ctx context.Context, event domain.Event) (*deliveryDomain.DeliveryRecord, error)
	RelayDelete(ctx context.Context, sourceID string) error
}

type Options struct {
	Enabled      bool
	Limit        int
	Pace         time.Duration
	AutoReverse  bool
	ReverseDelay time.Duration
}

// Replayed identifies a message relayed by backfill.
type Replayed struct {
	SourceID          string
	SourceChannelID   string
	DestinationChatID int64
}

// Summary counts the outcome of a reversal.
type Summary struct {
	Succeeded int
	Failed    int
	Missing   int
}

// Coordinator replays and optionally reverses recent history.
type Coordinator struct {
	relay   Relay
	history History
	opts    Options
	logger  *slog.Logger
}

// New creates a new backfill coordinator
func New(relay Relay, history History, opts Options, logger *slog.Logger) *Coordinator {
	if opts.Pace < 0 {
		opts.Pace = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		relay:   relay,
		history: history,
		opts:    opts,
		logger:  logger,
	}
}

// OnReady runs the configured backfill. It is meant to be used as the
// dispatcher's ready hook.
func (c *Coordinator) OnReady(ctx context.Context) {
	if !c.opts.Enabled {
		c.logger.Debug("Backfill disabled")
		return
	}

	replayed := c.ReplayRecent(ctx, c.opts.Limit)
	if !c.opts.AutoReverse || len(replayed) == 0 {
		return
	}
	c.ReverseRecent(ctx, replayed, c.opts.ReverseDelay)
}

// ReplayRecent relays up to limit recent messages of every pairing, oldest
// first, one pairing after another. Sends are sequential and paced.
func (c *Coordinator) ReplayRecent(ctx context.Context, limit int) []Replayed {
	var replayed []Replayed
	if limit <= 0 {
		return replayed
	}

	attempts := 0
	for _, pairing := range c.relay.Pairings() {
		if ctx.Err() != nil {
			break
		}

		events, err := c.history.FetchRecentMessages(ctx, pairing.SourceChannelID, limit)
		if err != nil {
			c.logger.Error("Failed to fetch channel history", "channel_id", pairing.SourceChannelID, "error", err)
			continue
		}

		for _, event := range lo.Reverse(events) {
			if attempts > 0 && !sleep(ctx, c.opts.Pace) {
				return replayed
			}
			attempts++

			event.Kind = domain.EventKindCreated
			record, err := c.relay.RelayCreate(ctx, event)
			if err != nil {
				c.logger.Error("Failed to backfill message", "source_id", event.SourceID, "channel_id", pairing.SourceChannelID, "error", err)
				continue
			}
			if record == nil {
				continue
			}

			replayed = append(replayed, Replayed{
				SourceID:          event.SourceID,
				SourceChannelID:   pairing.SourceChannelID,
				DestinationChatID: record.ChatID,
			})
		}
	}

	c.logger.Info("Backfill finished", "pairings", len(c.relay.Pairings()), "relayed", len(replayed))
	return replayed
}

// ReverseRecent waits for delay and then deletes every replayed message.
func (c *Coordinator) ReverseRecent(ctx context.Context, replayed []Replayed, delay time.Duration) Summary {
	var summary Summary
	if !sleep(ctx, delay) {
		return summary
	}

	for _, r := range replayed {
		if _, ok := c.relay.Lookup(ctx, r.SourceID); !ok {
			summary.Missing++
			continue
		}
		if err := c.relay.RelayDelete(ctx, r.SourceID); err != nil {
			c.logger.Warn("Failed to reverse backfilled message", "source_id", r.SourceID, "chat_id", r.DestinationChatID, "error", err)
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}

	c.logger.Info("Backfill reversal finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"missing", summary.Missing,
	)
	return summary
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
