package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
)

// ReadyHook runs once after the Discord session is ready.
type ReadyHook func(ctx context.Context)

// Dispatcher is the single consumer of Discord events. Events are handled one
// at a time in arrival order; a failing event is logged and never stops the
// loop.
type Dispatcher struct {
	engine *Engine
	logger *slog.Logger

	onReady   ReadyHook
	readyOnce sync.Once
}

// NewDispatcher creates a dispatcher feeding the given engine.
func NewDispatcher(engine *Engine, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine: engine,
		logger: logger,
	}
}

// OnReady sets the hook started on the first ready event. Must be called
// before Run.
func (d *Dispatcher) OnReady(hook ReadyHook) {
	d.onReady = hook
}

// Run consumes events until ctx is cancelled or the channel is closed.
func (d *Dispatcher) Run(ctx context.Context, events <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			d.Handle(ctx, event)
		}
	}
}

// Handle processes a single event.
func (d *Dispatcher) Handle(ctx context.Context, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic while handling event", "kind", event.Kind, "source_id", event.SourceID, "panic", r)
		}
	}()

	var err error
	switch event.Kind {
	case domain.EventKindCreated:
		_, err = d.engine.RelayCreate(ctx, event)
	case domain.EventKindUpdated:
		err = d.engine.RelayUpdate(ctx, event)
	case domain.EventKindDeleted:
		if !d.engine.Admit(ctx, event) {
			return
		}
		err = d.engine.RelayDelete(ctx, event.SourceID)
	case domain.EventKindReady:
		d.ready(ctx)
	default:
		d.logger.Warn("Unknown event kind", "kind", event.Kind, "source_id", event.SourceID)
	}

	if err != nil {
		d.logger.Error("Failed to handle event",
			"kind", event.Kind,
			"source_id", event.SourceID,
			"channel_id", event.ChannelID,
			"error", err,
		)
	}
}

// ready runs the hook inline, so events queued behind the ready event wait
// until it returns and never interleave with its relay calls. Later ready
// events from gateway reconnects are ignored.
func (d *Dispatcher) ready(ctx context.Context) {
	if d.onReady == nil {
		return
	}
	d.readyOnce.Do(func() {
		d.onReady(ctx)
	})
}
