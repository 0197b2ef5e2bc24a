// Package policy decides whether a Discord event is relayed.
package policy

import (
	"context"
	"log/slog"

	deliveryRepo "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/repository"
	pairingService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
)

// Policy has no side effects; the correlation store is only read.
type Policy struct {
	pairings *pairingService.Table
	records  deliveryRepo.Repository
	logger   *slog.Logger
}

// New creates a policy over the pairing table and the correlation store.
func New(pairings *pairingService.Table, records deliveryRepo.Repository, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{
		pairings: pairings,
		records:  records,
		logger:   logger,
	}
}

// Admit applies the checks for the event's kind.
func (p *Policy) Admit(ctx context.Context, event domain.Event) bool {
	switch event.Kind {
	case domain.EventKindCreated:
		return p.AdmitCreate(ctx, event)
	case domain.EventKindUpdated:
		return p.AdmitContent(event)
	case domain.EventKindDeleted:
		return p.pairings.Has(event.ChannelID)
	default:
		return false
	}
}

// AdmitContent requires a paired channel and some text or attachments.
func (p *Policy) AdmitContent(event domain.Event) bool {
	return p.pairings.Has(event.ChannelID) && event.HasContent()
}

// AdmitCreate additionally rejects messages that were already relayed, which
// guards against duplicate gateway deliveries and backfill re-ingestion.
func (p *Policy) AdmitCreate(ctx context.Context, event domain.Event) bool {
	if !p.AdmitContent(event) {
		return false
	}

	_, err := p.records.Get(ctx, event.SourceID)
	switch {
	case err == nil:
		return false
	case errors.Is(err, errors.ErrRecordNotFound):
		return true
	default:
		p.logger.Warn("Cannot check delivery record, skipping message", "source_id", event.SourceID, "error", err)
		return false
	}
}
