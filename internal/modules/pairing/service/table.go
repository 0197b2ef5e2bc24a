package service

import (
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Table is the immutable set of channel pairings, indexed by Discord channel.
type Table struct {
	pairings []domain.Pairing
	index    map[string]domain.Pairing
}

// NewTable builds a table from validated pairings. Each Discord channel may
// appear only once.
func NewTable(pairings []domain.Pairing) (*Table, error) {
	if len(pairings) == 0 {
		return nil, oops.In("pairing").Wrap(errors.ErrNoChannelPairs)
	}

	dups := lo.FindDuplicatesBy(pairings, func(p domain.Pairing) string {
		return p.SourceChannelID
	})
	if len(dups) > 0 {
		return nil, oops.In("pairing").
			With("discord_channel_id", dups[0].SourceChannelID).
			Wrap(errors.ErrDuplicatePairing)
	}

	return &Table{
		pairings: append([]domain.Pairing(nil), pairings...),
		index: lo.KeyBy(pairings, func(p domain.Pairing) string {
			return p.SourceChannelID
		}),
	}, nil
}

// Lookup returns the pairing for a Discord channel.
func (t *Table) Lookup(channelID string) (domain.Pairing, bool) {
	p, ok := t.index[channelID]
	return p, ok
}

// Has reports whether a Discord channel is paired.
func (t *Table) Has(channelID string) bool {
	_, ok := t.index[channelID]
	return ok
}

// All returns the pairings in configuration order.
func (t *Table) All() []domain.Pairing {
	return append([]domain.Pairing(nil), t.pairings...)
}

// Len returns the number of pairings.
func (t *Table) Len() int {
	return len(t.pairings)
}
