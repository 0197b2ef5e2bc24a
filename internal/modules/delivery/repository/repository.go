package repository

import (
	"context"

	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/domain"
)

// Repository owns delivery records keyed by Discord message id.
// Implementations are safe for concurrent use; callers needing a
// read-modify-write sequence on one key serialize it themselves.
type Repository interface {
	// Get returns errors.ErrRecordNotFound when no record exists.
	Get(ctx context.Context, sourceID string) (*domain.DeliveryRecord, error)
	// Put stores the record, replacing any previous one for the same key.
	Put(ctx context.Context, record *domain.DeliveryRecord) error
	// Delete removes the record; a missing key is not an error.
	Delete(ctx context.Context, sourceID string) error
	Count(ctx context.Context) (int, error)
}
