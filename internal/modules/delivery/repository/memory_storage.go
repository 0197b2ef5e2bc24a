package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// MemoryStorage implements Repository in process memory. Its content is lost
// on restart.
type MemoryStorage struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryStorage creates a volatile repository. A positive ttl evicts
// records that old; zero keeps them until deleted.
func NewMemoryStorage(ttl time.Duration) Repository {
	if ttl <= 0 {
		return &MemoryStorage{cache: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &MemoryStorage{cache: cache.New(ttl, ttl), ttl: ttl}
}

func (s *MemoryStorage) Get(_ context.Context, sourceID string) (*domain.DeliveryRecord, error) {
	v, ok := s.cache.Get(sourceID)
	if !ok {
		return nil, oops.In("delivery").With("source_id", sourceID).Wrap(errors.ErrRecordNotFound)
	}
	return v.(*domain.DeliveryRecord).Clone(), nil
}

func (s *MemoryStorage) Put(_ context.Context, record *domain.DeliveryRecord) error {
	if record == nil || record.SourceID == "" {
		return oops.In("delivery").Errorf("record without source id")
	}
	s.cache.Set(record.SourceID, record.Clone(), s.ttl)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, sourceID string) error {
	s.cache.Delete(sourceID)
	return nil
}

func (s *MemoryStorage) Count(_ context.Context) (int, error) {
	return s.cache.ItemCount(), nil
}
