package repository

import (
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/domain"
)

// Repository defines the interface for activity journal persistence
type Repository interface {
	SaveActivity(activity *domain.Activity) error
	// GetRecent returns up to limit entries of one channel, newest first.
	GetRecent(channelID string, limit int) ([]*domain.Activity, error)
	// GetAll returns up to limit entries across all channels, newest first.
	GetAll(limit int) ([]*domain.Activity, error)
}
