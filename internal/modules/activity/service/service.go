package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/repository"
	"github.com/samber/oops"
)

const previewLen = 100

// Service journals relay outcomes and renders them as a feed.
type Service struct {
	repo   repository.Repository
	logger *slog.Logger
}

// New creates a new activity service
func New(repo repository.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record stores an activity. Journal failures are logged and never reach the
// relay path.
func (s *Service) Record(_ context.Context, activity domain.Activity) {
	if activity.At.IsZero() {
		activity.At = time.Now()
	}
	activity.Preview = Preview(activity.Preview)

	if err := s.repo.SaveActivity(&activity); err != nil {
		s.logger.Warn("Failed to record activity", "source_id", activity.SourceID, "kind", activity.Kind, "error", err)
	}
}

// Recent returns the latest activity of one channel, or of all channels when
// channelID is empty.
func (s *Service) Recent(channelID string, limit int) ([]*domain.Activity, error) {
	if channelID == "" {
		return s.repo.GetAll(limit)
	}
	return s.repo.GetRecent(channelID, limit)
}

// GenerateFeed builds an RSS feed of recent relay activity.
func (s *Service) GenerateFeed(channelID, baseURL string, limit int) (*feeds.Feed, error) {
	activities, err := s.Recent(channelID, limit)
	if err != nil {
		return nil, oops.With("channel_id", channelID, "context", "failed to get activity").Wrap(err)
	}

	title := "Discord → Telegram relay activity"
	link := baseURL + "/feed"
	if channelID != "" {
		title = fmt.Sprintf("%s: channel %s", title, channelID)
		link = fmt.Sprintf("%s?channel=%s", link, channelID)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "Messages relayed, updated and deleted by the Discord to Telegram relay",
		Created:     time.Now(),
	}
	if len(activities) > 0 {
		feed.Updated = activities[0].At
	}

	for _, a := range activities {
		feed.Items = append(feed.Items, activityToFeedItem(a, baseURL))
	}
	return feed, nil
}

func activityToFeedItem(a *domain.Activity, baseURL string) *feeds.Item {
	title := fmt.Sprintf("%s %s", a.Kind, a.SourceID)
	if a.Author != "" {
		title = fmt.Sprintf("%s by %s", title, a.Author)
	}

	var description strings.Builder
	fmt.Fprintf(&description, "Discord channel %s → Telegram chat %d", a.ChannelID, a.ChatID)
	if a.ThreadID != 0 {
		fmt.Fprintf(&description, " (thread %d)", a.ThreadID)
	}
	if len(a.MessageIDs) > 0 {
		fmt.Fprintf(&description, "\nTelegram messages: %v", a.MessageIDs)
	}
	if a.Preview != "" {
		fmt.Fprintf(&description, "\n\n%s", a.Preview)
	}
	if a.Error != "" {
		fmt.Fprintf(&description, "\n\nError: %s", a.Error)
	}

	return &feeds.Item{
		Title:       title,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/deliveries/%s", baseURL, a.SourceID)},
		Description: description.String(),
		Author:      &feeds.Author{Name: a.Author},
		Created:     a.At,
		Id:          fmt.Sprintf("%s-%s-%d", a.SourceID, a.Kind, a.At.UnixNano()),
	}
}

// Preview shortens text for the journal.
func Preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLen {
		return s
	}
	return string(runes[:previewLen]) + "..."
}
