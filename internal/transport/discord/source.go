// Package discord turns Discord gateway callbacks into relay events.
package discord

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// maxHistoryLimit is the most messages Discord returns per history request.
const maxHistoryLimit = 100

const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Source is the Discord side of the relay. Gateway callbacks are converted to
// events and published on a buffered channel in arrival order.
type Source struct {
	session *discordgo.Session
	events  chan domain.Event
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewSource creates a Discord session for a bot token. The gateway is not
// connected until Open.
func NewSource(token string, buffer int, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer <= 0 {
		buffer = 100
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, oops.In("discord").With("context", "failed to create session").Wrap(err)
	}
	session.Identify.Intents = intents
	// Handlers run on the gateway goroutine so events keep their order.
	session.SyncEvents = true

	s := &Source{
		session: session,
		events:  make(chan domain.Event, buffer),
		logger:  logger,
		done:    make(chan struct{}),
	}

	session.AddHandler(s.onReady)
	session.AddHandler(s.onMessageCreate)
	session.AddHandler(s.onMessageUpdate)
	session.AddHandler(s.onMessageDelete)

	return s, nil
}

// Session exposes the underlying session for diagnostics.
func (s *Source) Session() *discordgo.Session {
	return s.session
}

// Events returns the event stream consumed by the dispatcher.
func (s *Source) Events() <-chan domain.Event {
	return s.events
}

// Open connects to the gateway.
func (s *Source) Open() error {
	if err := s.session.Open(); err != nil {
		return oops.In("discord").With("context", "failed to connect").Wrap(err)
	}
	return nil
}

// Close disconnects from the gateway. Pending publishes are dropped.
func (s *Source) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	if err := s.session.Close(); err != nil {
		return oops.In("discord").With("context", "failed to close session").Wrap(err)
	}
	return nil
}

// FetchRecentMessages returns up to limit recent messages of a channel, newest
// first.
func (s *Source) FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.Event, error) {
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	msgs, err := s.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, oops.In("discord").With("channel_id", channelID, "limit", limit).Wrap(err)
	}
	s.logger.Debug("Fetched messages", "channel_id", channelID, "count", len(msgs))

	return lo.FilterMap(msgs, func(m *discordgo.Message, _ int) (domain.Event, bool) {
		if s.isOwn(m) {
			return domain.Event{}, false
		}
		return MessageEvent(domain.EventKindCreated, m), true
	}), nil
}

func (s *Source) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		s.logger.Info("Discord client logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	}
	s.publish(domain.Event{Kind: domain.EventKindReady})
}

func (s *Source) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || s.isOwn(m.Message) {
		return
	}
	s.publish(MessageEvent(domain.EventKindCreated, m.Message))
}

func (s *Source) onMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Message == nil || s.isOwn(m.Message) {
		return
	}
	event := MessageEvent(domain.EventKindUpdated, m.Message)
	if event.AuthorName == "" && m.BeforeUpdate != nil {
		event.AuthorID, event.AuthorName = author(m.BeforeUpdate)
	}
	s.publish(event)
}

func (s *Source) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil {
		return
	}
	s.publish(domain.Event{
		Kind:      domain.EventKindDeleted,
		SourceID:  m.ID,
		ChannelID: m.ChannelID,
	})
}

func (s *Source) publish(event domain.Event) {
	select {
	case s.events <- event:
	case <-s.done:
		s.logger.Debug("Source closed, event dropped", "kind", event.Kind, "source_id", event.SourceID)
	}
}

func (s *Source) isOwn(m *discordgo.Message) bool {
	if m.Author == nil || s.session.State == nil || s.session.State.User == nil {
		return false
	}
	return m.Author.ID == s.session.State.User.ID
}

// MessageEvent converts a Discord message.
func MessageEvent(kind domain.EventKind, m *discordgo.Message) domain.Event {
	authorID, authorName := author(m)
	return domain.Event{
		Kind:        kind,
		SourceID:    m.ID,
		ChannelID:   m.ChannelID,
		AuthorID:    authorID,
		AuthorName:  authorName,
		Text:        m.Content,
		Attachments: Attachments(m.Attachments),
		Timestamp:   m.Timestamp,
	}
}

// Attachments converts Discord attachments, keeping their order.
func Attachments(attachments []*discordgo.MessageAttachment) []domain.Attachment {
	return lo.FilterMap(attachments, func(a *discordgo.MessageAttachment, _ int) (domain.Attachment, bool) {
		if a == nil || a.URL == "" {
			return domain.Attachment{}, false
		}
		return domain.Attachment{
			URL:         a.URL,
			Kind:        domain.KindFromContentType(a.ContentType),
			Filename:    a.Filename,
			ContentType: a.ContentType,
		}, true
	})
}

// author returns the author id and the name shown in the guild: the member
// nickname, then the global display name, then the username.
func author(m *discordgo.Message) (string, string) {
	if m.Author == nil {
		return "", ""
	}
	if m.Member != nil && m.Member.Nick != "" {
		return m.Author.ID, m.Member.Nick
	}
	return m.Author.ID, m.Author.DisplayName()
}
