package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	deliveryRepo "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/repository"
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	pairingService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	relayService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	mu       sync.Mutex
	messages map[string][]domain.Event
	failing  map[string]bool
	fetched  []string
}

func (h *fakeHistory) FetchRecentMessages(_ context.Context, channelID string, limit int) ([]domain.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fetched = append(h.fetched, channelID)
	if h.failing[channelID] {
		return nil, stderrors.New("missing access")
	}
	msgs := h.messages[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return append([]domain.Event(nil), msgs...), nil
}

type sentText struct {
	ChatID int64
	Text   string
}

type fakeDestination struct {
	mu        sync.Mutex
	nextID    int
	sent      []sentText
	deleted   []int
	deleteErr map[int]error
}

func (f *fakeDestination) SendText(_ context.Context, chatID int64, _ int, text string) (domain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, sentText{ChatID: chatID, Text: text})
	return domain.Receipt{MessageID: f.nextID}, nil
}

func (f *fakeDestination) SendMediaGroup(_ context.Context, _ int64, _ int, items []domain.MediaItem) ([]domain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipts := make([]domain.Receipt, len(items))
	for i := range items {
		f.nextID++
		receipts[i] = domain.Receipt{MessageID: f.nextID}
	}
	return receipts, nil
}

func (f *fakeDestination) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return f.deleteErr[messageID]
}

func msg(id, channel, text string) domain.Event {
	return domain.Event{Kind: domain.EventKindCreated, SourceID: id, ChannelID: channel, AuthorName: "bob", Text: text}
}

func newCoordinator(t *testing.T, history *fakeHistory, opts Options) (*Coordinator, *relayService.Engine, *fakeDestination) {
	t.Helper()

	table, err := pairingService.NewTable([]pairingDomain.Pairing{
		{SourceChannelID: "c1", DestinationChatID: 100},
		{SourceChannelID: "c2", DestinationChatID: 200},
	})
	require.NoError(t, err)

	dest := &fakeDestination{deleteErr: map[int]error{}}
	engine := relayService.New(table, deliveryRepo.NewMemoryStorage(0), dest, nil, nil)
	return New(engine, history, opts, nil), engine, dest
}

func TestCoordinator_ReplayRecentOldestFirst(t *testing.T) {
	history := &fakeHistory{messages: map[string][]domain.Event{
		"c1": {msg("m3", "c1", "third"), msg("m2", "c1", "second"), msg("m1", "c1", "first")},
		"c2": {msg("n1", "c2", "other")},
	}}
	c, _, dest := newCoordinator(t, history, Options{Pace: time.Millisecond})

	replayed := c.ReplayRecent(context.Background(), 10)

	assert.Equal(t, []Replayed{
		{SourceID: "m1", SourceChannelID: "c1", DestinationChatID: 100},
		{SourceID: "m2", SourceChannelID: "c1", DestinationChatID: 100},
		{SourceID: "m3", SourceChannelID: "c1", DestinationChatID: 100},
		{SourceID: "n1", SourceChannelID: "c2", DestinationChatID: 200},
	}, replayed)
	assert.Equal(t, []sentText{
		{ChatID: 100, Text: "bob:\nfirst"},
		{ChatID: 100, Text: "bob:\nsecond"},
		{ChatID: 100, Text: "bob:\nthird"},
		{ChatID: 200, Text: "bob:\nother"},
	}, dest.sent)
}

func TestCoordinator_ReplayLimitOnePerPairing(t *testing.T) {
	history := &fakeHistory{messages: map[string][]domain.Event{
		"c1": {msg("m2", "c1", "latest"), msg("m1", "c1", "older")},
		"c2": {msg("n2", "c2", "latest"), msg("n1", "c2", "older")},
	}}
	c, _, dest := newCoordinator(t, history, Options{})

	replayed := c.ReplayRecent(context.Background(), 1)

	require.Len(t, replayed, 2)
	assert.Equal(t, "m2", replayed[0].SourceID)
	assert.Equal(t, "n2", replayed[1].SourceID)
	assert.Equal(t, []string{"c1", "c2"}, history.fetched)
	assert.Len(t, dest.sent, 2)
}

func TestCoordinator_ReplaySkipsAlreadyRelayedAndFailingChannels(t *testing.T) {
	history := &fakeHistory{
		messages: map[string][]domain.Event{
			"c2": {msg("n2", "c2", "new"), msg("n1", "c2", "seen"), msg("n0", "c2", "")},
		},
		failing: map[string]bool{"c1": true},
	}
	c, engine, dest := newCoordinator(t, history, Options{})

	_, err := engine.RelayCreate(context.Background(), msg("n1", "c2", "seen"))
	require.NoError(t, err)

	replayed := c.ReplayRecent(context.Background(), 5)

	require.Len(t, replayed, 1)
	assert.Equal(t, "n2", replayed[0].SourceID)
	assert.Equal(t, []string{"c1", "c2"}, history.fetched)
	assert.Len(t, dest.sent, 2)
}

func TestCoordinator_ReplayZeroLimit(t *testing.T) {
	history := &fakeHistory{}
	c, _, _ := newCoordinator(t, history, Options{})

	assert.Empty(t, c.ReplayRecent(context.Background(), 0))
	assert.Empty(t, history.fetched)
}

func TestCoordinator_ReverseRecent(t *testing.T) {
	history := &fakeHistory{messages: map[string][]domain.Event{
		"c1": {msg("m2", "c1", "b"), msg("m1", "c1", "a")},
		"c2": {msg("n1", "c2", "c")},
	}}
	c, engine, dest := newCoordinator(t, history, Options{})
	ctx := context.Background()

	replayed := c.ReplayRecent(ctx, 5)
	require.Len(t, replayed, 3)

	// n1 was already deleted from Discord, m2's Telegram message is gone.
	require.NoError(t, engine.RelayDelete(ctx, "n1"))
	dest.deleteErr[2] = stderrors.New("message to delete not found")

	summary := c.ReverseRecent(ctx, replayed, time.Millisecond)
	assert.Equal(t, Summary{Succeeded: 1, Failed: 1, Missing: 1}, summary)

	for _, r := range replayed {
		_, ok := engine.Lookup(ctx, r.SourceID)
		assert.False(t, ok, r.SourceID)
	}
}

func TestCoordinator_ReverseRecentCancelled(t *testing.T) {
	c, _, dest := newCoordinator(t, &fakeHistory{}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := c.ReverseRecent(ctx, []Replayed{{SourceID: "m1"}}, time.Hour)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, dest.deleted)
}

func TestCoordinator_OnReady(t *testing.T) {
	newHistory := func() *fakeHistory {
		return &fakeHistory{messages: map[string][]domain.Event{
			"c1": {msg("m1", "c1", "hello")},
		}}
	}

	t.Run("disabled", func(t *testing.T) {
		history := newHistory()
		c, _, dest := newCoordinator(t, history, Options{Enabled: false, Limit: 1})
		c.OnReady(context.Background())
		assert.Empty(t, history.fetched)
		assert.Empty(t, dest.sent)
	})

	t.Run("replay only", func(t *testing.T) {
		c, engine, dest := newCoordinator(t, newHistory(), Options{Enabled: true, Limit: 1})
		c.OnReady(context.Background())
		assert.Len(t, dest.sent, 1)
		assert.Empty(t, dest.deleted)
		_, ok := engine.Lookup(context.Background(), "m1")
		assert.True(t, ok)
	})

	t.Run("replay and reverse", func(t *testing.T) {
		c, engine, dest := newCoordinator(t, newHistory(), Options{Enabled: true, Limit: 1, AutoReverse: true, ReverseDelay: time.Millisecond})
		c.OnReady(context.Background())
		assert.Len(t, dest.sent, 1)
		assert.Equal(t, []int{1}, dest.deleted)
		_, ok := engine.Lookup(context.Background(), "m1")
		assert.False(t, ok)
	})
}
