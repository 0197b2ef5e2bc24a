package service

import (
	"context"
	"sync"
	"testing"

	activityDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/domain"
	deliveryRepo "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/repository"
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	pairingService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/stretchr/testify/require"
)

type destCall struct {
	Op        string
	ChatID    int64
	ThreadID  int
	Text      string
	Items     []domain.MediaItem
	MessageID int
}

// fakeDestination hands out increasing message ids and records every call.
type fakeDestination struct {
	mu        sync.Mutex
	nextID    int
	calls     []destCall
	sendErr   error
	deleteErr map[int]error
	panicOn   string
}

func (f *fakeDestination) SendText(_ context.Context, chatID int64, threadID int, text string) (domain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == text {
		panic("boom")
	}
	f.calls = append(f.calls, destCall{Op: "sendText", ChatID: chatID, ThreadID: threadID, Text: text})
	if f.sendErr != nil {
		return domain.Receipt{}, f.sendErr
	}
	f.nextID++
	return domain.Receipt{MessageID: f.nextID}, nil
}

func (f *fakeDestination) SendMediaGroup(_ context.Context, chatID int64, threadID int, items []domain.MediaItem) ([]domain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, destCall{Op: "sendMediaGroup", ChatID: chatID, ThreadID: threadID, Items: items})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	receipts := make([]domain.Receipt, 0, len(items))
	for range items {
		f.nextID++
		receipts = append(receipts, domain.Receipt{MessageID: f.nextID})
	}
	return receipts, nil
}

func (f *fakeDestination) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, destCall{Op: "deleteMessage", ChatID: chatID, MessageID: messageID})
	return f.deleteErr[messageID]
}

func (f *fakeDestination) Calls() []destCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]destCall(nil), f.calls...)
}

func (f *fakeDestination) Ops() []string {
	calls := f.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

type fakeJournal struct {
	mu         sync.Mutex
	activities []activityDomain.Activity
}

func (j *fakeJournal) Record(_ context.Context, activity activityDomain.Activity) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.activities = append(j.activities, activity)
}

func (j *fakeJournal) Kinds() []activityDomain.Kind {
	j.mu.Lock()
	defer j.mu.Unlock()
	kinds := make([]activityDomain.Kind, len(j.activities))
	for i, a := range j.activities {
		kinds[i] = a.Kind
	}
	return kinds
}

type fixture struct {
	engine  *Engine
	dest    *fakeDestination
	records deliveryRepo.Repository
	journal *fakeJournal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	table, err := pairingService.NewTable([]pairingDomain.Pairing{
		{SourceChannelID: "c1", DestinationChatID: 100},
		{SourceChannelID: "c2", DestinationChatID: 200, DestinationThreadID: 7},
	})
	require.NoError(t, err)

	f := &fixture{
		dest:    &fakeDestination{deleteErr: map[int]error{}},
		records: deliveryRepo.NewMemoryStorage(0),
		journal: &fakeJournal{},
	}
	f.engine = New(table, f.records, f.dest, f.journal, nil)
	return f
}

func textEvent(kind domain.EventKind, id, channel, text string) domain.Event {
	return domain.Event{
		Kind:       kind,
		SourceID:   id,
		ChannelID:  channel,
		AuthorName: "alice",
		Text:       text,
	}
}
