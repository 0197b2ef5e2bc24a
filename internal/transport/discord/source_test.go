package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   "hello",
		Timestamp: ts,
		Author:    &discordgo.User{ID: "u1", Username: "alice_01", GlobalName: "Alice"},
		Attachments: []*discordgo.MessageAttachment{
			{URL: "https://cdn.example/a.png", Filename: "a.png", ContentType: "image/png"},
			{URL: "https://cdn.example/b.mp4", Filename: "b.mp4", ContentType: "video/mp4"},
			{URL: "", Filename: "broken"},
			{URL: "https://cdn.example/c.zip", Filename: "c.zip"},
		},
	}

	event := MessageEvent(domain.EventKindCreated, m)

	assert.Equal(t, domain.EventKindCreated, event.Kind)
	assert.Equal(t, "m1", event.SourceID)
	assert.Equal(t, "c1", event.ChannelID)
	assert.Equal(t, "u1", event.AuthorID)
	assert.Equal(t, "Alice", event.AuthorName)
	assert.Equal(t, "hello", event.Text)
	assert.Equal(t, ts, event.Timestamp)
	require.Len(t, event.Attachments, 3)
	assert.Equal(t, domain.AttachmentKindPhoto, event.Attachments[0].Kind)
	assert.Equal(t, domain.AttachmentKindVideo, event.Attachments[1].Kind)
	assert.Equal(t, domain.AttachmentKindDocument, event.Attachments[2].Kind)
}

func TestAuthorName(t *testing.T) {
	tests := []struct {
		name string
		msg  *discordgo.Message
		want string
	}{
		{"nickname wins", &discordgo.Message{Author: &discordgo.User{Username: "a", GlobalName: "A"}, Member: &discordgo.Member{Nick: "Nick"}}, "Nick"},
		{"global name", &discordgo.Message{Author: &discordgo.User{Username: "a", GlobalName: "A"}, Member: &discordgo.Member{}}, "A"},
		{"username", &discordgo.Message{Author: &discordgo.User{Username: "a"}}, "a"},
		{"no author", &discordgo.Message{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := author(tt.msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestSource(t *testing.T) *Source {
	t.Helper()
	s, err := NewSource("token", 8, nil)
	require.NoError(t, err)
	s.session.State.User = &discordgo.User{ID: "bot"}
	return s
}

func TestSource_PublishesInOrder(t *testing.T) {
	s := newTestSource(t)
	author := &discordgo.User{ID: "u1", Username: "alice"}

	s.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "relay"}})
	s.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "m1", ChannelID: "c1", Content: "hi", Author: author}})
	s.onMessageUpdate(nil, &discordgo.MessageUpdate{
		Message:      &discordgo.Message{ID: "m1", ChannelID: "c1", Content: "hi!"},
		BeforeUpdate: &discordgo.Message{ID: "m1", Author: author},
	})
	s.onMessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m1", ChannelID: "c1"}})

	events := s.Events()
	require.Len(t, events, 4)

	ready := <-events
	assert.Equal(t, domain.EventKindReady, ready.Kind)

	created := <-events
	assert.Equal(t, domain.EventKindCreated, created.Kind)
	assert.Equal(t, "hi", created.Text)

	updated := <-events
	assert.Equal(t, domain.EventKindUpdated, updated.Kind)
	assert.Equal(t, "hi!", updated.Text)
	assert.Equal(t, "alice", updated.AuthorName)

	deleted := <-events
	assert.Equal(t, domain.Event{Kind: domain.EventKindDeleted, SourceID: "m1", ChannelID: "c1"}, deleted)
}

func TestSource_SkipsOwnMessages(t *testing.T) {
	s := newTestSource(t)

	s.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "m1", ChannelID: "c1", Content: "relayed", Author: &discordgo.User{ID: "bot"}}})
	s.onMessageUpdate(nil, &discordgo.MessageUpdate{Message: &discordgo.Message{ID: "m1", ChannelID: "c1", Content: "relayed", Author: &discordgo.User{ID: "bot"}}})

	assert.Empty(t, s.Events())
}

func TestSource_PublishAfterCloseDoesNotBlock(t *testing.T) {
	s, err := NewSource("token", 1, nil)
	require.NoError(t, err)

	s.closeOnce.Do(func() { close(s.done) })

	done := make(chan struct{})
	go func() {
		s.publish(domain.Event{Kind: domain.EventKindCreated, SourceID: "1"})
		s.publish(domain.Event{Kind: domain.EventKindCreated, SourceID: "2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked after close")
	}
}

func TestPermissionReport(t *testing.T) {
	report := PermissionReport(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages)

	assert.True(t, report["ViewChannel"])
	assert.True(t, report["SendMessages"])
	assert.False(t, report["ReadMessageHistory"])
	assert.Equal(t, []string{"ReadMessageHistory", "AttachFiles", "EmbedLinks", "ManageWebhooks"}, MissingPermissions(report))

	admin := PermissionReport(discordgo.PermissionAdministrator)
	assert.Empty(t, MissingPermissions(admin))
}
