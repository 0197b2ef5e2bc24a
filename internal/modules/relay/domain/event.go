package domain

import (
	"strings"
	"time"
)

// KindFromContentType maps a MIME type to an attachment kind.
func KindFromContentType(contentType string) AttachmentKind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return AttachmentKindPhoto
	case strings.HasPrefix(contentType, "video/"):
		return AttachmentKindVideo
	case strings.HasPrefix(contentType, "audio/"):
		return AttachmentKindAudio
	default:
		return AttachmentKindDocument
	}
}

type Attachment struct {
	URL         string         `json:"url"`
	Kind        AttachmentKind `json:"kind"`
	Filename    string         `json:"filename,omitempty"`
	ContentType string         `json:"content_type,omitempty"`
}

// Event is a Discord message event reduced to what the relay needs.
// Delete events carry only SourceID and ChannelID.
type Event struct {
	Kind        EventKind
	SourceID    string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	Text        string
	Attachments []Attachment
	Timestamp   time.Time
}

// HasContent reports whether the event carries text or attachments.
func (e Event) HasContent() bool {
	return e.Text != "" || len(e.Attachments) > 0
}

// Receipt identifies a message created on Telegram.
type Receipt struct {
	MessageID int
}

// MediaItem is one entry of a Telegram media group.
type MediaItem struct {
	URL     string
	Kind    AttachmentKind
	Caption string
}
