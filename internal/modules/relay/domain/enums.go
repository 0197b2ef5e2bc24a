//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// EventKind identifies what happened to a Discord message. Ready is emitted
// once the Discord session is connected.
// ENUM(created,updated,deleted,ready)
type EventKind string

// AttachmentKind selects the Telegram media type used for an attachment.
// ENUM(photo,video,audio,document)
type AttachmentKind string
