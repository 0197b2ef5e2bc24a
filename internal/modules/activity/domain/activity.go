package domain

import "time"

// Activity is one entry of the relay journal.
type Activity struct {
	Kind       Kind      `json:"kind"`
	SourceID   string    `json:"source_id"`
	ChannelID  string    `json:"channel_id"`
	ChatID     int64     `json:"chat_id"`
	ThreadID   int       `json:"thread_id,omitempty"`
	Author     string    `json:"author,omitempty"`
	Preview    string    `json:"preview,omitempty"`
	MessageIDs []int     `json:"message_ids,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
