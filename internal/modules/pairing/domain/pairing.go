package domain

// Pairing links one Discord channel to one Telegram chat and, optionally, a
// forum thread inside it. A zero DestinationThreadID means no thread.
type Pairing struct {
	SourceChannelID     string `json:"discord_channel_id"`
	DestinationChatID   int64  `json:"telegram_chat_id"`
	DestinationThreadID int    `json:"telegram_thread_id,omitempty"`
}

// HasThread reports whether relayed messages go to a forum thread.
func (p Pairing) HasThread() bool {
	return p.DestinationThreadID != 0
}
