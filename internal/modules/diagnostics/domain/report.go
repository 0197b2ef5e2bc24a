package domain

import (
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
)

// ChannelAccess describes what the bot can do in a Discord channel.
type ChannelAccess struct {
	Name        string
	GuildID     string
	Permissions map[string]bool
	Missing     []string
}

// ChatInfo describes a Telegram chat.
type ChatInfo struct {
	Title string
	Type  string
}

// PairingReport is the outcome of the access check of one pairing.
type PairingReport struct {
	Pairing pairingDomain.Pairing

	Discord    ChannelAccess
	DiscordErr error

	Telegram    ChatInfo
	TelegramErr error

	ThreadChecked bool
	ThreadErr     error
}

// OK reports whether every check passed and no permission is missing.
func (r PairingReport) OK() bool {
	return r.DiscordErr == nil && r.TelegramErr == nil && r.ThreadErr == nil && len(r.Discord.Missing) == 0
}
