// Package service checks at startup that the bots can reach every paired
// channel and chat.
package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/diagnostics/domain"
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
)

type DiscordChannels interface {
	ChannelAccess(ctx context.Context, channelID string) (domain.ChannelAccess, error)
}

type TelegramChats interface {
	ChatInfo(ctx context.Context, chatID int64) (domain.ChatInfo, error)
	ProbeThread(ctx context.Context, chatID int64, threadID int) error
}

// Checker reports access problems. Findings are logged, never fatal.
type Checker struct {
	discord  DiscordChannels
	telegram TelegramChats
	logger   *slog.Logger
}

// New creates a new access checker
func New(discord DiscordChannels, telegram TelegramChats, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		discord:  discord,
		telegram: telegram,
		logger:   logger,
	}
}

// Check verifies every pairing in order.
func (c *Checker) Check(ctx context.Context, pairings []pairingDomain.Pairing) []domain.PairingReport {
	reports := make([]domain.PairingReport, 0, len(pairings))
	for _, p := range pairings {
		if ctx.Err() != nil {
			break
		}
		report := c.checkPairing(ctx, p)
		c.log(report)
		reports = append(reports, report)
	}
	return reports
}

func (c *Checker) checkPairing(ctx context.Context, p pairingDomain.Pairing) domain.PairingReport {
	report := domain.PairingReport{Pairing: p}

	report.Discord, report.DiscordErr = c.discord.ChannelAccess(ctx, p.SourceChannelID)
	report.Telegram, report.TelegramErr = c.telegram.ChatInfo(ctx, p.DestinationChatID)

	if p.HasThread() && report.TelegramErr == nil {
		report.ThreadChecked = true
		report.ThreadErr = c.telegram.ProbeThread(ctx, p.DestinationChatID, p.DestinationThreadID)
	}
	return report
}

func (c *Checker) log(r domain.PairingReport) {
	attrs := []any{
		"discord_channel_id", r.Pairing.SourceChannelID,
		"telegram_chat_id", r.Pairing.DestinationChatID,
	}

	if r.DiscordErr != nil {
		c.logger.Error("Discord channel not accessible", append(attrs, "error", r.DiscordErr)...)
	} else {
		c.logger.Info("Discord channel accessible", append(attrs, "name", r.Discord.Name, "guild_id", r.Discord.GuildID)...)
		if len(r.Discord.Missing) > 0 {
			c.logger.Warn("Discord permissions missing", append(attrs, "missing", r.Discord.Missing)...)
		}
	}

	if r.TelegramErr != nil {
		c.logger.Error("Telegram chat not accessible", append(attrs, "error", r.TelegramErr)...)
	} else {
		c.logger.Info("Telegram chat accessible", append(attrs, "title", r.Telegram.Title, "type", r.Telegram.Type)...)
	}

	if r.ThreadChecked {
		if r.ThreadErr != nil {
			c.logger.Error("Telegram thread not accessible", append(attrs, "thread_id", r.Pairing.DestinationThreadID, "error", r.ThreadErr)...)
		} else {
			c.logger.Info("Telegram thread accessible", append(attrs, "thread_id", r.Pairing.DestinationThreadID)...)
		}
	}
}
