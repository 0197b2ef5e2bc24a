package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Handler logs Telegram messages that mention the bot
type Handler struct {
	username string
	ack      bool
	logger   *slog.Logger
}

// NewHandler creates a new mention handler. When ack is set every mention is
// answered in the same thread.
func NewHandler(ack bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		ack:    ack,
		logger: logger,
	}
}

// SetUsername sets the bot's own username, as returned by getMe.
func (h *Handler) SetUsername(username string) {
	h.username = strings.ToLower(strings.TrimPrefix(username, "@"))
	h.logger.Info("Telegram bot started listening", "username", "@"+h.username)
}

// HandleUpdate processes incoming updates
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || h.username == "" || !Mentions(msg, h.username) {
		return
	}

	user := slog.Group("user")
	if msg.From != nil {
		user = slog.Group("user",
			"id", msg.From.ID,
			"username", msg.From.Username,
			"first_name", msg.From.FirstName,
			"last_name", msg.From.LastName,
		)
	}
	h.logger.Info("Bot mention detected",
		user,
		slog.Group("chat",
			"id", msg.Chat.ID,
			"type", msg.Chat.Type,
			"title", msg.Chat.Title,
			"thread_id", msg.MessageThreadID,
		),
		slog.Group("message",
			"id", msg.ID,
			"text", msg.Text,
			"date", time.Unix(int64(msg.Date), 0),
		),
	)

	if !h.ack {
		return
	}
	if _, err := b.SendMessage(ctx, AckParams(msg)); err != nil {
		h.logger.Error("Failed to acknowledge mention", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}

// AckParams builds the reply to a mention.
func AckParams(msg *models.Message) *bot.SendMessageParams {
	return &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		MessageThreadID: msg.MessageThreadID,
		Text:            fmt.Sprintf("Упоминание зарегистрировано [%d]", msg.ID),
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	}
}

// Mentions reports whether the message text mentions @username. Entity
// offsets are counted in UTF-16 code units.
func Mentions(msg *models.Message, username string) bool {
	if msg.Text == "" || len(msg.Entities) == 0 {
		return false
	}

	target := "@" + strings.ToLower(username)
	text := utf16.Encode([]rune(msg.Text))
	for _, e := range msg.Entities {
		if e.Type != models.MessageEntityTypeMention {
			continue
		}
		if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > len(text) {
			continue
		}
		mention := string(utf16.Decode(text[e.Offset : e.Offset+e.Length]))
		if strings.ToLower(mention) == target {
			return true
		}
	}
	return false
}
