package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	diagnosticsDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/diagnostics/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// maxMediaGroup is the largest media group Telegram accepts.
const maxMediaGroup = 10

// probeText is sent and deleted again to check thread access.
const probeText = "Проверка доступа к треду"

// Client delivers relayed messages through the Telegram Bot API.
type Client struct {
	bot *bot.Bot
}

// NewClient wraps an initialized bot
func NewClient(b *bot.Bot) *Client {
	return &Client{bot: b}
}

// SendText sends a Markdown message.
func (c *Client) SendText(ctx context.Context, chatID int64, threadID int, text string) (domain.Receipt, error) {
	msg, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            text,
		ParseMode:       models.ParseModeMarkdownV1,
	})
	if err != nil {
		return domain.Receipt{}, oops.In("telegram").With("method", "sendMessage", "chat_id", chatID, "thread_id", threadID).Wrap(err)
	}
	return domain.Receipt{MessageID: msg.ID}, nil
}

// SendMediaGroup sends attachments as grouped media. Groups larger than
// Telegram allows are split; a group of one is sent as a single media message.
func (c *Client) SendMediaGroup(ctx context.Context, chatID int64, threadID int, items []domain.MediaItem) ([]domain.Receipt, error) {
	var receipts []domain.Receipt

	for _, chunk := range lo.Chunk(GroupableItems(items), maxMediaGroup) {
		if len(chunk) == 1 {
			receipt, err := c.sendSingle(ctx, chatID, threadID, chunk[0])
			if err != nil {
				return nil, err
			}
			receipts = append(receipts, receipt)
			continue
		}

		msgs, err := c.bot.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
			ChatID:          chatID,
			MessageThreadID: threadID,
			Media:           InputMedia(chunk),
		})
		if err != nil {
			return nil, oops.In("telegram").With("method", "sendMediaGroup", "chat_id", chatID, "thread_id", threadID, "items", len(chunk)).Wrap(err)
		}
		for _, msg := range msgs {
			receipts = append(receipts, domain.Receipt{MessageID: msg.ID})
		}
	}

	return receipts, nil
}

func (c *Client) sendSingle(ctx context.Context, chatID int64, threadID int, item domain.MediaItem) (domain.Receipt, error) {
	file := &models.InputFileString{Data: item.URL}

	var msg *models.Message
	var err error
	switch item.Kind {
	case domain.AttachmentKindVideo:
		msg, err = c.bot.SendVideo(ctx, &bot.SendVideoParams{
			ChatID: chatID, MessageThreadID: threadID, Video: file, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1,
		})
	case domain.AttachmentKindAudio:
		msg, err = c.bot.SendAudio(ctx, &bot.SendAudioParams{
			ChatID: chatID, MessageThreadID: threadID, Audio: file, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1,
		})
	case domain.AttachmentKindDocument:
		msg, err = c.bot.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID: chatID, MessageThreadID: threadID, Document: file, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1,
		})
	default:
		msg, err = c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID, MessageThreadID: threadID, Photo: file, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1,
		})
	}
	if err != nil {
		return domain.Receipt{}, oops.In("telegram").With("method", "send_"+string(item.Kind), "chat_id", chatID, "thread_id", threadID).Wrap(err)
	}
	return domain.Receipt{MessageID: msg.ID}, nil
}

// DeleteMessage deletes one message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ok, err := c.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return oops.In("telegram").With("method", "deleteMessage", "chat_id", chatID, "message_id", messageID).Wrap(err)
	}
	if !ok {
		return oops.In("telegram").With("chat_id", chatID, "message_id", messageID).Errorf("message was not deleted")
	}
	return nil
}

// ChatInfo returns the chat's title and type.
func (c *Client) ChatInfo(ctx context.Context, chatID int64) (diagnosticsDomain.ChatInfo, error) {
	chat, err := c.bot.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return diagnosticsDomain.ChatInfo{}, oops.In("telegram").With("method", "getChat", "chat_id", chatID).Wrap(err)
	}
	return diagnosticsDomain.ChatInfo{Title: chat.Title, Type: string(chat.Type)}, nil
}

// ProbeThread checks that the bot can post into a forum thread by sending a
// silent message and deleting it again.
func (c *Client) ProbeThread(ctx context.Context, chatID int64, threadID int) error {
	msg, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:              chatID,
		MessageThreadID:     threadID,
		Text:                probeText,
		DisableNotification: true,
	})
	if err != nil {
		return oops.In("telegram").With("method", "sendMessage", "chat_id", chatID, "thread_id", threadID).Wrap(err)
	}
	return c.DeleteMessage(ctx, chatID, msg.ID)
}

// GroupableItems returns items Telegram can send as one media group. Photos
// and videos mix, audio groups only with audio; anything else is sent as
// documents.
func GroupableItems(items []domain.MediaItem) []domain.MediaItem {
	visual := lo.EveryBy(items, func(item domain.MediaItem) bool {
		return item.Kind == domain.AttachmentKindPhoto || item.Kind == domain.AttachmentKindVideo
	})
	audio := lo.EveryBy(items, func(item domain.MediaItem) bool {
		return item.Kind == domain.AttachmentKindAudio
	})
	if visual || audio {
		return items
	}

	return lo.Map(items, func(item domain.MediaItem, _ int) domain.MediaItem {
		item.Kind = domain.AttachmentKindDocument
		return item
	})
}

// InputMedia converts items to Bot API media group entries.
func InputMedia(items []domain.MediaItem) []models.InputMedia {
	return lo.Map(items, func(item domain.MediaItem, _ int) models.InputMedia {
		switch item.Kind {
		case domain.AttachmentKindVideo:
			return &models.InputMediaVideo{Media: item.URL, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1}
		case domain.AttachmentKindAudio:
			return &models.InputMediaAudio{Media: item.URL, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1}
		case domain.AttachmentKindDocument:
			return &models.InputMediaDocument{Media: item.URL, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1}
		default:
			return &models.InputMediaPhoto{Media: item.URL, Caption: item.Caption, ParseMode: models.ParseModeMarkdownV1}
		}
	})
}
