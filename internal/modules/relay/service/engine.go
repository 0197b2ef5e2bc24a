// Package service propagates Discord message events to Telegram.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	activityDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/domain"
	deliveryDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/domain"
	deliveryRepo "github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/repository"
	pairingDomain "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	pairingService "github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/service"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/relay/policy"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/markdown"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// Destination is the Telegram side of the relay. A zero threadID means the
// chat's main thread.
type Destination interface {
	SendText(ctx context.Context, chatID int64, threadID int, text string) (domain.Receipt, error)
	SendMediaGroup(ctx context.Context, chatID int64, threadID int, items []domain.MediaItem) ([]domain.Receipt, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Journal receives the outcome of every relay operation.
type Journal interface {
	Record(ctx context.Context, activity activityDomain.Activity)
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, activityDomain.Activity) {}

// Engine relays creates, updates and deletes and keeps the correlation between
// Discord and Telegram messages. Operations on the same source id never
// overlap.
type Engine struct {
	pairings *pairingService.Table
	records  deliveryRepo.Repository
	policy   *policy.Policy
	dest     Destination
	journal  Journal
	locks    *keyedMutex
	logger   *slog.Logger
}

// New creates a new relay engine. journal and logger may be nil.
func New(pairings *pairingService.Table, records deliveryRepo.Repository, dest Destination, journal Journal, logger *slog.Logger) *Engine {
	if journal == nil {
		journal = nopJournal{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pairings: pairings,
		records:  records,
		policy:   policy.New(pairings, records, logger),
		dest:     dest,
		journal:  journal,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// FormatText renders the Telegram text for a Discord message.
func FormatText(author, text string) string {
	return fmt.Sprintf("%s:\n%s", author, text)
}

// Pairings returns the configured channel pairings.
func (e *Engine) Pairings() []pairingDomain.Pairing {
	return e.pairings.All()
}

// Lookup returns the delivery record of a Discord message, if any.
func (e *Engine) Lookup(ctx context.Context, sourceID string) (*deliveryDomain.DeliveryRecord, bool) {
	record, err := e.records.Get(ctx, sourceID)
	if err != nil {
		if !errors.Is(err, errors.ErrRecordNotFound) {
			e.logger.Warn("Failed to read delivery record", "source_id", sourceID, "error", err)
		}
		return nil, false
	}
	return record, true
}

// Deliveries returns the number of stored delivery records.
func (e *Engine) Deliveries(ctx context.Context) (int, error) {
	count, err := e.records.Count(ctx)
	if err != nil {
		return 0, oops.In("relay").Wrap(err)
	}
	return count, nil
}

// Admit reports whether the relay policy accepts the event.
func (e *Engine) Admit(ctx context.Context, event domain.Event) bool {
	return e.policy.Admit(ctx, event)
}

// RelayCreate sends a new Discord message to its paired chat and stores the
// resulting delivery record. It returns nil, nil when the event is not
// admitted.
func (e *Engine) RelayCreate(ctx context.Context, event domain.Event) (*deliveryDomain.DeliveryRecord, error) {
	unlock := e.locks.Lock(event.SourceID)
	defer unlock()

	if !e.policy.AdmitCreate(ctx, event) {
		e.logger.Debug("Create rejected by policy", "source_id", event.SourceID, "channel_id", event.ChannelID)
		return nil, nil
	}

	record, err := e.send(ctx, event)
	if err != nil {
		e.journalFailure(ctx, event, err)
		return nil, err
	}
	if record != nil {
		e.journal.Record(ctx, e.activity(activityDomain.KindCreated, event, record))
	}
	return record, nil
}

// RelayUpdate replaces the Telegram messages of an edited Discord message by
// deleting them and relaying the new content. Unknown messages are ignored.
func (e *Engine) RelayUpdate(ctx context.Context, event domain.Event) error {
	if !e.policy.AdmitContent(event) {
		e.logger.Debug("Update rejected by policy", "source_id", event.SourceID, "channel_id", event.ChannelID)
		return nil
	}

	unlock := e.locks.Lock(event.SourceID)
	defer unlock()

	old, err := e.records.Get(ctx, event.SourceID)
	if err != nil {
		if errors.Is(err, errors.ErrRecordNotFound) {
			e.logger.Debug("Update for unrelayed message ignored", "source_id", event.SourceID)
			return nil
		}
		return oops.In("relay").With("source_id", event.SourceID).Wrap(err)
	}

	// The recreate runs even when the primary delete failed; both errors surface.
	deleteErr := e.delete(ctx, old)
	record, createErr := e.send(ctx, event)
	if createErr != nil {
		e.journalFailure(ctx, event, createErr)
	} else if record != nil {
		e.journal.Record(ctx, e.activity(activityDomain.KindUpdated, event, record))
	}

	return errors.Join(deleteErr, createErr)
}

// RelayDelete removes the Telegram messages of a Discord message. The record is
// dropped even when a delete call fails; only the primary failure is returned.
func (e *Engine) RelayDelete(ctx context.Context, sourceID string) error {
	unlock := e.locks.Lock(sourceID)
	defer unlock()

	record, err := e.records.Get(ctx, sourceID)
	if err != nil {
		if errors.Is(err, errors.ErrRecordNotFound) {
			e.logger.Debug("Delete for unrelayed message ignored", "source_id", sourceID)
			return nil
		}
		return oops.In("relay").With("source_id", sourceID).Wrap(err)
	}

	err = e.delete(ctx, record)

	activity := activityDomain.Activity{
		Kind:       activityDomain.KindDeleted,
		SourceID:   sourceID,
		ChannelID:  record.ChannelID,
		ChatID:     record.ChatID,
		ThreadID:   record.ThreadID,
		MessageIDs: record.MessageIDs(),
	}
	if err != nil {
		activity.Error = err.Error()
	}
	e.journal.Record(ctx, activity)

	return err
}

// send delivers the event to Telegram and stores the record. The caller holds
// the lock for event.SourceID.
func (e *Engine) send(ctx context.Context, event domain.Event) (*deliveryDomain.DeliveryRecord, error) {
	pairing, ok := e.pairings.Lookup(event.ChannelID)
	if !ok {
		e.logger.Error("No pairing for admitted event", "source_id", event.SourceID, "channel_id", event.ChannelID, "error", errors.ErrPairingNotFound)
		return nil, nil
	}

	text := FormatText(event.AuthorName, event.Text)

	var receipts []domain.Receipt
	var err error
	if len(event.Attachments) > 0 {
		receipts, err = e.dest.SendMediaGroup(ctx, pairing.DestinationChatID, pairing.DestinationThreadID, MediaItems(event.Attachments, text))
	} else {
		var receipt domain.Receipt
		receipt, err = e.dest.SendText(ctx, pairing.DestinationChatID, pairing.DestinationThreadID, markdown.Message(text))
		receipts = []domain.Receipt{receipt}
	}
	if err == nil && len(receipts) == 0 {
		err = errors.ErrEmptyReceipt
	}
	if err != nil {
		e.logger.Error("Failed to relay message",
			"source_id", event.SourceID,
			"channel_id", event.ChannelID,
			"chat_id", pairing.DestinationChatID,
			"error", err,
		)
		return nil, oops.In("relay").Code("destination_call_failed").
			With("source_id", event.SourceID, "channel_id", event.ChannelID, "chat_id", pairing.DestinationChatID).
			Wrap(fmt.Errorf("%w: %w", errors.ErrDestinationCall, err))
	}

	ids := lo.Map(receipts, func(r domain.Receipt, _ int) int { return r.MessageID })
	record := &deliveryDomain.DeliveryRecord{
		SourceID:            event.SourceID,
		ChannelID:           event.ChannelID,
		PrimaryMessageID:    ids[0],
		AuxiliaryMessageIDs: ids[1:],
		ChatID:              pairing.DestinationChatID,
		ThreadID:            pairing.DestinationThreadID,
		CreatedAt:           time.Now(),
	}
	if err := e.records.Put(ctx, record); err != nil {
		return nil, oops.In("relay").With("source_id", event.SourceID, "message_ids", ids).Wrap(err)
	}

	e.logger.Info("Message relayed",
		"source_id", event.SourceID,
		"channel_id", event.ChannelID,
		"chat_id", pairing.DestinationChatID,
		"thread_id", pairing.DestinationThreadID,
		"message_ids", ids,
	)
	return record, nil
}

// delete issues all deletes of a record concurrently and then drops the record.
// The caller holds the lock for record.SourceID.
func (e *Engine) delete(ctx context.Context, record *deliveryDomain.DeliveryRecord) error {
	var g errgroup.Group

	g.Go(func() error {
		if err := e.dest.DeleteMessage(ctx, record.ChatID, record.PrimaryMessageID); err != nil {
			return oops.In("relay").Code("destination_call_failed").
				With("source_id", record.SourceID, "chat_id", record.ChatID, "message_id", record.PrimaryMessageID).
				Wrap(fmt.Errorf("%w: %w", errors.ErrDestinationCall, err))
		}
		return nil
	})
	for _, id := range record.AuxiliaryMessageIDs {
		g.Go(func() error {
			if err := e.dest.DeleteMessage(ctx, record.ChatID, id); err != nil {
				e.logger.Debug("Failed to delete auxiliary message", "source_id", record.SourceID, "chat_id", record.ChatID, "message_id", id, "error", err)
			}
			return nil
		})
	}
	deleteErr := g.Wait()
	if deleteErr != nil {
		e.logger.Error("Failed to delete relayed message", "source_id", record.SourceID, "chat_id", record.ChatID, "error", deleteErr)
	}

	if err := e.records.Delete(ctx, record.SourceID); err != nil {
		return errors.Join(deleteErr, oops.In("relay").With("source_id", record.SourceID).Wrap(err))
	}

	e.logger.Info("Relayed message deleted", "source_id", record.SourceID, "chat_id", record.ChatID, "message_ids", record.MessageIDs())
	return deleteErr
}

// MediaItems converts attachments into a media group; only the first item
// carries the caption.
func MediaItems(attachments []domain.Attachment, caption string) []domain.MediaItem {
	return lo.Map(attachments, func(a domain.Attachment, i int) domain.MediaItem {
		item := domain.MediaItem{URL: a.URL, Kind: a.Kind}
		if i == 0 {
			item.Caption = markdown.Caption(caption)
		}
		return item
	})
}

func (e *Engine) activity(kind activityDomain.Kind, event domain.Event, record *deliveryDomain.DeliveryRecord) activityDomain.Activity {
	return activityDomain.Activity{
		Kind:       kind,
		SourceID:   event.SourceID,
		ChannelID:  event.ChannelID,
		ChatID:     record.ChatID,
		ThreadID:   record.ThreadID,
		Author:     event.AuthorName,
		Preview:    event.Text,
		MessageIDs: record.MessageIDs(),
	}
}

func (e *Engine) journalFailure(ctx context.Context, event domain.Event, err error) {
	activity := activityDomain.Activity{
		Kind:      activityDomain.KindFailed,
		SourceID:  event.SourceID,
		ChannelID: event.ChannelID,
		Author:    event.AuthorName,
		Preview:   event.Text,
		Error:     err.Error(),
	}
	if pairing, ok := e.pairings.Lookup(event.ChannelID); ok {
		activity.ChatID = pairing.DestinationChatID
		activity.ThreadID = pairing.DestinationThreadID
	}
	e.journal.Record(ctx, activity)
}
