package domain

import "time"

// DeliveryRecord correlates one Discord message with the Telegram messages it
// produced. The first Telegram message is the primary one; any further media
// group items are auxiliary.
type DeliveryRecord struct {
	SourceID            string    `json:"source_id"`
	ChannelID           string    `json:"channel_id,omitempty"`
	PrimaryMessageID    int       `json:"primary_message_id"`
	AuxiliaryMessageIDs []int     `json:"auxiliary_message_ids,omitempty"`
	ChatID              int64     `json:"chat_id"`
	ThreadID            int       `json:"thread_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// MessageIDs returns the primary id followed by the auxiliary ids.
func (r *DeliveryRecord) MessageIDs() []int {
	ids := make([]int, 0, 1+len(r.AuxiliaryMessageIDs))
	ids = append(ids, r.PrimaryMessageID)
	return append(ids, r.AuxiliaryMessageIDs...)
}

// Clone returns a deep copy of the record.
func (r *DeliveryRecord) Clone() *DeliveryRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.AuxiliaryMessageIDs = append([]int(nil), r.AuxiliaryMessageIDs...)
	return &c
}
