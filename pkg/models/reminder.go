package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ReminderStatusPending = "pending"
	ReminderStatusDone    = "done"
	ReminderStatusSkipped = "skipped"
)

type Reminder struct {
	bun.BaseModel `bun:"table:reminders,alias:r"`

	ID               int        `bun:",pk,nullzero" json:"id"`
	BookID           int        `bun:",nullzero" json:"book_id"`
	Book             *Book      `bun:"rel:belongs-to" json:"book,omitempty"`
	Date             string     `bun:",nullzero" json:"date"`
	FromPage         int        `bun:",nullzero" json:"from_page"`
	ToPage           int        `bun:",nullzero" json:"to_page"`
	PagesPlanned     int        `bun:",nullzero" json:"pages_planned"`
	Status           string     `bun:",nullzero" json:"status"`
	ChannelMessageID *int64     `json:"channel_message_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	DoneAt           *time.Time `json:"done_at"`
}

// Delivered reports whether the reminder has an associated channel message. A
// pending reminder without one is treated as never delivered and is eligible
// for (re)delivery.
func (r *Reminder) Delivered() bool {
	return r.ChannelMessageID != nil
}
