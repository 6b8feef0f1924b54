// Package notify posts reminder and book lifecycle messages to the delivery
// channel. The rest of the system only sees the Notifier interface; state is
// committed before anything is sent, so a failed send is retried by a later
// tick rather than rolled back.
package notify

import (
	"context"

	"github.com/readloop/readloop/pkg/models"
)

type Notifier interface {
	// DeliverReminder posts the reminder message and returns its message id.
	DeliverReminder(ctx context.Context, channelID int64, book *models.Book, reminder *models.Reminder) (int64, error)
	// PostHeader posts the book header message and returns its message id.
	PostHeader(ctx context.Context, channelID int64, book *models.Book) (int64, error)
	// EditHeader rewrites an existing header message in place.
	EditHeader(ctx context.Context, channelID, messageID int64, book *models.Book) error
	// PostCompletion announces a finished book.
	PostCompletion(ctx context.Context, channelID int64, book *models.Book) error
	// DeleteMessage removes a previously posted message.
	DeleteMessage(ctx context.Context, channelID, messageID int64) error
}

// Noop is used when no bot token is configured. Every delivery "succeeds" with
// a zero message id, which the scheduler treats as not delivered, so reminders
// stay eligible for delivery once a real notifier is configured.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) DeliverReminder(_ context.Context, _ int64, _ *models.Book, _ *models.Reminder) (int64, error) {
	return 0, nil
}

func (n *Noop) PostHeader(_ context.Context, _ int64, _ *models.Book) (int64, error) {
	return 0, nil
}

func (n *Noop) EditHeader(_ context.Context, _, _ int64, _ *models.Book) error {
	return nil
}

func (n *Noop) PostCompletion(_ context.Context, _ int64, _ *models.Book) error {
	return nil
}

func (n *Noop) DeleteMessage(_ context.Context, _, _ int64) error {
	return nil
}
