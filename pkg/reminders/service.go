package reminders

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/errcodes"
	"github.com/readloop/readloop/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveReminderOptions struct {
	ID          *int
	BookID      *int
	Date        *string
	IncludeBook bool
}

type ListRemindersOptions struct {
	BookID   *int
	Statuses []string
	Limit    *int
	Offset   *int
}

// EnsureReminderOptions carries the computed range for a (book, date) pair.
type EnsureReminderOptions struct {
	BookID       int
	Date         string
	FromPage     int
	ToPage       int
	PagesPlanned int
}

// MarkDoneOptions optionally overrides the stored range with the pages the
// reader actually confirmed.
type MarkDoneOptions struct {
	FromPage *int
	ToPage   *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// EnsureReminder materializes the reminder for (book_id, date), returning the
// existing row untouched when one is already there. The dedup happens in the
// store via the unique index, not in application memory, so overlapping ticks
// and post-restart re-runs can all call this safely. The returned bool is true
// only for the caller that actually inserted the row; that caller is the one
// responsible for delivery.
func (svc *Service) EnsureReminder(ctx context.Context, opts EnsureReminderOptions) (*models.Reminder, bool, error) {
	reminder := &models.Reminder{
		BookID:       opts.BookID,
		Date:         opts.Date,
		FromPage:     opts.FromPage,
		ToPage:       opts.ToPage,
		PagesPlanned: opts.PagesPlanned,
		Status:       models.ReminderStatusPending,
		CreatedAt:    time.Now(),
	}

	res, err := svc.db.
		NewInsert().
		Model(reminder).
		On("CONFLICT (book_id, date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	// Re-read either way: on conflict we need the existing row with its
	// current status and channel message, and on insert we want the
	// database's view of what we just wrote.
	existing, err := svc.RetrieveReminder(ctx, RetrieveReminderOptions{
		BookID: &opts.BookID,
		Date:   &opts.Date,
	})
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	return existing, inserted > 0, nil
}

func (svc *Service) RetrieveReminder(ctx context.Context, opts RetrieveReminderOptions) (*models.Reminder, error) {
	reminder := &models.Reminder{}

	q := svc.db.
		NewSelect().
		Model(reminder)

	if opts.ID != nil {
		q = q.Where("r.id = ?", *opts.ID)
	}
	if opts.BookID != nil {
		q = q.Where("r.book_id = ?", *opts.BookID)
	}
	if opts.Date != nil {
		q = q.Where("r.date = ?", *opts.Date)
	}
	if opts.IncludeBook {
		q = q.Relation("Book")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Reminder")
		}
		return nil, errors.WithStack(err)
	}

	return reminder, nil
}

func (svc *Service) ListReminders(ctx context.Context, opts ListRemindersOptions) ([]*models.Reminder, error) {
	reminders := []*models.Reminder{}

	q := svc.db.
		NewSelect().
		Model(&reminders).
		Order("r.date ASC", "r.id ASC")

	if opts.BookID != nil {
		q = q.Where("r.book_id = ?", *opts.BookID)
	}
	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("r.status = ?", s)
			}
			return sq
		})
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return reminders, nil
}

// ListPendingUndelivered returns pending reminders dated on or before the
// given date that have no channel message. These are the rows whose delivery
// is in doubt after a crash; everything else is either delivered or resolved.
func (svc *Service) ListPendingUndelivered(ctx context.Context, onOrBefore string) ([]*models.Reminder, error) {
	reminders := []*models.Reminder{}

	err := svc.db.
		NewSelect().
		Model(&reminders).
		Relation("Book").
		Where("r.status = ?", models.ReminderStatusPending).
		Where("r.channel_message_id IS NULL").
		Where("r.date <= ?", onOrBefore).
		Order("r.date ASC", "r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return reminders, nil
}

// MarkDone transitions a pending reminder to done. The status precondition is
// part of the UPDATE itself, so a concurrent confirmation of the same reminder
// loses cleanly with InvalidTransition instead of double-applying.
func (svc *Service) MarkDone(ctx context.Context, id int, opts MarkDoneOptions) (*models.Reminder, error) {
	now := time.Now()

	q := svc.db.
		NewUpdate().
		Model((*models.Reminder)(nil)).
		Set("status = ?", models.ReminderStatusDone).
		Set("done_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", models.ReminderStatusPending)

	if opts.FromPage != nil && opts.ToPage != nil {
		q = q.
			Set("from_page = ?", *opts.FromPage).
			Set("to_page = ?", *opts.ToPage)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.reloadAfterTransition(ctx, id, res)
}

// MarkSkipped transitions a pending reminder to skipped.
func (svc *Service) MarkSkipped(ctx context.Context, id int) (*models.Reminder, error) {
	res, err := svc.db.
		NewUpdate().
		Model((*models.Reminder)(nil)).
		Set("status = ?", models.ReminderStatusSkipped).
		Where("id = ?", id).
		Where("status = ?", models.ReminderStatusPending).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.reloadAfterTransition(ctx, id, res)
}

func (svc *Service) reloadAfterTransition(ctx context.Context, id int, res sql.Result) (*models.Reminder, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	reminder, err := svc.RetrieveReminder(ctx, RetrieveReminderOptions{ID: &id})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if affected == 0 {
		return nil, errcodes.InvalidTransition("Reminder is already " + reminder.Status + ".")
	}

	return reminder, nil
}

// SetChannelMessage records the delivered channel message id.
func (svc *Service) SetChannelMessage(ctx context.Context, id int, messageID int64) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Reminder)(nil)).
		Set("channel_message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// ClearChannelMessage drops the channel message reference after the delivered
// message has been deleted.
func (svc *Service) ClearChannelMessage(ctx context.Context, id int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Reminder)(nil)).
		Set("channel_message_id = NULL").
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}
