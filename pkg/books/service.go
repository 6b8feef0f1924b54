package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/errcodes"
	"github.com/readloop/readloop/pkg/models"
	"github.com/readloop/readloop/pkg/reminders"
	"github.com/uptrace/bun"
)

type CreateBookOptions struct {
	Title      string
	Author     string
	TotalPages int
	StartPage  int
	StartDate  string
}

type RetrieveBookOptions struct {
	ID *int
}

type ListBooksOptions struct {
	Statuses []string
	Limit    *int
	Offset   *int
}

type Service struct {
	db              *bun.DB
	reminderService *reminders.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:              db,
		reminderService: reminders.NewService(db),
	}
}

func (svc *Service) CreateBook(ctx context.Context, opts CreateBookOptions) (*models.Book, error) {
	// start_date drives every due-range computation; an unparseable date
	// would leave the book permanently unschedulable.
	if _, err := time.Parse(models.DateLayout, opts.StartDate); err != nil {
		return nil, errcodes.ValidationError("start_date must be a valid calendar date in the format of YYYY-MM-DD")
	}

	book := &models.Book{
		Title:      opts.Title,
		Author:     opts.Author,
		TotalPages: opts.TotalPages,
		StartPage:  opts.StartPage,
		StartDate:  opts.StartDate,
		Status:     models.BookStatusActive,
		// The page before the first page to read, so the first due range
		// starts exactly at start_page.
		LastReadPage: opts.StartPage - 1,
		CreatedAt:    time.Now(),
	}

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id DESC")

	if opts.Statuses != nil {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, s := range opts.Statuses {
				sq = sq.WhereOr("b.status = ?", s)
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

	return books, nil
}

// ListActiveBooks returns the books the scheduler should materialize
// reminders for.
func (svc *Service) ListActiveBooks(ctx context.Context) ([]*models.Book, error) {
	return svc.ListBooks(ctx, ListBooksOptions{Statuses: []string{models.BookStatusActive}})
}

// DeleteBook removes the book; its reminders go with it via the cascade.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// SetHeaderMessage records the channel header post for the book.
func (svc *Service) SetHeaderMessage(ctx context.Context, id int, messageID int64) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("header_message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// Pause freezes reminder generation for the book. Today's pending reminder, if
// any, is left alone.
func (svc *Service) Pause(ctx context.Context, id int) (*models.Book, error) {
	return svc.transitionStatus(ctx, id, models.BookStatusActive, models.BookStatusPaused)
}

// Resume reactivates a paused book. Paused days don't accumulate page debt:
// the next tick computes the due range from the current progress and date.
func (svc *Service) Resume(ctx context.Context, id int) (*models.Book, error) {
	return svc.transitionStatus(ctx, id, models.BookStatusPaused, models.BookStatusActive)
}

func (svc *Service) transitionStatus(ctx context.Context, id int, from, to string) (*models.Book, error) {
	res, err := svc.db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("status = ?", to).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if affected == 0 {
		return nil, errcodes.InvalidTransition("Book is " + book.Status + ", not " + from + ".")
	}

	return book, nil
}

// Finish marks the book finished. It is idempotent: the conditional update
// makes a second call a no-op that returns the already-finished book, since
// both a confirmation and a reconciliation pass may race to finish the same
// book. The returned bool is true only for the call that performed the
// transition, so only that caller announces the completion.
func (svc *Service) Finish(ctx context.Context, id int, finishDate string) (*models.Book, bool, error) {
	now := time.Now()

	res, err := svc.db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("status = ?", models.BookStatusFinished).
		Set("finished_at = ?", now).
		Set("last_read_date = ?", finishDate).
		Set("last_read_page = total_pages").
		Where("id = ?", id).
		Where("status != ?", models.BookStatusFinished).
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	return book, affected > 0, nil
}

// ConfirmResult is the outcome of a confirmation. Finished is true only when
// this confirmation performed the finish transition, so callers announce a
// completion exactly once.
type ConfirmResult struct {
	Book     *models.Book
	Reminder *models.Reminder
	Finished bool
}

// ConfirmRead applies the reminder as read exactly as planned. The reminder
// transition goes through the ledger first; only the winner of that
// conditional update advances the book, so progress is applied at most once
// per reminder.
func (svc *Service) ConfirmRead(ctx context.Context, reminderID int) (*ConfirmResult, error) {
	reminder, err := svc.reminderService.RetrieveReminder(ctx, reminders.RetrieveReminderOptions{ID: &reminderID})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	reminder, err = svc.reminderService.MarkDone(ctx, reminder.ID, reminders.MarkDoneOptions{})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	book, finished, err := svc.advanceProgress(ctx, reminder.BookID, reminder.ToPage, reminder.Date)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &ConfirmResult{Book: book, Reminder: reminder, Finished: finished}, nil
}

// ConfirmCustomRead applies the reminder with the range the reader actually
// read. The confirmed end page can exceed the plan (it is clamped to the
// book), but it can never precede the reminder's start: pages can't be unread.
func (svc *Service) ConfirmCustomRead(ctx context.Context, reminderID, fromPage, toPage int) (*ConfirmResult, error) {
	reminder, err := svc.reminderService.RetrieveReminder(ctx, reminders.RetrieveReminderOptions{ID: &reminderID})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &reminder.BookID})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if fromPage > toPage {
		return nil, errcodes.InvalidRange("from_page can't be greater than to_page.")
	}
	if toPage < reminder.FromPage {
		return nil, errcodes.InvalidRange("to_page can't precede the reminder's range.")
	}
	if toPage > book.TotalPages {
		toPage = book.TotalPages
	}

	reminder, err = svc.reminderService.MarkDone(ctx, reminder.ID, reminders.MarkDoneOptions{
		FromPage: &fromPage,
		ToPage:   &toPage,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	book, finished, err := svc.advanceProgress(ctx, reminder.BookID, toPage, reminder.Date)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &ConfirmResult{Book: book, Reminder: reminder, Finished: finished}, nil
}

// advanceProgress moves last_read_page forward, never backward. The MAX is
// evaluated in the store so concurrent confirmations can't regress progress
// regardless of ordering.
func (svc *Service) advanceProgress(ctx context.Context, bookID, toPage int, date string) (*models.Book, bool, error) {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("last_read_page = MAX(last_read_page, ?)", toPage).
		Set("last_read_date = ?", date).
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	book, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	finished := false
	if book.FullyRead() && book.Status != models.BookStatusFinished {
		book, finished, err = svc.Finish(ctx, book.ID, date)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
	}

	return book, finished, nil
}
