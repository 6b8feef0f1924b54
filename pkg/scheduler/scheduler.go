// Package scheduler materializes and delivers the daily reminders. A tick is
// safe to run any number of times for the same date: dedup happens in the
// reminder ledger, and delivery only touches pending reminders that have no
// channel message yet.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/books"
	"github.com/readloop/readloop/pkg/config"
	"github.com/readloop/readloop/pkg/models"
	"github.com/readloop/readloop/pkg/notify"
	"github.com/readloop/readloop/pkg/pace"
	"github.com/readloop/readloop/pkg/reminders"
	"github.com/readloop/readloop/pkg/settings"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type Scheduler struct {
	config *config.Config
	log    logger.Logger
	clock  Clock

	bookService     *books.Service
	reminderService *reminders.Service
	settingsService *settings.Service
	notifier        notify.Notifier

	lastRunDate string

	shutdown chan struct{}
	done     chan struct{}
}

func New(cfg *config.Config, db *bun.DB, notifier notify.Notifier, clock Clock) *Scheduler {
	return &Scheduler{
		config: cfg,
		log:    logger.New(),
		clock:  clock,

		bookService:     books.NewService(db),
		reminderService: reminders.NewService(db),
		settingsService: settings.NewService(db),
		notifier:        notifier,

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) Shutdown() {
	close(s.shutdown)
	<-s.done
}

func (s *Scheduler) run() {
	// A restart must not lose reminders: re-run today immediately. Anything
	// already materialized or delivered is skipped, anything missed while
	// down is created and sent now.
	s.tick(true)

	duration := s.config.Scheduler.TickInterval()
	if duration <= 0 {
		duration = time.Minute
	}
	timer := time.NewTimer(duration)

	for {
		select {
		case <-s.shutdown:
			s.done <- struct{}{}
			return
		case <-timer.C:
			s.tick(false)
			timer.Reset(duration)
		}
	}
}

// tick runs today's pass when the configured reminder time has been reached
// and today hasn't run yet. The startup tick ignores the time of day so a
// restart after the reminder time still delivers.
func (s *Scheduler) tick(startup bool) {
	id, err := uuid.NewRandom()
	if err != nil {
		s.log.Err(err).Error("new uuid error")
		return
	}
	log := s.log.ID(id.String())
	ctx := log.WithContext(context.Background())

	now := s.clock.Now()
	today := now.Format(models.DateLayout)

	if !startup {
		hour, minute, err := s.settingsService.ReminderTime(ctx)
		if err != nil {
			log.Err(err).Error("reminder time error")
			return
		}
		due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.Before(due) || s.lastRunDate == today {
			return
		}
	}

	if startup {
		if err := s.Reconcile(ctx, today); err != nil {
			log.Err(err).Error("reconcile error")
		}
	}

	if err := s.RunForDate(ctx, now); err != nil {
		log.Err(err).Error("run error")
		return
	}

	s.lastRunDate = today
}

// RunForDate materializes and delivers reminders for every active book as of
// the given time. It is exposed so a manual trigger can run the same pass the
// timer does.
func (s *Scheduler) RunForDate(ctx context.Context, asOf time.Time) error {
	log := logger.FromContext(ctx)

	channelID, err := s.settingsService.ChannelID(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if channelID == 0 {
		log.Warn("skipping reminders: channel_id is not configured")
		return nil
	}

	plan, err := s.settingsService.PacePlan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	activeBooks, err := s.bookService.ListActiveBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	date := asOf.Format(models.DateLayout)
	log.Info("running reminders", logger.Data{"date": date, "active_books": len(activeBooks)})

	for _, book := range activeBooks {
		if err := s.processBook(ctx, book, asOf, channelID, plan); err != nil {
			log.Err(err).Error("process book error")
		}
	}

	return nil
}

func (s *Scheduler) processBook(ctx context.Context, book *models.Book, asOf time.Time, channelID int64, plan pace.Plan) error {
	log := logger.FromContext(ctx)
	date := asOf.Format(models.DateLayout)

	if date < book.StartDate {
		return nil
	}

	due, ok, err := pace.DueRange(book, asOf, plan)
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return s.finishBook(ctx, book, date, channelID)
	}

	reminder, created, err := s.reminderService.EnsureReminder(ctx, reminders.EnsureReminderOptions{
		BookID:       book.ID,
		Date:         date,
		FromPage:     due.FromPage,
		ToPage:       due.ToPage,
		PagesPlanned: due.PagesPlanned,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if created {
		log.Info("materialized reminder", logger.Data{"book_id": book.ID, "reminder_id": reminder.ID, "date": date})
	}

	return s.deliver(ctx, book, reminder, channelID)
}

// deliver posts a pending, undelivered reminder and records the message id.
// A send failure leaves the reminder undelivered so the next tick retries;
// a crash between send and record means the next tick posts a duplicate,
// which is the accepted at-least-once window.
func (s *Scheduler) deliver(ctx context.Context, book *models.Book, reminder *models.Reminder, channelID int64) error {
	log := logger.FromContext(ctx)

	if reminder.Status != models.ReminderStatusPending || reminder.Delivered() {
		return nil
	}

	messageID, err := s.notifier.DeliverReminder(ctx, channelID, book, reminder)
	if err != nil {
		return errors.WithStack(err)
	}
	if messageID == 0 {
		return nil
	}

	if err := s.reminderService.SetChannelMessage(ctx, reminder.ID, messageID); err != nil {
		return errors.WithStack(err)
	}

	log.Info("posted reminder", logger.Data{"book_id": book.ID, "reminder_id": reminder.ID, "message_id": messageID})
	return nil
}

func (s *Scheduler) finishBook(ctx context.Context, book *models.Book, date string, channelID int64) error {
	log := logger.FromContext(ctx)

	finished, changed, err := s.bookService.Finish(ctx, book.ID, date)
	if err != nil {
		return errors.WithStack(err)
	}
	if !changed {
		return nil
	}

	log.Info("finished book", logger.Data{"book_id": book.ID, "date": date})

	if finished.HeaderMessageID != nil {
		if err := s.notifier.EditHeader(ctx, channelID, *finished.HeaderMessageID, finished); err != nil {
			log.Warn("failed to edit header", logger.Data{"book_id": book.ID, "error": err.Error()})
		}
	}
	if err := s.notifier.PostCompletion(ctx, channelID, finished); err != nil {
		log.Warn("failed to post completion", logger.Data{"book_id": book.ID, "error": err.Error()})
	}

	return nil
}

// Reconcile re-attempts delivery of pending reminders dated on or before the
// given date that never got a channel message. This covers crashes that
// happened after the ledger write but before the send.
func (s *Scheduler) Reconcile(ctx context.Context, onOrBefore string) error {
	log := logger.FromContext(ctx)

	channelID, err := s.settingsService.ChannelID(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if channelID == 0 {
		return nil
	}

	undelivered, err := s.reminderService.ListPendingUndelivered(ctx, onOrBefore)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(undelivered) == 0 {
		return nil
	}

	log.Info("reconciling undelivered reminders", logger.Data{"count": len(undelivered)})

	for _, reminder := range undelivered {
		if reminder.Book == nil {
			log.Warn("skipping reminder without a book", logger.Data{"reminder_id": reminder.ID})
			continue
		}
		if err := s.deliver(ctx, reminder.Book, reminder, channelID); err != nil {
			log.Err(err).Error("reconcile delivery error")
		}
	}

	return nil
}
