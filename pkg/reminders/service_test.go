package reminders

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/readloop/readloop/pkg/migrations"
	"github.com/readloop/readloop/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insertTestBook(t *testing.T, db *bun.DB) *models.Book {
	t.Helper()

	book := &models.Book{
		Title:      "Dune",
		Author:     "Frank Herbert",
		TotalPages: 200,
		StartPage:  1,
		StartDate:  "2026-01-16",
		Status:     models.BookStatusActive,
		CreatedAt:  time.Now(),
	}
	_, err := db.NewInsert().Model(book).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return book
}

func TestEnsureReminderCreates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	reminder, created, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, reminder.ID)
	assert.Equal(t, models.ReminderStatusPending, reminder.Status)
	assert.Nil(t, reminder.ChannelMessageID)
	assert.Nil(t, reminder.DoneAt)
}

func TestEnsureReminderIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	first, created, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)
	require.True(t, created)

	// A second ensure for the same day returns the existing row untouched,
	// even with a different computed range.
	second, created, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     5,
		ToPage:       20,
		PagesPlanned: 16,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, second.FromPage)
	assert.Equal(t, 10, second.ToPage)
}

func TestEnsureReminderResolvedStaysResolved(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	reminder, _, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)

	_, err = svc.MarkDone(ctx, reminder.ID, MarkDoneOptions{})
	require.NoError(t, err)

	// Re-running the same day does not resurrect the reminder.
	again, created, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.ReminderStatusDone, again.Status)
}

func TestRetrieveReminderNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	id := 999
	_, err := svc.RetrieveReminder(context.Background(), RetrieveReminderOptions{ID: &id})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reminder not found.")
}

func TestRetrieveReminderIncludeBook(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	reminder, _, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)

	loaded, err := svc.RetrieveReminder(ctx, RetrieveReminderOptions{ID: &reminder.ID, IncludeBook: true})
	require.NoError(t, err)
	require.NotNil(t, loaded.Book)
	assert.Equal(t, "Dune", loaded.Book.Title)
}

func TestMarkSkipped(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	reminder, _, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)

	skipped, err := svc.MarkSkipped(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderStatusSkipped, skipped.Status)

	_, err = svc.MarkSkipped(ctx, reminder.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reminder is already skipped.")

	_, err = svc.MarkDone(ctx, reminder.ID, MarkDoneOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reminder is already skipped.")
}

func TestChannelMessageRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	reminder, _, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)
	assert.False(t, reminder.Delivered())

	require.NoError(t, svc.SetChannelMessage(ctx, reminder.ID, 42))

	loaded, err := svc.RetrieveReminder(ctx, RetrieveReminderOptions{ID: &reminder.ID})
	require.NoError(t, err)
	require.NotNil(t, loaded.ChannelMessageID)
	assert.Equal(t, int64(42), *loaded.ChannelMessageID)
	assert.True(t, loaded.Delivered())

	require.NoError(t, svc.ClearChannelMessage(ctx, reminder.ID))

	loaded, err = svc.RetrieveReminder(ctx, RetrieveReminderOptions{ID: &reminder.ID})
	require.NoError(t, err)
	assert.Nil(t, loaded.ChannelMessageID)
}

func TestListPendingUndelivered(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := insertTestBook(t, db)

	stale, _, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-15",
		FromPage:     1,
		ToPage:       10,
		PagesPlanned: 10,
	})
	require.NoError(t, err)

	delivered, _, err := svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-16",
		FromPage:     11,
		ToPage:       20,
		PagesPlanned: 10,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetChannelMessage(ctx, delivered.ID, 42))

	// Dated after the cutoff, so it is not in delivery doubt yet.
	_, _, err = svc.EnsureReminder(ctx, EnsureReminderOptions{
		BookID:       book.ID,
		Date:         "2026-01-17",
		FromPage:     21,
		ToPage:       30,
		PagesPlanned: 10,
	})
	require.NoError(t, err)

	list, err := svc.ListPendingUndelivered(ctx, "2026-01-16")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, stale.ID, list[0].ID)
	require.NotNil(t, list[0].Book)
	assert.Equal(t, book.ID, list[0].Book.ID)
}
