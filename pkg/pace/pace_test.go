package pace

import (
	"testing"
	"time"

	"github.com/readloop/readloop/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(models.DateLayout, value)
	require.NoError(t, err)
	return parsed
}

func TestDueRangeFirstDay(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		StartDate:    "2026-01-16",
		StartPage:    1,
		TotalPages:   200,
		LastReadPage: 0,
	}

	r, ok, err := DueRange(book, date(t, "2026-01-16"), DefaultPlan())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, r.FromPage)
	assert.Equal(t, 10, r.ToPage)
	assert.Equal(t, 10, r.PagesPlanned)
}

func TestDueRangeSecondWeek(t *testing.T) {
	t.Parallel()

	// One week in the quota grows to 15 pages per day.
	book := &models.Book{
		StartDate:    "2026-01-16",
		StartPage:    1,
		TotalPages:   200,
		LastReadPage: 10,
	}

	r, ok, err := DueRange(book, date(t, "2026-01-23"), DefaultPlan())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, r.FromPage)
	assert.Equal(t, 25, r.ToPage)
	assert.Equal(t, 15, r.PagesPlanned)
}

func TestDueRangeBeforeStartDate(t *testing.T) {
	t.Parallel()

	// Dates before the start date clamp to week zero rather than going
	// negative.
	book := &models.Book{
		StartDate:    "2026-01-16",
		StartPage:    1,
		TotalPages:   200,
		LastReadPage: 0,
	}

	r, ok, err := DueRange(book, date(t, "2026-01-10"), DefaultPlan())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, r.FromPage)
	assert.Equal(t, 10, r.ToPage)
}

func TestDueRangeClampedToTotalPages(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		StartDate:    "2026-01-16",
		StartPage:    1,
		TotalPages:   200,
		LastReadPage: 195,
	}

	r, ok, err := DueRange(book, date(t, "2026-01-23"), DefaultPlan())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 196, r.FromPage)
	assert.Equal(t, 200, r.ToPage)
	assert.Equal(t, 5, r.PagesPlanned)
}

func TestDueRangeNoneNeededWhenFullyRead(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		StartDate:    "2026-01-16",
		StartPage:    1,
		TotalPages:   200,
		LastReadPage: 200,
	}

	_, ok, err := DueRange(book, date(t, "2026-02-01"), DefaultPlan())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDueRangeDeterministic(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		StartDate:    "2026-01-16",
		StartPage:    1,
		TotalPages:   321,
		LastReadPage: 58,
	}
	asOf := date(t, "2026-02-20")

	first, ok, err := DueRange(book, asOf, DefaultPlan())
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := DueRange(book, asOf, DefaultPlan())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestDueRangeInvalidStartDate(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		StartDate:    "16.01.2026",
		TotalPages:   200,
		LastReadPage: 0,
	}

	_, _, err := DueRange(book, date(t, "2026-01-16"), DefaultPlan())
	require.Error(t, err)
}

func TestDueRangeCustomPlan(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		StartDate:    "2026-01-01",
		StartPage:    1,
		TotalPages:   1000,
		LastReadPage: 100,
	}
	plan := Plan{StartPages: 20, WeeklyIncrement: 10, IncrementEveryDays: 14}

	// 28 days elapsed is two full increments of the 14-day cycle.
	r, ok, err := DueRange(book, date(t, "2026-01-29"), plan)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 101, r.FromPage)
	assert.Equal(t, 140, r.ToPage)
	assert.Equal(t, 40, r.PagesPlanned)
}
