// Package pace computes the page range due for a book on a given date. The
// quota starts at a configured number of pages per day and grows by a weekly
// increment, so a plan eases the reader in and speeds up over time.
package pace

import (
	"time"

	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/models"
)

// Plan holds the pace parameters. These are runtime settings, not per-book
// fields; changing them affects every book from the next tick on.
type Plan struct {
	StartPages         int
	WeeklyIncrement    int
	IncrementEveryDays int
}

func DefaultPlan() Plan {
	return Plan{
		StartPages:         10,
		WeeklyIncrement:    5,
		IncrementEveryDays: 7,
	}
}

// Range is the span of pages due on a single date.
type Range struct {
	FromPage     int
	ToPage       int
	PagesPlanned int
}

// DueRange returns the range due for the book on asOf. ok is false when the
// book has no unread pages left, which tells the caller to run the finish
// transition instead of materializing a reminder.
//
// The computation is pure: the same book state, date, and plan always produce
// the same range, which is what makes regeneration after a restart safe.
func DueRange(book *models.Book, asOf time.Time, plan Plan) (Range, bool, error) {
	if book.LastReadPage >= book.TotalPages {
		return Range{}, false, nil
	}

	start, err := time.Parse(models.DateLayout, book.StartDate)
	if err != nil {
		return Range{}, false, errors.Wrapf(err, "invalid start_date %q", book.StartDate)
	}

	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	elapsed := int(day.Sub(start).Hours() / 24)

	weekIndex := 0
	if elapsed > 0 && plan.IncrementEveryDays > 0 {
		weekIndex = elapsed / plan.IncrementEveryDays
	}

	daily := plan.StartPages + plan.WeeklyIncrement*weekIndex

	from := book.LastReadPage + 1
	if from > book.TotalPages {
		return Range{}, false, nil
	}

	to := from + daily - 1
	if to > book.TotalPages {
		to = book.TotalPages
	}

	return Range{
		FromPage:     from,
		ToPage:       to,
		PagesPlanned: to - from + 1,
	}, true, nil
}
