package notify

import (
	"fmt"
	"time"

	"github.com/readloop/readloop/pkg/models"
)

const displayDateLayout = "02.01.2006"

func displayDate(iso string) string {
	parsed, err := time.Parse(models.DateLayout, iso)
	if err != nil {
		return iso
	}
	return parsed.Format(displayDateLayout)
}

// HeaderText renders the pinned-style book header. The finish date shows as
// "..." until the book is finished.
func HeaderText(book *models.Book) string {
	finish := "..."
	if book.Status == models.BookStatusFinished && book.LastReadDate != nil {
		finish = displayDate(*book.LastReadDate)
	}
	return fmt.Sprintf("📚 %s — %s (%s → %s)", book.Title, book.Author, displayDate(book.StartDate), finish)
}

// ReminderText renders the daily reminder message.
func ReminderText(reminder *models.Reminder) string {
	return fmt.Sprintf("📅 %s — Read pages %d–%d", displayDate(reminder.Date), reminder.FromPage, reminder.ToPage)
}

// CompletionText renders the finish announcement.
func CompletionText(book *models.Book) string {
	return fmt.Sprintf("✅ Finished: %s — %s", book.Title, book.Author)
}
