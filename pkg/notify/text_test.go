package notify

import (
	"testing"

	"github.com/readloop/readloop/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
)

func TestHeaderText(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		Title:     "Dune",
		Author:    "Frank Herbert",
		StartDate: "2026-01-16",
		Status:    models.BookStatusActive,
	}

	assert.Equal(t, "📚 Dune — Frank Herbert (16.01.2026 → ...)", HeaderText(book))
}

func TestHeaderTextFinished(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		Title:        "Dune",
		Author:       "Frank Herbert",
		StartDate:    "2026-01-16",
		Status:       models.BookStatusFinished,
		LastReadDate: pointerutil.String("2026-03-02"),
	}

	assert.Equal(t, "📚 Dune — Frank Herbert (16.01.2026 → 02.03.2026)", HeaderText(book))
}

func TestReminderText(t *testing.T) {
	t.Parallel()

	reminder := &models.Reminder{
		Date:     "2026-01-16",
		FromPage: 1,
		ToPage:   10,
	}

	assert.Equal(t, "📅 16.01.2026 — Read pages 1–10", ReminderText(reminder))
}

func TestCompletionText(t *testing.T) {
	t.Parallel()

	book := &models.Book{
		Title:  "Dune",
		Author: "Frank Herbert",
	}

	assert.Equal(t, "✅ Finished: Dune — Frank Herbert", CompletionText(book))
}
