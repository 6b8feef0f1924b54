package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookStatusActive   = "active"
	BookStatusPaused   = "paused"
	BookStatusFinished = "finished"
)

// DateLayout is the layout used for all calendar-date columns. Dates are
// stored as ISO strings so that the unique (book_id, date) constraint compares
// bytes, independent of timezone.
const DateLayout = "2006-01-02"

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int        `bun:",pk,nullzero" json:"id"`
	Title           string     `bun:",nullzero" json:"title"`
	Author          string     `bun:",nullzero" json:"author"`
	TotalPages      int        `bun:",nullzero" json:"total_pages"`
	StartPage       int        `bun:",nullzero" json:"start_page"`
	StartDate       string     `bun:",nullzero" json:"start_date"`
	Status          string     `bun:",nullzero" json:"status"`
	LastReadPage    int        `json:"last_read_page"`
	LastReadDate    *string    `json:"last_read_date"`
	HeaderMessageID *int64     `json:"header_message_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	FinishedAt      *time.Time `json:"finished_at"`
}

// FullyRead reports whether every page of the book has been confirmed.
func (b *Book) FullyRead() bool {
	return b.LastReadPage >= b.TotalPages
}

func ValidBookStatus(status string) bool {
	switch status {
	case BookStatusActive, BookStatusPaused, BookStatusFinished:
		return true
	}
	return false
}
