package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				total_pages INTEGER NOT NULL CHECK (total_pages > 0),
				start_page INTEGER NOT NULL CHECK (start_page >= 1),
				start_date TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'paused', 'finished')),
				last_read_page INTEGER NOT NULL DEFAULT 0 CHECK (last_read_page >= 0),
				last_read_date TEXT,
				header_message_id INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				finished_at TIMESTAMPTZ
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE reminders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
				date TEXT NOT NULL,
				from_page INTEGER NOT NULL CHECK (from_page >= 1),
				to_page INTEGER NOT NULL CHECK (to_page >= from_page),
				pages_planned INTEGER NOT NULL CHECK (pages_planned > 0),
				status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'done', 'skipped')),
				channel_message_id INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				done_at TIMESTAMPTZ
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		// The scheduler leans on this constraint for idempotent
		// materialization: a second insert for the same (book, date) is a
		// conflict no matter which process or tick issues it.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_reminders_book_id_date ON reminders(book_id, date)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_reminders_status_date ON reminders(status, date)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_books_status ON books(status)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{"settings", "reminders", "books"} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
