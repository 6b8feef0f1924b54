package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		defaults := map[string]string{
			"reminder_time":        "08:00",
			"start_pages":          "10",
			"weekly_increment":     "5",
			"increment_every_days": "7",
		}

		for key, value := range defaults {
			_, err := db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DELETE FROM settings WHERE key IN ('reminder_time', 'start_pages', 'weekly_increment', 'increment_every_days')`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
