package books

import (
	"github.com/labstack/echo/v4"
	"github.com/readloop/readloop/pkg/notify"
	"github.com/readloop/readloop/pkg/settings"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the book routes and the reminder resolution routes.
// The latter live here because resolving a reminder advances the book.
func RegisterRoutes(e *echo.Echo, db *bun.DB, notifier notify.Notifier) {
	h := &handler{
		bookService:     NewService(db),
		settingsService: settings.NewService(db),
		notifier:        notifier,
	}

	e.POST("/books", h.create)
	e.GET("/books", h.list)
	e.GET("/books/progress", h.progress)
	e.GET("/books/:id", h.retrieve)
	e.DELETE("/books/:id", h.delete)
	e.POST("/books/:id/pause", h.pause)
	e.POST("/books/:id/resume", h.resume)

	e.POST("/reminders/:id/read", h.confirmRead)
	e.POST("/reminders/:id/read-custom", h.confirmCustomRead)
	e.POST("/reminders/:id/skip", h.skip)
}
