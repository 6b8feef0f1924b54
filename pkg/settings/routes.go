package settings

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		settingsService: NewService(db),
	}

	e.GET("/settings", h.list)
	e.GET("/settings/:key", h.retrieve)
	e.PUT("/settings/:key", h.update)
}
