package scheduler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	scheduler *Scheduler
}

// run triggers today's pass on demand, the same one the timer runs.
func (h *handler) run(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.scheduler.RunForDate(ctx, h.scheduler.clock.Now())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]bool{"ok": true}))
}
