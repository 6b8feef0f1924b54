package scheduler

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, s *Scheduler) {
	h := &handler{scheduler: s}

	e.POST("/scheduler/run", h.run)
}
