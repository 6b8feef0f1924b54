package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/binder"
	"github.com/readloop/readloop/pkg/books"
	"github.com/readloop/readloop/pkg/config"
	"github.com/readloop/readloop/pkg/errcodes"
	"github.com/readloop/readloop/pkg/notify"
	"github.com/readloop/readloop/pkg/scheduler"
	"github.com/readloop/readloop/pkg/settings"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, notifier notify.Notifier, sched *scheduler.Scheduler) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Everything except health sits behind the static token when one is
	// configured.
	e.Use(TokenAuth(cfg.Server.APIToken))

	books.RegisterRoutes(e, db, notifier)
	settings.RegisterRoutes(e, db)
	scheduler.RegisterRoutes(e, sched)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
