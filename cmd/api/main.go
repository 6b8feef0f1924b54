package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/config"
	"github.com/readloop/readloop/pkg/database"
	"github.com/readloop/readloop/pkg/migrations"
	"github.com/readloop/readloop/pkg/notify"
	"github.com/readloop/readloop/pkg/scheduler"
	"github.com/readloop/readloop/pkg/server"
	"github.com/readloop/readloop/pkg/version"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting readloop", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	var notifier notify.Notifier = notify.NewNoop()
	if cfg.Telegram.BotToken != "" {
		notifier = notify.NewTelegram(cfg.Telegram.BotToken)
		log.Info("telegram notifier configured")
	} else {
		log.Warn("no bot token configured, reminders will not be delivered")
	}

	sched := scheduler.New(cfg, db, notifier, scheduler.NewClock(cfg.Location))

	srv, err := server.New(cfg, db, notifier, sched)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		log.Info("server started", logger.Data{"addr": fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)})

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	sched.Start()
	log.Info("scheduler started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	sched.Shutdown()
	log.Info("scheduler shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
