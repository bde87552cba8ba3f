package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/bths-repair/bths-repair-the-world/apps/api/echo"
	"github.com/bths-repair/bths-repair-the-world/core"
	"github.com/bths-repair/bths-repair-the-world/core/event"
	"github.com/bths-repair/bths-repair-the-world/core/user"
	emailsvc "github.com/bths-repair/bths-repair-the-world/services/email"
	logsvc "github.com/bths-repair/bths-repair-the-world/services/logger"
	realtimesvc "github.com/bths-repair/bths-repair-the-world/services/realtime"
	"github.com/bths-repair/bths-repair-the-world/storage/database"
	sqlxrepos "github.com/bths-repair/bths-repair-the-world/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()
	if err = database.Ping(db); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	broadcaster := realtimesvc.NewRedisBroadcaster(core.Conf)
	defer broadcaster.Close()

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, logger)
	evtSvc := event.NewService(sqlxrepos.NewEventRepository(db), broadcaster, logger)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:     core.Conf.Server.Address(),
			Logger:   logger,
			UserSvc:  usrSvc,
			EventSvc: evtSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	sig := <-server.ShutdownSignal()
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
