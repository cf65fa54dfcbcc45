package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/backend/config"
	"coursehub/backend/jobs"
	"coursehub/backend/mailer"
	"coursehub/backend/routes"
	"coursehub/backend/services"
	"coursehub/backend/storage"
	"coursehub/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assets, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Error initializing asset store: %v", err)
	}
	mail, err := mailer.New(cfg)
	if err != nil {
		log.Fatalf("Error initializing mailer: %v", err)
	}

	sessions := services.NewSessionService(db, cfg)
	users := services.NewUserService(db, cfg, mail, assets, logger)
	courses := services.NewCourseService(db, assets, logger)
	contact := services.NewContactService(db, logger)

	housekeeper := jobs.NewHousekeeper(logger)
	housekeeper.Register("revoked_tokens", sessions)
	housekeeper.Register("reset_tokens", jobs.PurgerFunc(users.PurgeExpiredResetTokens))
	scheduler, err := housekeeper.Start(cfg.HousekeepingSchedule)
	if err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}

	app := routes.NewApp(routes.Dependencies{
		Cfg:      cfg,
		Logger:   logger,
		Sessions: sessions,
		Users:    users,
		Courses:  courses,
		Contact:  contact,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.ServerPort, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
