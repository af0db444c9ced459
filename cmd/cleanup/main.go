package main

import (
	"context"
	"fmt"
	"os"

	"kasap-service/config"
	"kasap-service/internal/cleanup"
	"kasap-service/internal/database"
	"kasap-service/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()
	dbCfg := config.LoadDB(log)

	db := database.ConnectDB(&dbCfg.Config, log)
	defer database.CloseDB(db, log)

	cleanupSvc := cleanup.NewCleanupService(db, log)

	ctx := context.Background()

	task := "all"
	if len(os.Args) > 1 {
		task = os.Args[1]
	}

	var err error
	switch task {
	case "slots":
		log.Info("running slot maintenance")
		if err = cleanupSvc.ClosePastSlots(ctx); err == nil {
			err = cleanupSvc.ReconcileBookings(ctx)
		}
	case "sessions":
		log.Info("running sessions cleanup")
		err = cleanupSvc.CleanupSessions(ctx)
	case "tokens":
		log.Info("running reset tokens cleanup")
		err = cleanupSvc.CleanupResetTokens(ctx)
	case "all":
		log.Info("running full cleanup")
		err = cleanupSvc.RunFullCleanup(ctx)
	default:
		fmt.Println("Usage: cleanup [slots|sessions|tokens|all]")
		fmt.Println("  slots    - close past slots and reconcile booking counters")
		fmt.Println("  sessions - delete expired or revoked sessions")
		fmt.Println("  tokens   - delete expired and consumed reset codes")
		fmt.Println("  all      - run everything (default)")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("cleanup failed", zap.String("task", task), zap.Error(err))
	}

	log.Info("cleanup completed successfully", zap.String("task", task))
}
