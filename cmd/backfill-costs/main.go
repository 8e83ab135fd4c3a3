// Command backfill-costs prices stored analyses that were recorded before their model had a
// known rate.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/fadilmartias/hireprep/internal/usecase"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(config.LoadDBConfig().DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	uc := usecase.NewCostBackfillUsecase(repository.NewAnalysisRepository(db))
	report, err := uc.Run(ctx)
	log.Printf("backfill finished: %s", report)
	if err != nil {
		log.Fatalf("backfill aborted: %v", err)
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
}
