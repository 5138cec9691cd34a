package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trade-analytics-go/internal/config"
	"trade-analytics-go/internal/database"
	"trade-analytics-go/internal/loader"
	"trade-analytics-go/internal/logger"

	"go.uber.org/zap"
)

func main() {
	startYear := flag.Int("start-year", 0, "first year to seed (overrides config)")
	endYear := flag.Int("end-year", 0, "last year to seed (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		panic(fmt.Sprintf("could not load config: %v", err))
	}
	if *startYear != 0 {
		cfg.Analysis.StartYear = *startYear
	}
	if *endYear != 0 {
		cfg.Analysis.EndYear = *endYear
	}
	if cfg.Analysis.StartYear > cfg.Analysis.EndYear {
		panic(fmt.Sprintf("invalid year range %d-%d", cfg.Analysis.StartYear, cfg.Analysis.EndYear))
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if dir := filepath.Dir(cfg.Database.DSN); dir != "." && !strings.HasPrefix(cfg.Database.DSN, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("Failed to create database directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()

	l := loader.NewLoader(db, log, cfg.Analysis.StartYear, cfg.Analysis.EndYear)
	if err := l.Seed(); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Database seeded",
		zap.String("dsn", cfg.Database.DSN),
		zap.Int("start_year", cfg.Analysis.StartYear),
		zap.Int("end_year", cfg.Analysis.EndYear),
	)
}
