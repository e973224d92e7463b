package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/internal/repository"
	"github.com/noah-isme/campus-connect-api/internal/seed"
	"github.com/noah-isme/campus-connect-api/pkg/config"
	"github.com/noah-isme/campus-connect-api/pkg/database"
	"github.com/noah-isme/campus-connect-api/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "empty users, departments and resources before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if _, err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}
	if *reset {
		if err := seed.Reset(ctx, db); err != nil {
			logr.Fatal("failed to reset tables", zap.Error(err))
		}
		logr.Warn("existing campus data cleared")
	}

	data, err := seed.Default()
	if err != nil {
		logr.Fatal("failed to load seed data", zap.Error(err))
	}

	seeder := seed.NewSeeder(
		repository.NewDepartmentRepository(db),
		repository.NewUserRepository(db),
		repository.NewResourceRepository(db),
		logr.Named("seed"),
	)
	summary, err := seeder.Run(ctx, data)
	logr.Info("seeding finished",
		zap.Int("departments", summary.Departments),
		zap.Int("users", summary.Users),
		zap.Int("resources", summary.Resources),
		zap.Int("skipped", summary.Skipped))
	if err != nil {
		logr.Fatal("seeding incomplete", zap.Error(err))
	}
	logr.Warn("default passwords are in internal/seed/data.yaml; change them after the first login")
}
