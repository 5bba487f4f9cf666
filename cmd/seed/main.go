package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mateatletas/backend/internal/infrastructure/config"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"github.com/mateatletas/backend/internal/infrastructure/persistence"
	"github.com/mateatletas/backend/internal/infrastructure/persistence/seed"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	opts := seed.DefaultOptions()
	var logLevel string

	flag.IntVar(&opts.Tutors, "tutors", opts.Tutors, "Number of tutors to create")
	flag.IntVar(&opts.MaxStudentsPerTutor, "max-students", opts.MaxStudentsPerTutor, "Maximum students per tutor")
	flag.IntVar(&opts.Months, "months", opts.Months, "Monthly periods billed per student, ending with the current one")
	flag.Float64Var(&opts.UnpaidRate, "unpaid-rate", opts.UnpaidRate, "Probability that a past period is unpaid")
	flag.Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:   logLevel,
		Format:  "console",
		Output:  "stdout",
		Service: "mateatletas-seed",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	loc, err := cfg.Billing.Location()
	if err != nil {
		log.Fatal("Invalid billing timezone", zap.Error(err))
	}
	opts.Location = loc
	opts.Now = time.Now()

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger: logger.NewGormLogger(log, gormlogger.Warn, time.Second),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ds, err := seed.Generate(opts)
	if err != nil {
		log.Fatal("Failed to generate dataset", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := seed.Insert(ctx, db.DB, ds); err != nil {
		log.Fatal("Failed to insert dataset", zap.Error(err))
	}

	log.Info("Database seeded",
		zap.Int("tutors", len(ds.Tutors)),
		zap.Int("students", len(ds.Students)),
		zap.Int("enrollments", len(ds.Enrollments)),
	)
}
