package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"io"
	"log"
	"os"

	"github.com/noah-isme/academic-dashboard/internal/repository"
	"github.com/noah-isme/academic-dashboard/internal/seed"
	"github.com/noah-isme/academic-dashboard/pkg/config"
	"github.com/noah-isme/academic-dashboard/pkg/database"
	"github.com/noah-isme/academic-dashboard/pkg/logger"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

func main() {
	file := flag.String("file", "", "fixture YAML file (defaults to the bundled demo data)")
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

	var src io.Reader = bytes.NewReader(defaultFixtures)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logr.Sugar().Fatalw("open fixtures", "file", *file, "error", err)
		}
		defer f.Close()
		src = f
	}
	fixtures, err := seed.Load(src)
	if err != nil {
		logr.Sugar().Fatalw("invalid fixtures", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := database.NewMigrator(db).Up(ctx); err != nil {
		logr.Sugar().Fatalw("migrations failed", "error", err)
	}

	seeder := seed.NewSeeder(
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewAssignmentRepository(db),
		logr,
	)
	if _, err := seeder.Run(ctx, fixtures); err != nil {
		logr.Sugar().Fatalw("seeding failed", "error", err)
	}
}
