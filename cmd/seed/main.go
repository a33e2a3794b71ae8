// Command seed loads a CSV file into the directory through the same
// pipeline the HTTP import uses, so seed data is validated and
// normalized exactly like an upload.
//
// Usage: seed -file testdata/users.csv
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/anbeck/user-directory/config"
	"github.com/anbeck/user-directory/internal/application"
	"github.com/anbeck/user-directory/internal/csv"
	pginfra "github.com/anbeck/user-directory/internal/infrastructure/postgres"
	"github.com/anbeck/user-directory/pkg/helpers"
)

func main() {
	file := flag.String("file", "", "path to the CSV file to import")
	flag.Parse()
	if *file == "" {
		log.Fatal("usage: seed -file <path to csv>")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	svc := application.NewDirectoryService(repo, csv.NewImporter(nil), nil, logger, nil)

	count, err := svc.Import(ctx, data, "seed")
	if err != nil {
		switch e := err.(type) {
		case *application.BatchRejectedError:
			for _, re := range e.RowErrors {
				logger.Error(re.String())
			}
			log.Fatal("seed rejected: validation failed")
		case *application.ImportConflictError:
			log.Fatalf("seed rejected: emails already exist: %v", e.Emails)
		case *csv.ParseError:
			for _, d := range e.Details {
				logger.Error(d)
			}
			log.Fatal("seed rejected: malformed CSV")
		default:
			log.Fatalf("seed failed: %v", err)
		}
	}
	logger.Infof("seeded %d users from %s", count, *file)
}
