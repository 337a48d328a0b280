// seed prepares an empty database: runs the migrations, creates the first
// administrator when no user exists and creates the branches.
//
// Usage: go run ./cmd/seed [branches.csv] [utf-8|cp1250]
// The CSV holds "name;address;company" rows. Without it the default branches
// are created. Admin credentials come from SEED_ADMIN_* variables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/application/reports"
	"github.com/branchdesk/branchdesk-api/internal/application/usecase"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/csvexport"
	"github.com/branchdesk/branchdesk-api/internal/infrastructure/database"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/config"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	var branches []dto.BranchRequest
	if len(os.Args) > 1 {
		enc := reports.UTF8
		if len(os.Args) > 2 {
			var ok bool
			if enc, ok = reports.ParseEncoding(os.Args[2]); !ok {
				fmt.Fprintf(os.Stderr, "unknown encoding %q, use utf-8 or cp1250\n", os.Args[2])
				os.Exit(2)
			}
		}
		branches, err = readBranches(os.Args[1], enc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read branches: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection")
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("database migration")
	}

	clk := clock.New(nil, cfg.App.Location())
	repos := database.NewRepos(db.Gorm)
	txRunner := database.NewTxRunner(db.Gorm)
	seed := usecase.NewSeedUseCase(
		repos.Users,
		usecase.NewUserUseCase(repos, txRunner, clk, log),
		usecase.NewBranchUseCase(repos, txRunner, clk, log),
		log,
	)

	res, err := seed.Bootstrap(ctx, usecase.SeedInput{
		AdminUsername: cfg.Seed.AdminUsername,
		AdminPIN:      cfg.Seed.AdminPIN,
		AdminPassword: cfg.Seed.AdminPassword,
		Branches:      branches,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	fmt.Printf("admin created: %t, branches created: %d, already present: %d\n",
		res.AdminCreated, res.BranchesCreated, res.BranchesSkipped)
}

func readBranches(path string, enc reports.Encoding) ([]dto.BranchRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csvexport.ReadBranches(f, enc)
}
