package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/andresuchdata/stockweeks/internal/repository"
	"github.com/andresuchdata/stockweeks/internal/repository/postgres"
	"github.com/andresuchdata/stockweeks/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Load a feed file into the stock_weeks_base_figures table",
		ArgsUsage: "<feed.json>",
		Flags: []cli.Flag{
			newDBURLFlag(),
			newBrandFlag(),
			newExcludeYearsFlag(),
			&cli.Int64Flag{
				Name:  "max-conns",
				Usage: "Maximum concurrent database operations",
				Value: 4,
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: runImport,
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.Connect("pgx", c.String("db-url"), c.Int64("max-conns"))
	if err != nil {
		return err
	}
	c.Context = context.WithValue(commandContext(c), dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := commandContext(c).Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func runImport(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one feed file, got %d", c.NArg())
	}
	brand, err := domain.ParseBrand(c.String("brand"))
	if err != nil {
		return err
	}
	db, ok := commandContext(c).Value(dbKey).(*postgres.DB)
	if !ok {
		return fmt.Errorf("database not initialized")
	}

	repo := repository.NewBaseFiguresRepository(db)
	n, err := importFeed(commandContext(c), repo, c.Args().First(), brand, feed.Filter{ExcludedYears: excludedYears(c)})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d rows for %s\n", n, brand)
	return nil
}

// importFeed decodes path and replaces every stored row of brand with it.
func importFeed(ctx context.Context, repo repository.BaseFiguresRepository, path string, brand domain.Brand, filter feed.Filter) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	decoded, err := feed.Decode(f, brand)
	if err != nil {
		return 0, err
	}
	rows := feed.ToRows(filter.Apply(decoded))

	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	n, err := repo.ReplaceBrand(ctx, brand, rows)
	if err != nil {
		return 0, err
	}

	logger.Log.Info().
		Str("brand", string(brand)).
		Str("file", path).
		Int("rows", n).
		Msg("feed imported")
	return n, nil
}
