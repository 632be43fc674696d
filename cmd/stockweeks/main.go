package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
	"github.com/andresuchdata/stockweeks/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func newFeedDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "feed-dir",
		Usage:   "Directory containing stock_weeks_<BRAND>.json feeds",
		Value:   "./data/feeds",
		EnvVars: []string{"FEED_DIR"},
	}
}

func newBrandFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "brand",
		Usage:    "Brand code (MLB, MLB_KIDS, DISCOVERY)",
		Required: true,
	}
}

func newNWeeksFlag() *cli.Float64Flag {
	return &cli.Float64Flag{
		Name:    "n-weeks",
		Usage:   "Direct-store sell-through weeks reserved before the warehouse",
		Value:   stockweeks.DefaultDirectSellThroughWeeks,
		EnvVars: []string{"ENGINE_DIRECT_SELL_THROUGH_WEEKS"},
	}
}

func newExcludeYearsFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "exclude-years",
		Usage:   "Comma separated years dropped from the feed",
		Value:   "2023",
		EnvVars: []string{"FEED_EXCLUDED_YEARS"},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "stockweeks",
		Usage: "Compute and inspect weeks-of-stock metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Configure(zerolog.ConsoleWriter{Out: c.App.ErrWriter, TimeFormat: "15:04:05"})
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			computeCommand(),
			reportCommand(),
			importCommand(),
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("stockweeks failed")
	}
}

func writeJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func excludedYears(c *cli.Context) []int {
	return config.ParseYears(c.String("exclude-years"))
}

func commandContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
