package main

import (
	"fmt"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/andresuchdata/stockweeks/internal/service"
	"github.com/urfave/cli/v2"
)

func reportCommand() *cli.Command {
	common := func(extra ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{
			newFeedDirFlag(),
			newBrandFlag(),
			newNWeeksFlag(),
			newExcludeYearsFlag(),
			&cli.BoolFlag{
				Name:  "fill-missing-months",
				Usage: "Treat months missing from a year as zero figures",
				Value: true,
			},
		}, extra...)
	}
	categoryFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "category",
			Usage: "Category code, or ALL",
			Value: domain.CategoryAll,
		}
	}

	return &cli.Command{
		Name:  "report",
		Usage: "Build a report from local feed files",
		Subcommands: []*cli.Command{
			{
				Name:   "summary",
				Usage:  "Per-category summary for one month",
				Flags:  common(&cli.IntFlag{Name: "month", Usage: "Month 1-12; latest month with data when 0"}),
				Action: runSummary,
			},
			{
				Name:   "monthly",
				Usage:  "Month-by-month summary for one category",
				Flags:  common(categoryFlag()),
				Action: runMonthly,
			},
			{
				Name:   "heatmap",
				Usage:  "Weeks-of-stock heatmap",
				Flags:  common(categoryFlag()),
				Action: runHeatmap,
			},
			{
				Name:  "operations",
				Usage: "Weeks-of-stock heatmap by operation basis",
				Flags: []cli.Flag{
					newFeedDirFlag(),
					newBrandFlag(),
					newExcludeYearsFlag(),
					categoryFlag(),
				},
				Action: runOperations,
			},
		},
	}
}

// loadReports loads the brand named by --brand from --feed-dir.
func loadReports(c *cli.Context) (*service.ReportService, domain.Brand, error) {
	brand, err := domain.ParseBrand(c.String("brand"))
	if err != nil {
		return nil, "", err
	}

	store := feed.NewStore()
	loader := &feed.Loader{
		Source: feed.FileSource{Dir: c.String("feed-dir")},
		Filter: feed.Filter{
			ExcludedYears:     excludedYears(c),
			FillMissingMonths: c.Bool("fill-missing-months"),
		},
		Brands: []domain.Brand{brand},
	}
	reports := service.NewReportService(store, loader, service.WithDefaultNWeeks(c.Float64("n-weeks")))
	if _, err := reports.Reload(commandContext(c)); err != nil {
		return nil, "", err
	}
	if _, ok := store.Get(brand); !ok {
		return nil, "", fmt.Errorf("no feed %s in %s", feed.FileName(brand), c.String("feed-dir"))
	}
	return reports, brand, nil
}

func runSummary(c *cli.Context) error {
	reports, brand, err := loadReports(c)
	if err != nil {
		return err
	}
	report, err := reports.ItemSummary(commandContext(c), domain.SummaryFilter{
		Brand:  brand,
		Month:  c.Int("month"),
		NWeeks: c.Float64("n-weeks"),
	})
	if err != nil {
		return err
	}
	return writeJSON(c, report)
}

func runMonthly(c *cli.Context) error {
	reports, brand, err := loadReports(c)
	if err != nil {
		return err
	}
	report, err := reports.MonthlySummary(commandContext(c), domain.MonthlyFilter{
		Brand:    brand,
		Category: c.String("category"),
		NWeeks:   c.Float64("n-weeks"),
	})
	if err != nil {
		return err
	}
	return writeJSON(c, report)
}

func runHeatmap(c *cli.Context) error {
	reports, brand, err := loadReports(c)
	if err != nil {
		return err
	}
	report, err := reports.Heatmap(commandContext(c), domain.HeatmapFilter{
		Brand:    brand,
		Category: c.String("category"),
		NWeeks:   c.Float64("n-weeks"),
	})
	if err != nil {
		return err
	}
	return writeJSON(c, report)
}

func runOperations(c *cli.Context) error {
	brand, err := domain.ParseBrand(c.String("brand"))
	if err != nil {
		return err
	}
	raw, err := feed.FileSource{Dir: c.String("feed-dir")}.LoadOperations(commandContext(c), brand)
	if err != nil {
		return err
	}

	store := feed.NewStore()
	store.ReplaceOperations(map[domain.Brand]*domain.OperationFeed{
		brand: feed.Filter{ExcludedYears: excludedYears(c)}.ApplyOperations(raw),
	})
	report, err := service.NewReportService(store, nil).OperationHeatmap(commandContext(c), domain.OperationHeatmapFilter{
		Brand:    brand,
		Category: c.String("category"),
	})
	if err != nil {
		return err
	}
	return writeJSON(c, report)
}
