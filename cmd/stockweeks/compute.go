package main

import (
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/stockweeks"
	"github.com/urfave/cli/v2"
)

func computeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compute",
		Usage: "Compute weeks of stock for one month of figures",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "Days in the month", Required: true},
			&cli.Float64Flag{Name: "total-stock", Usage: "Total ending stock value"},
			&cli.Float64Flag{Name: "wholesale-stock", Usage: "Wholesale ending stock value"},
			&cli.Float64Flag{Name: "direct-stock", Usage: "Direct ending stock value"},
			&cli.Float64Flag{Name: "total-sales", Usage: "Total sales value"},
			&cli.Float64Flag{Name: "wholesale-sales", Usage: "Wholesale sales value"},
			&cli.Float64Flag{Name: "direct-sales", Usage: "Direct sales value"},
			&cli.StringFlag{Name: "channel", Usage: "total, wholesale or warehouse; every channel when empty"},
			newNWeeksFlag(),
		},
		Action: runCompute,
	}
}

type computeResult struct {
	NWeeks  float64                       `json:"n_weeks"`
	Weeks   map[string]domain.WeeksMetric `json:"weeks"`
	Outlier bool                          `json:"outlier"`
}

func runCompute(c *cli.Context) error {
	n := c.Float64("n-weeks")
	if err := stockweeks.ValidateSellThroughWeeks(n); err != nil {
		return err
	}

	base := domain.BaseFigures{
		DaysInMonth:         c.Int("days"),
		TotalStockValue:     c.Float64("total-stock"),
		WholesaleStockValue: c.Float64("wholesale-stock"),
		DirectStockValue:    c.Float64("direct-stock"),
		TotalSalesValue:     c.Float64("total-sales"),
		WholesaleSalesValue: c.Float64("wholesale-sales"),
		DirectSalesValue:    c.Float64("direct-sales"),
	}

	channels := stockweeks.Channels
	if raw := c.String("channel"); raw != "" {
		ch, err := stockweeks.ParseChannel(raw)
		if err != nil {
			return err
		}
		channels = []stockweeks.Channel{ch}
	}

	result := computeResult{NWeeks: n, Weeks: make(map[string]domain.WeeksMetric, len(channels))}
	for _, ch := range channels {
		m := stockweeks.ComputeWeeks(&base, ch, n)
		result.Weeks[ch.String()] = m
		if ch == stockweeks.ChannelTotal {
			result.Outlier = stockweeks.IsOutlier(m)
		}
	}
	return writeJSON(c, result)
}
