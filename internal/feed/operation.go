package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// OperationSource loads the operation-basis feed of one brand. Sources backed
// by exported documents implement it; the Postgres source does not.
type OperationSource interface {
	LoadOperations(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error)
}

// OperationFileName is the operation feed document name for brand, e.g.
// "stock_weeks_MLB_KIDS_operation.json".
func OperationFileName(brand domain.Brand) string {
	return "stock_weeks_" + brand.FileKey() + "_operation.json"
}

// DecodeOperations reads an operation feed document: category, operation,
// year and month keys down to one entry per month. Null months decode to nil.
func DecodeOperations(r io.Reader, brand domain.Brand) (*domain.OperationFeed, error) {
	var raw map[string]map[string]map[string]map[string]*domain.OperationMonth
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode operation feed %s: %w", brand, err)
	}

	feed := domain.NewOperationFeed(brand)
	for category, ops := range raw {
		decoded := make(map[string]domain.OperationSeries, len(ops))
		for operation, years := range ops {
			series := make(domain.OperationSeries, len(years))
			for yearKey, months := range years {
				year, err := strconv.Atoi(yearKey)
				if err != nil {
					continue
				}
				entries := make(map[int]*domain.OperationMonth, len(months))
				for monthKey, entry := range months {
					month, err := strconv.Atoi(monthKey)
					if err != nil || month < 1 || month > 12 {
						return nil, fmt.Errorf("decode operation feed %s %s/%s year %d: invalid month key %q",
							brand, category, operation, year, monthKey)
					}
					entries[month] = entry
				}
				series[year] = entries
			}
			decoded[operation] = series
		}
		feed.Categories[category] = decoded
	}
	return feed, nil
}

// ApplyOperations returns a copy of feed without the excluded years. Missing
// months are never filled: the exporter already pads every year.
func (f Filter) ApplyOperations(feed *domain.OperationFeed) *domain.OperationFeed {
	if feed == nil {
		return nil
	}

	excluded := make(map[int]bool, len(f.ExcludedYears))
	for _, y := range f.ExcludedYears {
		excluded[y] = true
	}

	out := domain.NewOperationFeed(feed.Brand)
	for category, ops := range feed.Categories {
		next := make(map[string]domain.OperationSeries, len(ops))
		for operation, series := range ops {
			copied := make(domain.OperationSeries, len(series))
			for year, months := range series {
				if excluded[year] {
					continue
				}
				entries := make(map[int]*domain.OperationMonth, len(months))
				for month, entry := range months {
					if entry != nil {
						v := *entry
						entry = &v
					}
					entries[month] = entry
				}
				copied[year] = entries
			}
			next[operation] = copied
		}
		out.Categories[category] = next
	}
	return out
}

// LoadAllOperations is LoadAll for operation feeds.
func LoadAllOperations(ctx context.Context, src OperationSource, brands []domain.Brand, filter Filter) (map[domain.Brand]*domain.OperationFeed, error) {
	var (
		mu    sync.Mutex
		feeds = make(map[domain.Brand]*domain.OperationFeed, len(brands))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, brand := range brands {
		brand := brand
		g.Go(func() error {
			raw, err := src.LoadOperations(gctx, brand)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					log.Warn().Err(err).Str("brand", string(brand)).Msg("no operation feed for brand")
					return nil
				}
				return fmt.Errorf("load operations %s: %w", brand, err)
			}

			filtered := filter.ApplyOperations(raw)
			mu.Lock()
			feeds[brand] = filtered
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}
