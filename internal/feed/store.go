package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// LoadAll loads brands concurrently and applies filter to each feed. Brands
// the source has no feed for are skipped; any other failure aborts the load.
func LoadAll(ctx context.Context, src Source, brands []domain.Brand, filter Filter) (map[domain.Brand]*domain.BrandFeed, error) {
	var (
		mu    sync.Mutex
		feeds = make(map[domain.Brand]*domain.BrandFeed, len(brands))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, brand := range brands {
		brand := brand
		g.Go(func() error {
			raw, err := src.Load(gctx, brand)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					log.Warn().Err(err).Str("brand", string(brand)).Msg("no feed for brand")
					return nil
				}
				return fmt.Errorf("load %s: %w", brand, err)
			}

			filtered := filter.Apply(raw)
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

// Store holds the loaded feeds. Readers get the snapshot current at the time
// of the call; Replace swaps the whole snapshot.
type Store struct {
	mu         sync.RWMutex
	feeds      map[domain.Brand]*domain.BrandFeed
	operations map[domain.Brand]*domain.OperationFeed
	loadedAt   time.Time
}

func NewStore() *Store {
	return &Store{
		feeds:      make(map[domain.Brand]*domain.BrandFeed),
		operations: make(map[domain.Brand]*domain.OperationFeed),
	}
}

// Get returns the feed of brand. Callers must not modify it.
func (s *Store) Get(brand domain.Brand) (*domain.BrandFeed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.feeds[brand]
	return f, ok
}

// Brands returns the loaded brands in display order.
func (s *Store) Brands() []domain.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	brands := make([]domain.Brand, 0, len(s.feeds))
	for _, b := range domain.Brands {
		if _, ok := s.feeds[b]; ok {
			brands = append(brands, b)
		}
	}
	return brands
}

func (s *Store) Replace(feeds map[domain.Brand]*domain.BrandFeed) {
	snapshot := make(map[domain.Brand]*domain.BrandFeed, len(feeds))
	for b, f := range feeds {
		snapshot[b] = f
	}

	s.mu.Lock()
	s.feeds = snapshot
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Operations returns the operation feed of brand. Callers must not modify it.
func (s *Store) Operations(brand domain.Brand) (*domain.OperationFeed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.operations[brand]
	return f, ok
}

// ReplaceOperations swaps the operation feed snapshot.
func (s *Store) ReplaceOperations(feeds map[domain.Brand]*domain.OperationFeed) {
	snapshot := make(map[domain.Brand]*domain.OperationFeed, len(feeds))
	for b, f := range feeds {
		snapshot[b] = f
	}

	s.mu.Lock()
	s.operations = snapshot
	s.mu.Unlock()
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Loader reloads a Store from a Source.
type Loader struct {
	Source Source
	Filter Filter
	Brands []domain.Brand
}

// Reload loads every brand and replaces the store snapshot. When the source
// also serves operation feeds those are reloaded with it. The store is left
// untouched when loading fails.
func (l *Loader) Reload(ctx context.Context, store *Store) (int, error) {
	brands := l.Brands
	if len(brands) == 0 {
		brands = domain.Brands
	}

	start := time.Now()
	feeds, err := LoadAll(ctx, l.Source, brands, l.Filter)
	if err != nil {
		return 0, err
	}

	var operations map[domain.Brand]*domain.OperationFeed
	if ops, ok := l.Source.(OperationSource); ok {
		if operations, err = LoadAllOperations(ctx, ops, brands, l.Filter); err != nil {
			return 0, err
		}
	}
	store.Replace(feeds)
	store.ReplaceOperations(operations)

	log.Info().
		Int("brands", len(feeds)).
		Int("operation_feeds", len(operations)).
		Dur("took", time.Since(start)).
		Msg("feeds reloaded")
	return len(feeds), nil
}
