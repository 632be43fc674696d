package feed

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stockweeks/internal/config"
	"github.com/andresuchdata/stockweeks/internal/drive"
	"github.com/andresuchdata/stockweeks/internal/repository"
	"github.com/andresuchdata/stockweeks/internal/repository/postgres"
	"github.com/andresuchdata/stockweeks/internal/storage"
)

// CloseFunc releases whatever a Source holds open.
type CloseFunc func() error

func noopClose() error { return nil }

// NewSource builds the Source selected by cfg.Feed.Source. The returned
// CloseFunc is never nil and must be called once the source is no longer used.
func NewSource(ctx context.Context, cfg *config.Config) (Source, CloseFunc, error) {
	switch cfg.Feed.Source {
	case "", "file":
		return FileSource{Dir: cfg.Feed.Dir}, noopClose, nil

	case "s3":
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, noopClose, err
		}
		return ObjectSource{Storage: client, Prefix: cfg.Feed.Prefix}, noopClose, nil

	case "drive":
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, noopClose, err
		}
		folderID := cfg.Drive.FolderID
		if folderID == "" && cfg.Drive.FolderPath != "" {
			if folderID, err = svc.FindFolderByPath(ctx, cfg.Drive.FolderPath); err != nil {
				return nil, noopClose, err
			}
		}
		return DriveSource{Files: svc, FolderID: folderID}, noopClose, nil

	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, noopClose, err
		}
		return PostgresSource{
			Repo:          repository.NewBaseFiguresRepository(db),
			ExcludedYears: cfg.Feed.ExcludedYears,
		}, closeDB(db), nil
	}

	return nil, noopClose, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
}

func closeDB(db *postgres.DB) CloseFunc {
	return func() error {
		if err := db.Close(); err != nil {
			return fmt.Errorf("close feed database: %w", err)
		}
		return nil
	}
}

// FilterFromConfig returns the feed filter configured for cfg.
func FilterFromConfig(cfg config.FeedConfig) Filter {
	return Filter{
		ExcludedYears:     cfg.ExcludedYears,
		FillMissingMonths: cfg.FillMissingMonths,
	}
}
