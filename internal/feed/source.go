package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/drive"
	"github.com/andresuchdata/stockweeks/internal/repository"
	"github.com/andresuchdata/stockweeks/internal/storage"
)

// ErrNotFound is returned when a source has no feed for a brand.
var ErrNotFound = errors.New("feed not found")

// Source loads the raw feed of one brand.
type Source interface {
	Load(ctx context.Context, brand domain.Brand) (*domain.BrandFeed, error)
}

// FileName is the feed document name for brand, e.g. "stock_weeks_MLB_KIDS.json".
func FileName(brand domain.Brand) string {
	return "stock_weeks_" + brand.FileKey() + ".json"
}

// FileSource reads feeds from a local directory.
type FileSource struct {
	Dir string
}

func (s FileSource) Load(ctx context.Context, brand domain.Brand) (*domain.BrandFeed, error) {
	f, err := s.open(FileName(brand))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, brand)
}

func (s FileSource) LoadOperations(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
	f, err := s.open(OperationFileName(brand))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeOperations(f, brand)
}

func (s FileSource) open(name string) (io.ReadCloser, error) {
	p := filepath.Join(s.Dir, name)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("open feed %s: %w", p, err)
	}
	return f, nil
}

// ObjectSource reads feeds from an S3-compatible bucket.
type ObjectSource struct {
	Storage storage.ObjectStorage
	Prefix  string
}

func (s ObjectSource) Load(ctx context.Context, brand domain.Brand) (*domain.BrandFeed, error) {
	body, err := s.open(ctx, FileName(brand))
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return Decode(body, brand)
}

func (s ObjectSource) LoadOperations(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
	body, err := s.open(ctx, OperationFileName(brand))
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return DecodeOperations(body, brand)
}

func (s ObjectSource) open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(s.Prefix, name)
	body, err := s.Storage.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return body, nil
}

// DriveFiles is the subset of the Drive client used to fetch feeds.
type DriveFiles interface {
	FindFile(ctx context.Context, folderID, name string) (*drive.File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// DriveSource reads feeds from a Google Drive folder.
type DriveSource struct {
	Files    DriveFiles
	FolderID string
}

func (s DriveSource) Load(ctx context.Context, brand domain.Brand) (*domain.BrandFeed, error) {
	buf, err := s.download(ctx, FileName(brand))
	if err != nil {
		return nil, err
	}
	return Decode(buf, brand)
}

func (s DriveSource) LoadOperations(ctx context.Context, brand domain.Brand) (*domain.OperationFeed, error) {
	buf, err := s.download(ctx, OperationFileName(brand))
	if err != nil {
		return nil, err
	}
	return DecodeOperations(buf, brand)
}

func (s DriveSource) download(ctx context.Context, name string) (*bytes.Buffer, error) {
	file, err := s.Files.FindFile(ctx, s.FolderID, name)
	if err != nil {
		if errors.Is(err, drive.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.Files.DownloadFile(ctx, file.ID, &buf); err != nil {
		return nil, fmt.Errorf("download feed %s: %w", name, err)
	}
	return &buf, nil
}

// PostgresSource reads feeds from the stock_weeks_base_figures table.
type PostgresSource struct {
	Repo          repository.BaseFiguresRepository
	ExcludedYears []int
}

func (s PostgresSource) Load(ctx context.Context, brand domain.Brand) (*domain.BrandFeed, error) {
	rows, err := s.Repo.ListByBrand(ctx, brand, s.ExcludedYears)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, brand)
	}
	return FromRows(brand, rows), nil
}
