package repository

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BaseFiguresRow is one row of stock_weeks_base_figures. SubCategory is empty
// for category-level figures. HasFigures is false for a month the feed lists
// without figures; its value columns are zero and must not be read as sales.
type BaseFiguresRow struct {
	Brand       string `db:"brand"`
	Category    string `db:"category"`
	SubCategory string `db:"sub_category"`
	Year        int    `db:"year"`
	Month       int    `db:"month"`
	HasFigures  bool   `db:"has_figures"`
	domain.BaseFigures
}

type BaseFiguresRepository interface {
	EnsureSchema(ctx context.Context) error
	ListBrands(ctx context.Context) ([]string, error)
	ListByBrand(ctx context.Context, brand domain.Brand, excludedYears []int) ([]BaseFiguresRow, error)
	ReplaceBrand(ctx context.Context, brand domain.Brand, rows []BaseFiguresRow) (int, error)
}

type baseFiguresRepository struct {
	db *postgres.DB
}

func NewBaseFiguresRepository(db *postgres.DB) BaseFiguresRepository {
	return &baseFiguresRepository{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS stock_weeks_base_figures (
	brand                 TEXT             NOT NULL,
	category              TEXT             NOT NULL,
	sub_category          TEXT             NOT NULL DEFAULT '',
	year                  INTEGER          NOT NULL,
	month                 INTEGER          NOT NULL CHECK (month BETWEEN 1 AND 12),
	days_in_month         INTEGER          NOT NULL DEFAULT 0,
	total_stock_value     DOUBLE PRECISION NOT NULL DEFAULT 0,
	wholesale_stock_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	direct_stock_value    DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_sales_value     DOUBLE PRECISION NOT NULL DEFAULT 0,
	wholesale_sales_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	direct_sales_value    DOUBLE PRECISION NOT NULL DEFAULT 0,
	has_figures           BOOLEAN          NOT NULL DEFAULT TRUE,
	PRIMARY KEY (brand, category, sub_category, year, month)
)`

const selectColumns = `brand, category, sub_category, year, month, days_in_month,
	total_stock_value, wholesale_stock_value, direct_stock_value,
	total_sales_value, wholesale_sales_value, direct_sales_value, has_figures`

// Tables created before has_figures existed only hold months with figures.
const migrateSQL = `ALTER TABLE stock_weeks_base_figures
	ADD COLUMN IF NOT EXISTS has_figures BOOLEAN NOT NULL DEFAULT TRUE`

func (r *baseFiguresRepository) EnsureSchema(ctx context.Context) error {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error creating base figures table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, migrateSQL); err != nil {
		return fmt.Errorf("error migrating base figures table: %w", err)
	}
	return nil
}

func (r *baseFiguresRepository) ListBrands(ctx context.Context) ([]string, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var brands []string
	query := `SELECT DISTINCT brand FROM stock_weeks_base_figures ORDER BY brand`
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("error listing brands: %w", err)
	}
	return brands, nil
}

func (r *baseFiguresRepository) ListByBrand(ctx context.Context, brand domain.Brand, excludedYears []int) ([]BaseFiguresRow, error) {
	release, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	query := `SELECT ` + selectColumns + `
		FROM stock_weeks_base_figures
		WHERE brand = $1`
	args := []interface{}{string(brand)}

	if len(excludedYears) > 0 {
		query += ` AND NOT (year = ANY($2::int[]))`
		args = append(args, intArray(excludedYears))
	}
	query += ` ORDER BY category, sub_category, year, month`

	var rows []BaseFiguresRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error listing base figures for %s: %w", brand, err)
	}
	return rows, nil
}

const upsertSQL = `
INSERT INTO stock_weeks_base_figures (` + selectColumns + `)
VALUES (:brand, :category, :sub_category, :year, :month, :days_in_month,
	:total_stock_value, :wholesale_stock_value, :direct_stock_value,
	:total_sales_value, :wholesale_sales_value, :direct_sales_value, :has_figures)`

// ReplaceBrand swaps every row of brand for rows in one transaction.
func (r *baseFiguresRepository) ReplaceBrand(ctx context.Context, brand domain.Brand, rows []BaseFiguresRow) (int, error) {
	written := 0
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stock_weeks_base_figures WHERE brand = $1`, string(brand)); err != nil {
			return fmt.Errorf("error clearing base figures for %s: %w", brand, err)
		}
		for _, row := range rows {
			row.Brand = string(brand)
			if _, err := tx.NamedExecContext(ctx, upsertSQL, row); err != nil {
				return fmt.Errorf("error inserting %s/%s %d-%02d: %w", row.Category, row.SubCategory, row.Year, row.Month, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func intArray(values []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(values))
	for i, v := range values {
		arr[i] = int64(v)
	}
	return arr
}
