package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/stockweeks/internal/domain"
	"github.com/andresuchdata/stockweeks/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var figureColumns = []string{
	"brand", "category", "sub_category", "year", "month", "days_in_month",
	"total_stock_value", "wholesale_stock_value", "direct_stock_value",
	"total_sales_value", "wholesale_sales_value", "direct_sales_value", "has_figures",
}

func newRepo(t *testing.T) (BaseFiguresRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewBaseFiguresRepository(postgres.Wrap(sqlx.NewDb(mockDB, "postgres"), 2)), mock
}

func TestListByBrand(t *testing.T) {
	repo, mock := newRepo(t)

	rows := sqlmock.NewRows(figureColumns).
		AddRow("MLB", "Shoes", "", 2025, 1, 31, 900000.0, 300000.0, 600000.0, 210000.0, 70000.0, 140000.0, true).
		AddRow("MLB", "Shoes", "Sneakers", 2025, 1, 31, 500000.0, 0.0, 500000.0, 100000.0, 0.0, 100000.0, true).
		AddRow("MLB", "Shoes", "", 2025, 2, 0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, false)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stock_weeks_base_figures")).
		WithArgs("MLB", sqlmock.AnyArg()).
		WillReturnRows(rows)

	got, err := repo.ListByBrand(context.Background(), domain.BrandMLB, []int{2023})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Shoes", got[0].Category)
	assert.Equal(t, "", got[0].SubCategory)
	assert.Equal(t, 2025, got[0].Year)
	assert.Equal(t, 31, got[0].DaysInMonth)
	assert.Equal(t, 900000.0, got[0].TotalStockValue)
	assert.Equal(t, 140000.0, got[0].DirectSalesValue)
	assert.True(t, got[0].HasFigures)
	assert.Equal(t, "Sneakers", got[1].SubCategory)
	assert.False(t, got[2].HasFigures)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByBrand_WithoutExclusions(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE brand = $1 ORDER BY")).
		WithArgs("DISCOVERY").
		WillReturnRows(sqlmock.NewRows(figureColumns))

	got, err := repo.ListByBrand(context.Background(), domain.BrandDiscovery, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListByBrand_QueryError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByBrand(context.Background(), domain.BrandMLB, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListBrands(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT brand")).
		WillReturnRows(sqlmock.NewRows([]string{"brand"}).AddRow("DISCOVERY").AddRow("MLB"))

	got, err := repo.ListBrands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DISCOVERY", "MLB"}, got)
}

func TestReplaceBrand(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stock_weeks_base_figures WHERE brand = $1")).
		WithArgs("MLB").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_weeks_base_figures")).
		WithArgs("MLB", "Bag", "", 2025, 2, 28, 10.0, 4.0, 6.0, 7.0, 3.0, 4.0, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock_weeks_base_figures")).
		WithArgs("MLB", "Bag", "", 2025, 3, 0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.ReplaceBrand(context.Background(), domain.BrandMLB, []BaseFiguresRow{
		{
			Brand:      "ignored",
			Category:   "Bag",
			Year:       2025,
			Month:      2,
			HasFigures: true,
			BaseFigures: domain.BaseFigures{
				DaysInMonth: 28, TotalStockValue: 10, WholesaleStockValue: 4, DirectStockValue: 6,
				TotalSalesValue: 7, WholesaleSalesValue: 3, DirectSalesValue: 4,
			},
		},
		{Category: "Bag", Year: 2025, Month: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceBrand_RollsBack(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	n, err := repo.ReplaceBrand(context.Background(), domain.BrandMLB, nil)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS stock_weeks_base_figures")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ADD COLUMN IF NOT EXISTS has_figures")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
