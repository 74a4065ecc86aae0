package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/database"
)

func newTestBrowse(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(database.New(db)), mock
}

func TestBrowse_InvalidSort(t *testing.T) {
	svc, _ := newTestBrowse(t)
	_, err := svc.Browse(context.Background(), BrowseParams{Sort: "bogus"})
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidInput, apperr.CodeOf(err))
}

func TestBrowse_DefaultsLimitWhenOutOfRange(t *testing.T) {
	svc, mock := newTestBrowse(t)
	cols := []string{
		"product_id", "product_name", "aisle_id", "aisle", "department_id", "department",
		"description", "price", "image_url", "popularity", "rating",
	}
	mock.ExpectQuery(`SELECT .* FROM products p`).
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery(`SELECT count\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	page, err := svc.Browse(context.Background(), BrowseParams{Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, int32(20), page.Limit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	svc, mock := newTestBrowse(t)
	mock.ExpectQuery(`SELECT .* FROM products p`).WithArgs(int32(999)).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.GetByID(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestBatchByIDs_EmptyReturnsNil(t *testing.T) {
	svc, _ := newTestBrowse(t)
	items, err := svc.BatchByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, items)
}
