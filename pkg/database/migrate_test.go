package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/logger"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var migrationFS = fstest.MapFS{
	"002_indexes.up.sql":   {Data: []byte("CREATE INDEX idx ON products (name)")},
	"001_catalog.up.sql":   {Data: []byte("CREATE TABLE products (id TEXT)")},
	"001_catalog.down.sql": {Data: []byte("DROP TABLE products")},
	"README.md":            {Data: []byte("notes")},
}

func TestUpMigrations_SortedAndFiltered(t *testing.T) {
	versions, err := upMigrations(migrationFS)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_catalog.up.sql", "002_indexes.up.sql"}, versions)
}

func TestRunMigrations_AppliesPendingSkipsApplied(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	mock.ExpectQuery(regexp.QuoteMeta(migrationApplied)).WithArgs("001_catalog.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(regexp.QuoteMeta(migrationApplied)).WithArgs("002_indexes.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx ON products (name)")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta(recordMigration)).WithArgs("002_indexes.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := RunMigrations(context.Background(), mock, migrationFS, logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SQLErrorRollsBackWithoutRetry(t *testing.T) {
	mock := newMock(t)
	single := fstest.MapFS{"001_catalog.up.sql": {Data: []byte("CREATE TABLE broken (")}}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta(migrationApplied)).WithArgs("001_catalog.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken (")).
		WillReturnError(errors.New("syntax error at end of input"))
	mock.ExpectRollback()

	err := RunMigrations(context.Background(), mock, single, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 001_catalog.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
