package db

import (
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReadMigrationsSortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_seed.sql":    {Data: []byte("INSERT INTO products VALUES (1)")},
		"001_catalog.sql": {Data: []byte("CREATE TABLE products (id INT)")},
		"README.md":       {Data: []byte("docs")},
		"draft.sql":       {Data: []byte("SELECT 1")},
		"x_notes.sql":     {Data: []byte("SELECT 2")},
	}
	migrations, err := ReadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Number)
	assert.Equal(t, "catalog", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Number)
	assert.Equal(t, "seed", migrations[1].Name)
}

func TestRunMigrationsSkipsApplied(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	fsys := fstest.MapFS{
		"001_catalog.sql": {Data: []byte("CREATE TABLE products (id INT)")},
		"002_seed.sql":    {Data: []byte("INSERT INTO products VALUES (1)")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schema_migrations").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schema_migrations").WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(2, "seed").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	database := Wrap(sqlDB, zaptest.NewLogger(t))
	require.NoError(t, database.RunMigrations(fsys))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	fsys := fstest.MapFS{"001_catalog.sql": {Data: []byte("CREATE TABLE broken")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = Wrap(sqlDB, nil).RunMigrations(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSSLDisabled(t *testing.T) {
	assert.Equal(t, "postgres://h/db?sslmode=disable", withSSLDisabled("postgres://h/db"))
	assert.Equal(t, "postgres://h/db?a=b&sslmode=disable", withSSLDisabled("postgres://h/db?a=b"))
}
