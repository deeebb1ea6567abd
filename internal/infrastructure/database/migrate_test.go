package database

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_menus.sql":     {Data: []byte("SELECT 2")},
		"migrations/001_hierarchy.sql": {Data: []byte("SELECT 1")},
		"migrations/README.md":         {Data: []byte("skip")},
	}

	got, err := Discover(fsys, "migrations")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "001", got[0].Version)
	assert.Equal(t, "migrations/002_menus.sql", got[1].Path)
}

func TestDiscover_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/001_a.sql": {Data: []byte("SELECT 1")},
		"migrations/001_b.sql": {Data: []byte("SELECT 1")},
	}
	_, err := Discover(fsys, "migrations")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := Discover(Migrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "001", got[0].Version)
}

func TestMigrate_SkipsApplied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fsys := fstest.MapFS{
		"migrations/001_init.sql":  {Data: []byte("CREATE TABLE a (id INT)")},
		"migrations/002_menus.sql": {Data: []byte("CREATE TABLE b (id INT)")},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(mock.NewRows([]string{"version"}).AddRow("001"))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("002").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	applied, err := Migrate(context.Background(), mock, fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"002"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionString(t *testing.T) {
	cfg := &DBConfig{Host: "db", Port: 5432, Username: "cms", Password: "p@ss", DBName: "cms", SSLMode: "disable"}
	assert.Equal(t, "postgresql://cms:p%40ss@db:5432/cms?sslmode=disable", cfg.ConnectionString())
}
