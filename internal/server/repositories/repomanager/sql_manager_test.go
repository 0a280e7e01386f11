package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userdirectory/internal/server/config"
	"github.com/dmitrijs2005/userdirectory/internal/server/migrations"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
	"github.com/dmitrijs2005/userdirectory/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewRepositoryManager(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		m, err := NewRepositoryManager(driver, nil)
		require.NoError(t, err, driver)
		var _ RepositoryManager = m
	}

	_, err := NewRepositoryManager("mysql", nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestUsers_ReturnsRepository(t *testing.T) {
	db, _ := newDB(t)

	m, err := NewRepositoryManager(config.DriverPostgres, nil)
	require.NoError(t, err)

	var r users.Repository = m.Users(sqlx.NewDb(db, "sqlmock"))
	assert.NotNil(t, r)
}

func TestRunMigrations_UsesDialectDirectory(t *testing.T) {
	db, _ := newDB(t)

	tests := []struct {
		driver string
		dir    string
	}{
		{config.DriverSQLite, migrations.DirSQLite},
		{config.DriverPostgres, migrations.DirPostgres},
	}

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	for _, tt := range tests {
		var gotDir string
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			gotDir = dir
			if len(opts) != 0 {
				return errors.New("unexpected opts")
			}
			return nil
		}

		m, err := NewRepositoryManager(tt.driver, nil)
		require.NoError(t, err)
		require.NoError(t, m.RunMigrations(context.Background(), db))
		assert.Equal(t, tt.dir, gotDir)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m, err := NewRepositoryManager(config.DriverSQLite, nil)
	require.NoError(t, err)
	assert.EqualError(t, m.RunMigrations(context.Background(), db), "boom")
}

func TestRunMigrations_SQLiteEndToEnd(t *testing.T) {
	db, err := sqlx.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	m, err := NewRepositoryManager(config.DriverSQLite, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx, db.DB))
	// a second run is a no-op
	require.NoError(t, m.RunMigrations(ctx, db.DB))

	name := "Kris"
	u, err := m.Users(db).Create(ctx, &models.User{FirstName: &name})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
}
