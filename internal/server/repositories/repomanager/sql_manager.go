// Package repomanager provides a RepositoryManager for the supported SQL
// stores, wiring together repository constructors and database migrations
// (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/userdirectory/internal/dbx"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/config"
	"github.com/dmitrijs2005/userdirectory/internal/server/migrations"
	"github.com/dmitrijs2005/userdirectory/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends repositories for one database driver. Every
// repository it returns is wrapped with dbx.Traced.
type SQLRepositoryManager struct {
	dialect      users.Dialect
	gooseDialect string
	migrations   string
	system       string
	logger       logging.Logger
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(dbx.NewTraced(db, m.system, m.logger), m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations for the
// manager's dialect and runs them against db.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(m.gooseDialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.migrations); err != nil {
		return err
	}
	return nil
}

// NewRepositoryManager returns the manager for driver, one of
// config.DriverSQLite or config.DriverPostgres. logger may be nil.
func NewRepositoryManager(driver string, logger logging.Logger) (RepositoryManager, error) {
	switch driver {
	case config.DriverSQLite:
		return &SQLRepositoryManager{
			dialect:      users.SQLite,
			gooseDialect: "sqlite3",
			migrations:   migrations.DirSQLite,
			system:       "sqlite",
			logger:       logger,
		}, nil
	case config.DriverPostgres:
		return &SQLRepositoryManager{
			dialect:      users.Postgres,
			gooseDialect: "pgx",
			migrations:   migrations.DirPostgres,
			system:       "postgresql",
			logger:       logger,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
