package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/dbx"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const table = "users"

// Dialect carries the per-database differences the repository has to know.
type Dialect struct {
	Placeholder sq.PlaceholderFormat
	// SyncIDSequence, if set, runs after an insert with a caller-assigned id
	// so later generated ids do not collide with it.
	SyncIDSequence string
}

var (
	SQLite = Dialect{Placeholder: sq.Question}

	Postgres = Dialect{
		Placeholder:    sq.Dollar,
		SyncIDSequence: `SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))`,
	}
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect Dialect
	sb      sq.StatementBuilderType
}

func NewSQLRepository(db dbx.DBTX, dialect Dialect) *SQLRepository {
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
	}
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := r.sb.Select(models.Columns...).
		From(table).
		Where(sq.Eq{models.ColumnID: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query, args, err := r.sb.Insert(table).
		SetMap(user.InsertRow()).
		Suffix("RETURNING " + models.ColumnID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	explicitID := user.ID != 0

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user with id %d: %w", user.ID, common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if explicitID && r.dialect.SyncIDSequence != "" {
		if _, err := r.db.ExecContext(ctx, r.dialect.SyncIDSequence); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	return user, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, changes models.Changes) error {
	if len(changes) == 0 {
		return nil
	}

	query, args, err := r.sb.Update(table).
		SetMap(changes).
		Where(sq.Eq{models.ColumnID: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete(table).
		Where(sq.Eq{models.ColumnID: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return false
}
