// Package services contains server-side business logic. UserService runs
// the directory queries and mutations, AuthService the admin login.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/dbx"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
	"github.com/dmitrijs2005/userdirectory/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userdirectory/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
)

// RowFailure describes one batch row that could not be stored.
type RowFailure struct {
	Index int    `json:"index"`
	ID    int64  `json:"id,omitempty"`
	Error string `json:"error"`
}

// CreateResult reports the outcome of a batch create. Both lists are
// always non-nil.
type CreateResult struct {
	Created []models.User `json:"created"`
	Failed  []RowFailure  `json:"failed"`
}

type UserService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "users"),
	}
}

// Search returns one page of users matching p. An unknown sort field is
// logged and ordering falls back to id.
func (s *UserService) Search(ctx context.Context, p models.SearchParams) ([]models.User, error) {
	if field, _ := p.SortKey(); field != "" && !users.Sortable(field) {
		s.logger.Warn(ctx, "unknown sort field, ordering by id", "sort", p.Sort)
	}
	return s.repomanager.Users(s.db).Search(ctx, p)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// CreateUsers stores each row in its own transaction so one bad row does not
// abort the batch. When a non-empty batch produced no rows at all the result
// is returned together with an error: common.ErrorValidation when every row
// was rejected for its content, otherwise the first storage fault.
func (s *UserService) CreateUsers(ctx context.Context, batch []models.User) (*CreateResult, error) {
	rows := make([]batchRow, len(batch))
	for i := range batch {
		rows[i].user = batch[i]
	}
	return s.createBatch(ctx, rows)
}

// CreateUsersJSON is CreateUsers for undecoded batch elements. Each element
// is decoded on its own; one that does not decode into a user is recorded
// as a failed row and the rest are still stored.
func (s *UserService) CreateUsersJSON(ctx context.Context, batch []json.RawMessage) (*CreateResult, error) {
	rows := make([]batchRow, len(batch))
	for i, raw := range batch {
		rows[i].user, rows[i].err = models.DecodeUser(raw)
	}
	return s.createBatch(ctx, rows)
}

// batchRow is one element of a create batch; err is set when it failed to decode.
type batchRow struct {
	user models.User
	err  error
}

func (s *UserService) createBatch(ctx context.Context, rows []batchRow) (*CreateResult, error) {
	res := &CreateResult{
		Created: make([]models.User, 0, len(rows)),
		Failed:  []RowFailure{},
	}

	var internalErr error
	for i, row := range rows {
		err := row.err
		if err == nil {
			var stored *models.User
			if stored, err = s.createOne(ctx, row.user); err == nil {
				res.Created = append(res.Created, *stored)
				continue
			}
		}

		s.logger.Error(ctx, "create user failed", "index", i, "id", row.user.ID, "error", err)

		msg := "internal server error"
		if errors.Is(err, common.ErrorConflict) || errors.Is(err, common.ErrorValidation) {
			msg = err.Error()
		} else if internalErr == nil {
			internalErr = err
		}
		res.Failed = append(res.Failed, RowFailure{Index: i, ID: row.user.ID, Error: msg})
	}

	if len(rows) > 0 && len(res.Created) == 0 {
		if internalErr != nil {
			return res, internalErr
		}
		return res, fmt.Errorf("%w: no users were created", common.ErrorValidation)
	}

	return res, nil
}

func (s *UserService) createOne(ctx context.Context, u models.User) (*models.User, error) {
	var stored *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		created, err := repo.Create(ctx, &u)
		if err != nil {
			return err
		}
		stored, err = repo.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Update overwrites every column of user id; fields absent from the body
// become NULL.
func (s *UserService) Update(ctx context.Context, id int64, fields models.Fields) (*models.User, error) {
	return s.apply(ctx, id, fields, true)
}

// Patch overwrites only the fields present in the body.
func (s *UserService) Patch(ctx context.Context, id int64, fields models.Fields) (*models.User, error) {
	return s.apply(ctx, id, fields, false)
}

func (s *UserService) apply(ctx context.Context, id int64, fields models.Fields, replace bool) (*models.User, error) {
	changes, err := fields.Changes(replace)
	if err != nil {
		return nil, err
	}

	var updated *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if err := repo.Update(ctx, id, changes); err != nil {
			return err
		}
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

// Statistics runs all aggregate passes in one transaction so they observe
// the same snapshot.
func (s *UserService) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var err error
		if stats.AverageAge, err = repo.AverageAge(ctx); err != nil {
			return err
		}
		if stats.TotalCities, err = repo.CountDistinct(ctx, models.ColumnCity); err != nil {
			return err
		}
		if stats.TotalCompanies, err = repo.CountDistinct(ctx, models.ColumnCompanyName); err != nil {
			return err
		}
		if stats.CountByCity, err = repo.CountByCity(ctx); err != nil {
			return err
		}
		if stats.CountByCompany, err = repo.CountByCompany(ctx); err != nil {
			return err
		}
		stats.AgeRanges, err = repo.CountByAgeRange(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
