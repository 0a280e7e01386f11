package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/services"
)

// Creator decodes and stores a batch of users, one transaction per row.
type Creator interface {
	CreateUsersJSON(ctx context.Context, batch []json.RawMessage) (*services.CreateResult, error)
}

type Seeder struct {
	users  Creator
	logger logging.Logger
}

func NewSeeder(users Creator, logger logging.Logger) *Seeder {
	return &Seeder{users: users, logger: logger.With("module", "seed")}
}

// Run loads every user in src. Rows that are mistyped or rejected by the
// store are logged and skipped; only an unreadable source or a storage
// fault fails the run.
func (s *Seeder) Run(ctx context.Context, src Source) (*services.CreateResult, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer rc.Close()

	var batch []json.RawMessage
	if err := json.NewDecoder(rc).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}

	s.logger.Info(ctx, "seeding users", "source", src.String(), "rows", len(batch))

	res, err := s.users.CreateUsersJSON(ctx, batch)
	if err != nil && (res == nil || !errors.Is(err, common.ErrorValidation)) {
		return res, err
	}

	for _, f := range res.Failed {
		s.logger.Warn(ctx, "row skipped", "index", f.Index, "id", f.ID, "error", f.Error)
	}
	s.logger.Info(ctx, "seeding finished", "created", len(res.Created), "failed", len(res.Failed))

	return res, nil
}
