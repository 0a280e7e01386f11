// Package users stores user records in the users table and answers the
// listing and aggregate queries over it.
package users

import (
	"context"

	"github.com/dmitrijs2005/userdirectory/internal/server/models"
)

type Repository interface {
	Search(ctx context.Context, p models.SearchParams) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, changes models.Changes) error
	Delete(ctx context.Context, id int64) error

	AverageAge(ctx context.Context) (*float64, error)
	CountDistinct(ctx context.Context, column string) (int64, error)
	CountByCity(ctx context.Context) ([]models.CityCount, error)
	CountByCompany(ctx context.Context) ([]models.CompanyCount, error)
	CountByAgeRange(ctx context.Context) ([]models.AgeRangeCount, error)
}
