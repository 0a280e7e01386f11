package users

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
)

var ageRangeExpr = sq.Case().
	When("age BETWEEN 0 AND 18", "'"+models.AgeRangeChild+"'").
	When("age BETWEEN 19 AND 30", "'"+models.AgeRangeYoung+"'").
	When("age BETWEEN 31 AND 45", "'"+models.AgeRangeAdult+"'").
	When("age BETWEEN 46 AND 60", "'"+models.AgeRangeMiddle+"'").
	When("age > 60", "'"+models.AgeRangeSenior+"'").
	Else("'" + models.AgeRangeUnknown + "'")

// AverageAge returns nil when no row has an age.
func (r *SQLRepository) AverageAge(ctx context.Context) (*float64, error) {
	query, args, err := r.sb.Select("AVG(" + models.ColumnAge + ")").From(table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// CountDistinct counts the distinct non-null values of column, which must
// be one of models.Columns.
func (r *SQLRepository) CountDistinct(ctx context.Context, column string) (int64, error) {
	if !Sortable(column) {
		return 0, fmt.Errorf("unknown column %q", column)
	}

	query, args, err := r.sb.Select("COUNT(DISTINCT " + column + ")").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) CountByCity(ctx context.Context) ([]models.CityCount, error) {
	out := []models.CityCount{}
	if err := r.groupCount(ctx, &out, models.ColumnCity, "city"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLRepository) CountByCompany(ctx context.Context) ([]models.CompanyCount, error) {
	out := []models.CompanyCount{}
	if err := r.groupCount(ctx, &out, models.ColumnCompanyName, "company"); err != nil {
		return nil, err
	}
	return out, nil
}

// groupCount selects column AS alias with its row count, most common first.
func (r *SQLRepository) groupCount(ctx context.Context, dest any, column, alias string) error {
	query, args, err := r.sb.Select(column+" AS "+alias, "COUNT(*) AS user_count").
		From(table).
		GroupBy(column).
		OrderBy("user_count DESC", column+" ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CountByAgeRange buckets users by age. Only non-empty buckets are
// returned, in models.AgeRanges order.
func (r *SQLRepository) CountByAgeRange(ctx context.Context) ([]models.AgeRangeCount, error) {
	query, args, err := r.sb.Select().
		Column(sq.Alias(ageRangeExpr, "age_range")).
		Column("COUNT(*) AS user_count").
		From(table).
		GroupBy("age_range").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []models.AgeRangeCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.AgeRange] = row.UserCount
	}

	out := []models.AgeRangeCount{}
	for _, label := range models.AgeRanges {
		if n := counts[label]; n > 0 {
			out = append(out, models.AgeRangeCount{AgeRange: label, UserCount: n})
		}
	}
	return out, nil
}
