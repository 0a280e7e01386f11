package users

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
)

// sortColumns maps the sort keys accepted from clients to columns.
var sortColumns = map[string]string{
	"id":           models.ColumnID,
	"first_name":   models.ColumnFirstName,
	"last_name":    models.ColumnLastName,
	"company_name": models.ColumnCompanyName,
	"city":         models.ColumnCity,
	"state":        models.ColumnState,
	"zip":          models.ColumnZip,
	"email":        models.ColumnEmail,
	"web":          models.ColumnWeb,
	"age":          models.ColumnAge,
}

// searchColumns are matched by the free-text search.
var searchColumns = []string{
	models.ColumnFirstName,
	models.ColumnLastName,
	models.ColumnCity,
}

// Sortable reports whether field is a known sort key.
func Sortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// orderBy returns the ORDER BY terms for a sort expression such as "-age".
// Unknown fields order by id. The id tie-breaker keeps pages stable.
func orderBy(p models.SearchParams) []string {
	field, desc := p.SortKey()

	col, ok := sortColumns[field]
	if !ok || col == models.ColumnID {
		if ok && desc {
			return []string{models.ColumnID + " DESC"}
		}
		return []string{models.ColumnID + " ASC"}
	}

	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return []string{col + dir, models.ColumnID + " ASC"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchFilter matches text literally and case-insensitively against any of
// the searchable columns. Surrounding whitespace is part of the pattern.
// It returns nil for empty text.
func searchFilter(text string) sq.Sqlizer {
	if text == "" {
		return nil
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"

	or := make(sq.Or, 0, len(searchColumns))
	for _, col := range searchColumns {
		or = append(or, sq.Expr(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col), pattern))
	}
	return or
}

func (r *SQLRepository) Search(ctx context.Context, p models.SearchParams) ([]models.User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	offset, ok := p.Offset()
	if !ok {
		return nil, common.ErrorNotFound
	}

	b := r.sb.Select(models.Columns...).From(table)
	if f := searchFilter(p.Search); f != nil {
		b = b.Where(f)
	}

	query, args, err := b.OrderBy(orderBy(p)...).
		Limit(uint64(p.Limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(users) == 0 {
		return nil, common.ErrorNotFound
	}

	return users, nil
}
