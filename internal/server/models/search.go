package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/userdirectory/internal/common"
)

// Search defaults applied by the HTTP layer when a parameter is absent.
const (
	DefaultSort  = ColumnID
	DefaultPage  = 1
	DefaultLimit = 5
)

// SearchParams describes one page of a filtered, ordered user listing.
//
// Search is matched case-insensitively as a substring of first_name,
// last_name or city; empty means no filter. Sort names a field, optionally
// prefixed with "-" for descending order.
type SearchParams struct {
	Search string
	Sort   string
	Page   int
	Limit  int
}

// Validate rejects pages and limits below one.
func (p SearchParams) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", common.ErrorValidation, p.Page)
	}
	if p.Limit < 1 {
		return fmt.Errorf("%w: limit must be >= 1, got %d", common.ErrorValidation, p.Limit)
	}
	return nil
}

// Offset is the number of matching rows skipped before this page. ok is
// false when (page-1)*limit does not fit in an int64; no table holds that
// many rows, so such a page lies past the end of any result.
func (p SearchParams) Offset() (offset uint64, ok bool) {
	if p.Page < 1 || p.Limit < 1 {
		return 0, false
	}
	skip, limit := uint64(p.Page-1), uint64(p.Limit)
	if skip > math.MaxInt64/limit {
		return 0, false
	}
	return skip * limit, true
}

// SortKey splits Sort into the field name and the direction.
func (p SearchParams) SortKey() (field string, desc bool) {
	field = strings.TrimSpace(p.Sort)
	if strings.HasPrefix(field, "-") {
		return field[1:], true
	}
	return field, false
}
