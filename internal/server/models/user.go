// Package models holds the data types shared by repositories, services and
// the REST layer.
package models

// Column names of the users table.
const (
	ColumnID          = "id"
	ColumnFirstName   = "first_name"
	ColumnLastName    = "last_name"
	ColumnCompanyName = "company_name"
	ColumnCity        = "city"
	ColumnState       = "state"
	ColumnZip         = "zip"
	ColumnEmail       = "email"
	ColumnWeb         = "web"
	ColumnAge         = "age"
)

// Columns lists every users column in serialization order.
var Columns = []string{
	ColumnID,
	ColumnFirstName,
	ColumnLastName,
	ColumnCompanyName,
	ColumnCity,
	ColumnState,
	ColumnZip,
	ColumnEmail,
	ColumnWeb,
	ColumnAge,
}

// User is one row of the users table. Every field but ID is nullable and is
// serialized as JSON null when unset.
type User struct {
	ID          int64    `db:"id" json:"id"`
	FirstName   *string  `db:"first_name" json:"first_name"`
	LastName    *string  `db:"last_name" json:"last_name"`
	CompanyName *string  `db:"company_name" json:"company_name"`
	City        *string  `db:"city" json:"city"`
	State       *string  `db:"state" json:"state"`
	Zip         *ZipCode `db:"zip" json:"zip"`
	Email       *string  `db:"email" json:"email"`
	Web         *string  `db:"web" json:"web"`
	Age         *int64   `db:"age" json:"age"`
}

// InsertRow returns the column → value map used to insert u. The id column is
// omitted when ID is zero so the store assigns one.
func (u *User) InsertRow() map[string]any {
	row := map[string]any{
		ColumnFirstName:   derefString(u.FirstName),
		ColumnLastName:    derefString(u.LastName),
		ColumnCompanyName: derefString(u.CompanyName),
		ColumnCity:        derefString(u.City),
		ColumnState:       derefString(u.State),
		ColumnZip:         u.Zip.value(),
		ColumnEmail:       derefString(u.Email),
		ColumnWeb:         derefString(u.Web),
		ColumnAge:         derefInt(u.Age),
	}
	if u.ID != 0 {
		row[ColumnID] = u.ID
	}
	return row
}

// derefString and derefInt turn nil pointers into an untyped nil so drivers
// bind SQL NULL.
func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
