package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/userdirectory/internal/common"
)

// Fields is a JSON object body of an update request, keyed by field name.
// Keeping the raw values lets callers tell an absent key from an explicit null.
type Fields map[string]json.RawMessage

// Changes maps users columns to the values an update writes.
type Changes map[string]any

type fieldKind int

const (
	kindString fieldKind = iota
	kindZip
	kindInt
)

// mutableColumns are the columns an update may write, with their JSON kind.
// The primary key is addressed by the request path and never rewritten.
var mutableColumns = []struct {
	name string
	kind fieldKind
}{
	{ColumnFirstName, kindString},
	{ColumnLastName, kindString},
	{ColumnCompanyName, kindString},
	{ColumnCity, kindString},
	{ColumnState, kindString},
	{ColumnZip, kindZip},
	{ColumnEmail, kindString},
	{ColumnWeb, kindString},
	{ColumnAge, kindInt},
}

// Changes validates f and converts it to column values.
//
// With replace set every mutable column is written and absent keys become
// NULL (PUT). Otherwise only keys present in f are written (PATCH). Unknown
// keys and "id" are ignored. A value of the wrong JSON type yields an error
// wrapping common.ErrorValidation.
func (f Fields) Changes(replace bool) (Changes, error) {
	changes := make(Changes, len(mutableColumns))

	for _, col := range mutableColumns {
		raw, ok := f[col.name]
		if !ok {
			if replace {
				changes[col.name] = nil
			}
			continue
		}

		v, err := decodeField(col.kind, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", common.ErrorValidation, col.name, err)
		}
		changes[col.name] = v
	}

	return changes, nil
}

func decodeField(kind fieldKind, raw json.RawMessage) (any, error) {
	switch kind {
	case kindZip:
		var z *ZipCode
		if err := json.Unmarshal(raw, &z); err != nil {
			return nil, err
		}
		return z.value(), nil
	case kindInt:
		var i *int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return nil, fmt.Errorf("must be an integer")
		}
		return derefInt(i), nil
	default:
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("must be a string")
		}
		return derefString(s), nil
	}
}

// DecodeUser decodes one element of a create batch. Anything other than a
// JSON object, or a field of the wrong type, is a validation error. The
// returned user still carries the fields that did decode, its id included.
func DecodeUser(raw json.RawMessage) (User, error) {
	var u User

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return u, fmt.Errorf("%w: user must be a JSON object", common.ErrorValidation)
	}
	if err := json.Unmarshal(trimmed, &u); err != nil {
		return u, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return u, nil
}
