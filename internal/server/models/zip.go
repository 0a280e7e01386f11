package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ZipCode is stored as text. Older data sets carry zips as JSON numbers, so
// decoding accepts both forms; encoding always yields a string.
type ZipCode string

func (z *ZipCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*z = ZipCode(s)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("zip must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("zip must be an integer, got %s", n.String())
	}
	*z = ZipCode(n.String())
	return nil
}

func (z *ZipCode) value() any {
	if z == nil {
		return nil
	}
	return string(*z)
}
