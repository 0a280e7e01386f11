package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipCode_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ZipCode
		wantErr bool
	}{
		{name: "string", in: `"07008"`, want: "07008"},
		{name: "number", in: `10001`, want: "10001"},
		{name: "float rejected", in: `100.5`, wantErr: true},
		{name: "bool rejected", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var z ZipCode
			err := json.Unmarshal([]byte(tt.in), &z)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, z)
		})
	}
}

func TestUser_JSONRoundTripKeepsNulls(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"first_name":"James","zip":70116,"age":41}`), &u))

	assert.Equal(t, int64(3), u.ID)
	require.NotNil(t, u.Zip)
	assert.Equal(t, ZipCode("70116"), *u.Zip)
	assert.Nil(t, u.City)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"first_name":"James","last_name":null,"company_name":null,
		"city":null,"state":null,"zip":"70116","email":null,"web":null,"age":41}`, string(b))
}

func TestUser_InsertRow(t *testing.T) {
	name := "Josephine"
	u := &User{FirstName: &name}

	row := u.InsertRow()
	_, hasID := row[ColumnID]
	assert.False(t, hasID)
	assert.Equal(t, "Josephine", row[ColumnFirstName])
	assert.Nil(t, row[ColumnAge])
	assert.Nil(t, row[ColumnZip])
	assert.Len(t, row, len(Columns)-1)

	u.ID = 9
	assert.Equal(t, int64(9), u.InsertRow()[ColumnID])
}

func decodeFields(t *testing.T, body string) Fields {
	t.Helper()
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	return f
}

func TestFields_Changes_Patch(t *testing.T) {
	f := decodeFields(t, `{"id":77,"city":"Boston","age":null,"zip":2101,"nickname":"x"}`)

	changes, err := f.Changes(false)
	require.NoError(t, err)

	assert.Equal(t, Changes{
		ColumnCity: "Boston",
		ColumnAge:  nil,
		ColumnZip:  "2101",
	}, changes)
}

func TestFields_Changes_Replace(t *testing.T) {
	f := decodeFields(t, `{"first_name":"Art","age":30}`)

	changes, err := f.Changes(true)
	require.NoError(t, err)

	assert.Len(t, changes, len(Columns)-1)
	assert.Equal(t, "Art", changes[ColumnFirstName])
	assert.Equal(t, int64(30), changes[ColumnAge])
	assert.Nil(t, changes[ColumnCity])
	_, hasID := changes[ColumnID]
	assert.False(t, hasID)
}

func TestFields_Changes_WrongType(t *testing.T) {
	for _, body := range []string{
		`{"age":"old"}`,
		`{"first_name":12}`,
		`{"zip":[1]}`,
	} {
		_, err := decodeFields(t, body).Changes(false)
		assert.ErrorIs(t, err, common.ErrorValidation, body)
	}
}

func TestSearchParams(t *testing.T) {
	p := SearchParams{Page: 3, Limit: 5, Sort: "-age"}
	require.NoError(t, p.Validate())
	offset, ok := p.Offset()
	require.True(t, ok)
	assert.Equal(t, uint64(10), offset)

	field, desc := p.SortKey()
	assert.Equal(t, "age", field)
	assert.True(t, desc)

	field, desc = SearchParams{Sort: "city"}.SortKey()
	assert.Equal(t, "city", field)
	assert.False(t, desc)

	assert.ErrorIs(t, SearchParams{Page: 0, Limit: 5}.Validate(), common.ErrorValidation)
	assert.ErrorIs(t, SearchParams{Page: 1, Limit: 0}.Validate(), common.ErrorValidation)
}

func TestSearchParams_OffsetOverflow(t *testing.T) {
	tests := []struct {
		name   string
		p      SearchParams
		want   uint64
		wantOK bool
	}{
		{"first page", SearchParams{Page: 1, Limit: 4}, 0, true},
		{"largest representable", SearchParams{Page: math.MaxInt64/4 + 1, Limit: 4}, math.MaxInt64 - 3, true},
		{"wraps uint64", SearchParams{Page: 4611686018427387905, Limit: 4}, 0, false},
		{"exceeds int64", SearchParams{Page: math.MaxInt64, Limit: 2}, 0, false},
		{"max limit second page", SearchParams{Page: 2, Limit: math.MaxInt64}, math.MaxInt64, true},
		{"max limit third page", SearchParams{Page: 3, Limit: math.MaxInt64}, 0, false},
		{"invalid", SearchParams{Page: 0, Limit: 4}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.p.Offset()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatistics_EmptyListsEncodeAsArrays(t *testing.T) {
	s := Statistics{
		CountByCity:    []CityCount{},
		CountByCompany: []CompanyCount{},
		AgeRanges:      []AgeRangeCount{},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"average_age":null,"total_cities":0,"total_companies":0,
		"count_by_city":[],"count_by_company":[],"age_ranges":[]}`, string(b))
}
