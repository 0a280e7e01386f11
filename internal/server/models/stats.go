package models

// Age bucket labels, in report order.
const (
	AgeRangeChild   = "0-18"
	AgeRangeYoung   = "19-30"
	AgeRangeAdult   = "31-45"
	AgeRangeMiddle  = "46-60"
	AgeRangeSenior  = "60+"
	AgeRangeUnknown = "Unknown"
)

// AgeRanges lists the bucket labels in the order they are reported.
var AgeRanges = []string{
	AgeRangeChild,
	AgeRangeYoung,
	AgeRangeAdult,
	AgeRangeMiddle,
	AgeRangeSenior,
	AgeRangeUnknown,
}

type CityCount struct {
	City      *string `db:"city" json:"city"`
	UserCount int64   `db:"user_count" json:"user_count"`
}

type CompanyCount struct {
	Company   *string `db:"company" json:"company"`
	UserCount int64   `db:"user_count" json:"user_count"`
}

type AgeRangeCount struct {
	AgeRange  string `db:"age_range" json:"age_range"`
	UserCount int64  `db:"user_count" json:"user_count"`
}

// Statistics summarises the whole users table. AverageAge is nil when no
// row has an age. The slices are never nil so they encode as [].
type Statistics struct {
	AverageAge     *float64        `json:"average_age"`
	TotalCities    int64           `json:"total_cities"`
	TotalCompanies int64           `json:"total_companies"`
	CountByCity    []CityCount     `json:"count_by_city"`
	CountByCompany []CompanyCount  `json:"count_by_company"`
	AgeRanges      []AgeRangeCount `json:"age_ranges"`
}
