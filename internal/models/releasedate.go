package models

import (
	"encoding/json"
	"time"
)

// releaseDateLayout is the strict ISO-8601 calendar date the catalog API uses.
const releaseDateLayout = "2006-01-02"

// ReleaseDate is an optional calendar date. The zero value means "no release
// date", which is how unparseable or absent wire values are represented.
type ReleaseDate struct {
	date  time.Time
	valid bool
}

// NewReleaseDate builds a present ReleaseDate from year, month and day.
func NewReleaseDate(year int, month time.Month, day int) ReleaseDate {
	return ReleaseDate{date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), valid: true}
}

// ParseReleaseDate parses a strict ISO-8601 calendar date string. Empty input
// or any other format yields the absent value rather than an error; release
// dates are best-effort metadata, not validated fields.
func ParseReleaseDate(s string) ReleaseDate {
	if s == "" {
		return ReleaseDate{}
	}
	t, err := time.Parse(releaseDateLayout, s)
	if err != nil {
		return ReleaseDate{}
	}
	return ReleaseDate{date: t, valid: true}
}

// Valid reports whether a date is present.
func (d ReleaseDate) Valid() bool {
	return d.valid
}

// Time returns the underlying date; only meaningful when Valid.
func (d ReleaseDate) Time() time.Time {
	return d.date
}

// String formats the date as 2006-01-02, or "" when absent.
func (d ReleaseDate) String() string {
	if !d.valid {
		return ""
	}
	return d.date.Format(releaseDateLayout)
}

// MarshalJSON encodes the date as a "2006-01-02" string, or null when absent.
func (d ReleaseDate) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "2006-01-02" string, treating null and unparseable
// values as absent.
func (d *ReleaseDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = ReleaseDate{}
		return nil
	}
	*d = ParseReleaseDate(s)
	return nil
}

// Equal compares two release dates, treating two absent values as equal.
func (d ReleaseDate) Equal(other ReleaseDate) bool {
	if d.valid != other.valid {
		return false
	}
	return !d.valid || d.date.Equal(other.date)
}
