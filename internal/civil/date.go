// Package civil provides a calendar date with no time-of-day or timezone.
//
// Workout dates are civil dates: a workout logged on 2026-01-27 stays on
// 2026-01-27 no matter which zone the server or the client runs in. Date
// never passes through time.Local; conversions to and from time.Time read
// or write calendar fields only.
//
// # Representations
//
//	JSON:   "2026-01-27"
//	SQL:    '2026-01-27' (text in sqlite, DATE in postgres)
//	Query:  ?date=2026-01-27
package civil

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical string form of a Date.
const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Date is a calendar date. The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse parses a date in YYYY-MM-DD form.
// Out-of-range values like 2026-02-30 are rejected rather than normalized.
func Parse(s string) (Date, error) {
	if len(s) != len(Layout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and seeds.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Of returns the calendar date of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return Of(time.Now().In(loc))
}

// In returns midnight at the start of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// IsValid reports whether d names an existing calendar day.
func (d Date) IsValid() bool {
	return Of(d.In(time.UTC)) == d
}

// Storable reports whether d is valid and has a four-digit year, so its
// canonical string parses back to d.
func (d Date) Storable() bool {
	return d.Year >= 1 && d.Year <= 9999 && d.IsValid()
}

// AddDays returns d moved by n days.
func (d Date) AddDays(n int) Date {
	return Of(d.In(time.UTC).AddDate(0, 0, n))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// String returns d in YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	return d.UnmarshalText([]byte(s))
}

// Value stores the date as its canonical string so no driver applies a
// timezone conversion on the way in. Dates that would not read back
// unchanged, the zero Date included, are refused.
func (d Date) Value() (driver.Value, error) {
	if !d.Storable() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, d)
	}
	return d.String(), nil
}

// Scan accepts the canonical string or a time.Time. Drivers that hand back
// time.Time for DATE columns (pgx, mattn/go-sqlite3) return midnight in
// UTC, so the calendar fields are read directly.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = Of(v)
		return nil
	default:
		return fmt.Errorf("civil: cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	// Some drivers return "2026-01-27 00:00:00+00:00" or RFC 3339 for date columns.
	if len(s) > len(Layout) {
		s = s[:len(Layout)]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType tells GORM which column type to migrate.
func (Date) GormDataType() string {
	return "date"
}
