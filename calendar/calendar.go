// Package calendar defines the calendar capability used by date and date-time values.
//
// Dates are always stored in the ISO 8601 calendar. A Calendar projects an ISO
// date onto its own fields (era, year, month, day) and implements arithmetic in
// its own units. The calendars shipped here share the ISO month structure and
// differ in how years are numbered.
package calendar

import (
	"fmt"
	"strings"

	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/internal/isodate"
)

// Supported years of ISO dates. They enclose the range of representable
// instants with a day of margin in each direction.
const (
	MinYear = -271821
	MaxYear = 275760
)

// Date is a date in the ISO 8601 calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateFromEpochDays converts days since 1970-01-01 to a Date.
func DateFromEpochDays(days int64) Date {
	y, m, d := isodate.FromEpochDays(days)
	return Date{y, m, d}
}

// EpochDays returns the number of days since 1970-01-01.
func (d Date) EpochDays() int64 {
	return isodate.EpochDays(d.Year, d.Month, d.Day)
}

// Valid reports whether the month and day exist in the year.
func (d Date) Valid() bool {
	return d.Year >= MinYear && d.Year <= MaxYear &&
		d.Month >= 1 && d.Month <= 12 &&
		d.Day >= 1 && d.Day <= isodate.DaysInMonth(d.Year, d.Month)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int64) Date {
	return DateFromEpochDays(d.EpochDays() + n)
}

func (d Date) String() string {
	switch {
	case d.Year < 0 || d.Year > 9999:
		sign := "+"
		y := d.Year
		if y < 0 {
			sign = "-"
			y = -y
		}
		return fmt.Sprintf("%s%06d-%02d-%02d", sign, y, d.Month, d.Day)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// Compare returns -1, 0 or 1 depending on whether a is before, equal to or after b.
func Compare(a, b Date) int {
	return compareFields(a.Year, a.Month, a.Day, b)
}

func compareFields(y, m, d int, b Date) int {
	switch {
	case y != b.Year:
		return sign(y - b.Year)
	case m != b.Month:
		return sign(m - b.Month)
	default:
		return sign(d - b.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Unit is a calendar unit, ordered from the shortest to the longest.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Year
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("<undefined unit (%d)>", int(u))
	}
}

// Duration is the calendar part of a duration. All nonzero fields share one sign.
type Duration struct {
	Years  int64
	Months int64
	Weeks  int64
	Days   int64
}

// Overflow selects what happens to fields that lie outside their valid range.
type Overflow int

const (
	// Constrain clamps out-of-range fields to the nearest valid value.
	Constrain Overflow = iota
	// Reject fails with a range error.
	Reject
)

func (o Overflow) String() string {
	if o == Reject {
		return "reject"
	}
	return "constrain"
}

// Fields is a bag of calendar fields. Nil means absent.
type Fields struct {
	Era       *string
	EraYear   *int
	Year      *int
	Month     *int
	MonthCode *string
	Day       *int
}

// Ptr returns a pointer to v, for filling Fields.
func Ptr[T any](v T) *T {
	return &v
}

// Calendar is the capability every calendar system provides.
type Calendar interface {
	// ID returns the calendar identifier, for example "iso8601" or "japanese".
	ID() string

	// Fields projects an ISO date onto calendar fields. All fields the
	// calendar knows are set.
	Fields(Date) Fields

	// DateFromFields resolves calendar fields to an ISO date.
	DateFromFields(Fields, Overflow) (Date, error)

	// DateAdd adds a calendar duration. Years and months are added first,
	// then the day is regulated, then weeks and days are added.
	DateAdd(Date, Duration, Overflow) (Date, error)

	// DateUntil returns the duration from a to b, balanced greedily from
	// largest down to days.
	DateUntil(a, b Date, largest Unit) (Duration, error)

	DaysInMonth(Date) int
	DaysInYear(Date) int
	MonthsInYear(Date) int
	InLeapYear(Date) bool
	// DayOfWeek returns 1 for Monday through 7 for Sunday.
	DayOfWeek(Date) int
	DayOfYear(Date) int
	WeekOfYear(Date) int

	// FieldNames returns the field names the calendar needs to resolve the
	// requested ones.
	FieldNames(requested []string) []string

	// MergeFields overlays additional on base. Fields that only make sense
	// together are replaced as a group.
	MergeFields(base, additional Fields) Fields
}

var calendars = map[string]Calendar{
	ISO.ID():      ISO,
	Gregory.ID():  Gregory,
	Japanese.ID(): Japanese,
	ROC.ID():      ROC,
	Buddhist.ID(): Buddhist,
}

// Lookup returns the calendar with the given identifier. Identifiers are case-insensitive.
func Lookup(id string) (Calendar, error) {
	c, ok := calendars[strings.ToLower(id)]
	if !ok {
		return nil, errs.Range("unknown calendar %q", id)
	}
	return c, nil
}

// IDs returns the identifiers of the built-in calendars.
func IDs() []string {
	return []string{ISO.ID(), Gregory.ID(), Japanese.ID(), ROC.ID(), Buddhist.ID()}
}
