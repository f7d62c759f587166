package temporal

import (
	"encoding/json"
	"math/big"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

// calendarDate is an ISO date viewed through a calendar. It provides the
// calendar accessors shared by PlainDate and PlainDateTime.
type calendarDate struct {
	date calendar.Date
	cal  calendar.Calendar
}

// Calendar returns the calendar of the date.
func (c calendarDate) Calendar() calendar.Calendar { return c.cal }

func (c calendarDate) fields() calendar.Fields { return c.cal.Fields(c.date) }

// Year returns the calendar year. Era calendars count it continuously.
func (c calendarDate) Year() int { return *c.fields().Year }

func (c calendarDate) Month() int { return *c.fields().Month }

func (c calendarDate) MonthCode() string { return *c.fields().MonthCode }

func (c calendarDate) Day() int { return *c.fields().Day }

// Era returns the era name, or "" for calendars without eras.
func (c calendarDate) Era() string {
	if e := c.fields().Era; e != nil {
		return *e
	}
	return ""
}

// EraYear returns the year within the era. ok is false for calendars without eras.
func (c calendarDate) EraYear() (year int, ok bool) {
	if y := c.fields().EraYear; y != nil {
		return *y, true
	}
	return 0, false
}

func (c calendarDate) DayOfWeek() int    { return c.cal.DayOfWeek(c.date) }
func (c calendarDate) DayOfYear() int    { return c.cal.DayOfYear(c.date) }
func (c calendarDate) WeekOfYear() int   { return c.cal.WeekOfYear(c.date) }
func (c calendarDate) DaysInMonth() int  { return c.cal.DaysInMonth(c.date) }
func (c calendarDate) DaysInYear() int   { return c.cal.DaysInYear(c.date) }
func (c calendarDate) MonthsInYear() int { return c.cal.MonthsInYear(c.date) }
func (c calendarDate) InLeapYear() bool  { return c.cal.InLeapYear(c.date) }

// PlainDate is a calendar date without a time or time zone.
type PlainDate struct {
	calendarDate
}

// NewPlainDate returns the date with the given ISO year, month and day in a
// calendar. A nil calendar is the ISO calendar. Invalid dates are a range error.
func NewPlainDate(year, month, day int, cal calendar.Calendar) (PlainDate, error) {
	d := calendar.Date{Year: year, Month: month, Day: day}
	if err := checkDate(d); err != nil {
		return PlainDate{}, err
	}
	return PlainDate{calendarDate{d, calendarOrISO(cal)}}, nil
}

func newPlainDate(d calendar.Date, cal calendar.Calendar) (PlainDate, error) {
	if err := checkDate(d); err != nil {
		return PlainDate{}, err
	}
	return PlainDate{calendarDate{d, cal}}, nil
}

// PlainDateFromFields resolves calendar fields to a date. Time fields are ignored.
func PlainDateFromFields(f DateTimeFields, overflow Overflow) (PlainDate, error) {
	cal := calendarOrISO(f.Calendar)
	d, err := cal.DateFromFields(f.Fields, overflow)
	if err != nil {
		return PlainDate{}, err
	}
	return newPlainDate(d, cal)
}

func (d PlainDate) anchor() (isoDateTime, calendar.Calendar) {
	return isoDateTime{date: d.date}, d.cal
}

// With returns d with the given calendar fields replaced. Fields that belong
// together, such as month and monthCode, are replaced as a group.
func (d PlainDate) With(f calendar.Fields, overflow Overflow) (PlainDate, error) {
	if f == (calendar.Fields{}) {
		return d, nil
	}
	nd, err := d.cal.DateFromFields(d.cal.MergeFields(d.fields(), f), overflow)
	if err != nil {
		return PlainDate{}, err
	}
	return newPlainDate(nd, d.cal)
}

// WithCalendar returns the same date in another calendar.
func (d PlainDate) WithCalendar(cal calendar.Calendar) PlainDate {
	return PlainDate{calendarDate{d.date, calendarOrISO(cal)}}
}

// dateDurationOf drops the time of d after folding whole 24-hour days of it
// into the days.
func dateDurationOf(d Duration) calendar.Duration {
	id := d.internalWith24HourDays()
	id.date.Days = truncDays(id.time)
	return id.date
}

// Add returns the date d later. Hours and smaller units only count in whole days.
func (d PlainDate) Add(dur Duration, overflow Overflow) (PlainDate, error) {
	nd, err := d.cal.DateAdd(d.date, dateDurationOf(dur), overflow)
	if err != nil {
		return PlainDate{}, err
	}
	return newPlainDate(nd, d.cal)
}

// Subtract returns the date d earlier.
func (d PlainDate) Subtract(dur Duration, overflow Overflow) (PlainDate, error) {
	return d.Add(dur.Negated(), overflow)
}

// Until returns the duration from d to other in date units. The largest unit
// defaults to Day. Both dates must use the same calendar.
func (d PlainDate) Until(other PlainDate, opts DifferenceOptions) (Duration, error) {
	return d.difference(other, opts, 1)
}

// Since returns the duration from other to d.
func (d PlainDate) Since(other PlainDate, opts DifferenceOptions) (Duration, error) {
	return d.difference(other, opts, -1)
}

func (d PlainDate) difference(other PlainDate, opts DifferenceOptions, sign int) (Duration, error) {
	if !sameCalendar(d.cal, other.cal) {
		return Duration{}, errs.Range("cannot compute difference between calendars %s and %s", d.cal.ID(), other.cal.ID())
	}
	s, err := differenceSettings(opts, Day, Year, Day)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		s.mode = s.mode.negate()
	}
	if calendar.Compare(d.date, other.date) == 0 {
		return Duration{}, nil
	}
	date, err := d.cal.DateUntil(d.date, other.date, s.largest.calendarUnit())
	if err != nil {
		return Duration{}, err
	}
	id := internalDuration{date: date}
	if s.smallest != Day || s.increment != 1 {
		start := isoDateTime{date: d.date}
		dest := isoDateTime{date: other.date}
		if id, err = roundRelative(id, dest.epochNs(), relative{start: start, cal: d.cal}, s); err != nil {
			return Duration{}, err
		}
	}
	out, err := durationFromInternal(id, Day)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		out = out.Negated()
	}
	return out, nil
}

// ToPlainDateTime combines d with a time.
func (d PlainDate) ToPlainDateTime(t PlainTime) (PlainDateTime, error) {
	return newPlainDateTime(isoDateTime{date: d.date, time: t.t}, d.cal)
}

// ToZonedDateTime returns d at time t in tz, resolved with compatible
// disambiguation. A nil time is the start of the day, which is not always
// midnight.
func (d PlainDate) ToZonedDateTime(tz timezone.TimeZone, t *PlainTime) (ZonedDateTime, error) {
	if tz == nil {
		return ZonedDateTime{}, errs.Type("time zone is required")
	}
	var (
		ns  *big.Int
		err error
	)
	if t == nil {
		ns, err = startOfDay(tz, d.date)
	} else {
		ns, err = epochNsFor(tz, isoDateTime{date: d.date, time: t.t}, DisambiguationCompatible)
	}
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(ns, tz, d.cal)
}

// Equal reports whether both dates are the same date in the same calendar.
func (d PlainDate) Equal(other PlainDate) bool {
	return d.date == other.date && sameCalendar(d.cal, other.cal)
}

// ComparePlainDates returns -1, 0 or 1 depending on whether a is before, equal
// to or after b. Calendars are not compared.
func ComparePlainDates(a, b PlainDate) int {
	return calendar.Compare(a.date, b.date)
}

// String formats the ISO date, for example 2012-09-11, with a calendar
// annotation for non-ISO calendars.
func (d PlainDate) String() string {
	return d.date.String() + calendarAnnotation(d.cal)
}

// ToLocaleString formats the date. No locale data is used; the result equals String.
func (d PlainDate) ToLocaleString() string {
	return d.String()
}

// MarshalJSON encodes the date as its string form.
func (d PlainDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
