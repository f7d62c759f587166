package temporal

import (
	"encoding/json"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

// PlainDateTime is a calendar date and wall-clock time without a time zone.
type PlainDateTime struct {
	calendarDate
	t isoTime
}

func newPlainDateTime(dt isoDateTime, cal calendar.Calendar) (PlainDateTime, error) {
	if err := checkDateTime(dt); err != nil {
		return PlainDateTime{}, err
	}
	return PlainDateTime{calendarDate{dt.date, cal}, dt.time}, nil
}

// NewPlainDateTime returns the given ISO date and time in a calendar. A nil
// calendar is the ISO calendar. Fields out of range are a range error.
func NewPlainDateTime(year, month, day, hour, minute, second, millisecond, microsecond, nanosecond int, cal calendar.Calendar) (PlainDateTime, error) {
	d := calendar.Date{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return PlainDateTime{}, errs.Range("invalid date %v", d)
	}
	t, err := regulateTime(hour, minute, second, millisecond, microsecond, nanosecond, OverflowReject)
	if err != nil {
		return PlainDateTime{}, err
	}
	return newPlainDateTime(isoDateTime{date: d, time: t}, calendarOrISO(cal))
}

// PlainDateTimeFromFields resolves calendar and time fields. Missing time
// fields are zero.
func PlainDateTimeFromFields(f DateTimeFields, overflow Overflow) (PlainDateTime, error) {
	cal := calendarOrISO(f.Calendar)
	dt, err := f.resolve(cal, overflow)
	if err != nil {
		return PlainDateTime{}, err
	}
	return newPlainDateTime(dt, cal)
}

func (p PlainDateTime) iso() isoDateTime {
	return isoDateTime{date: p.date, time: p.t}
}

func (p PlainDateTime) anchor() (isoDateTime, calendar.Calendar) {
	return isoDateTime{date: p.date}, p.cal
}

func (p PlainDateTime) Hour() int        { return p.t.hour }
func (p PlainDateTime) Minute() int      { return p.t.minute }
func (p PlainDateTime) Second() int      { return p.t.second }
func (p PlainDateTime) Millisecond() int { return p.t.millisecond }
func (p PlainDateTime) Microsecond() int { return p.t.microsecond }
func (p PlainDateTime) Nanosecond() int  { return p.t.nanosecond }

// PlainDate returns the date part.
func (p PlainDateTime) PlainDate() PlainDate { return PlainDate{p.calendarDate} }

// PlainTime returns the time part.
func (p PlainDateTime) PlainTime() PlainTime { return PlainTime{p.t} }

// With returns p with the given fields replaced. The calendar of f must be
// nil. Calendar fields are merged the way the calendar of p defines.
func (p PlainDateTime) With(f DateTimeFields, overflow Overflow) (PlainDateTime, error) {
	if f.Calendar != nil {
		return PlainDateTime{}, errs.Type("With cannot change the calendar; use WithCalendar")
	}
	if f.empty() {
		return p, nil
	}
	date, err := p.cal.DateFromFields(p.cal.MergeFields(p.fields(), f.Fields), overflow)
	if err != nil {
		return PlainDateTime{}, err
	}
	t, err := f.TimeFields.resolve(p.t, overflow)
	if err != nil {
		return PlainDateTime{}, err
	}
	return newPlainDateTime(isoDateTime{date: date, time: t}, p.cal)
}

// WithPlainTime returns p with its time replaced. A nil time is midnight.
func (p PlainDateTime) WithPlainTime(t *PlainTime) (PlainDateTime, error) {
	var nt isoTime
	if t != nil {
		nt = t.t
	}
	return newPlainDateTime(isoDateTime{date: p.date, time: nt}, p.cal)
}

// WithCalendar returns the same date and time in another calendar.
func (p PlainDateTime) WithCalendar(cal calendar.Calendar) PlainDateTime {
	p.cal = calendarOrISO(cal)
	return p
}

// Add returns the date-time d later. Days are added on the calendar
// together with any days carried from the time of day.
func (p PlainDateTime) Add(d Duration, overflow Overflow) (PlainDateTime, error) {
	dt, err := addDateTime(p.iso(), p.cal, d.internalWith24HourDays(), overflow)
	if err != nil {
		return PlainDateTime{}, err
	}
	return PlainDateTime{calendarDate{dt.date, p.cal}, dt.time}, nil
}

// Subtract returns the date-time d earlier.
func (p PlainDateTime) Subtract(d Duration, overflow Overflow) (PlainDateTime, error) {
	return p.Add(d.Negated(), overflow)
}

// Until returns the duration from p to other. The largest unit defaults to
// Day. Both must use the same calendar.
func (p PlainDateTime) Until(other PlainDateTime, opts DifferenceOptions) (Duration, error) {
	return p.difference(other, opts, 1)
}

// Since returns the duration from other to p.
func (p PlainDateTime) Since(other PlainDateTime, opts DifferenceOptions) (Duration, error) {
	return p.difference(other, opts, -1)
}

func (p PlainDateTime) difference(other PlainDateTime, opts DifferenceOptions, sign int) (Duration, error) {
	if !sameCalendar(p.cal, other.cal) {
		return Duration{}, errs.Range("cannot compute difference between calendars %s and %s", p.cal.ID(), other.cal.ID())
	}
	s, err := differenceSettings(opts, Nanosecond, Year, Day)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		s.mode = s.mode.negate()
	}
	id, err := differencePlainWithRounding(p.iso(), other.iso(), p.cal, s)
	if err != nil {
		return Duration{}, err
	}
	d, err := durationFromInternal(id, s.largest)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		d = d.Negated()
	}
	return d, nil
}

// roundISODateTime rounds the time of dt, carrying into the date.
func roundISODateTime(dt isoDateTime, increment int64, unit Unit, mode RoundingMode) (isoDateTime, error) {
	t, days := roundTime(dt.time, increment, unit, mode)
	out := isoDateTime{date: dt.date.AddDays(days), time: t}
	if err := checkDateTime(out); err != nil {
		return isoDateTime{}, err
	}
	return out, nil
}

// roundIncrement validates the increment of Round on date-times. Day only
// rounds in steps of one.
func roundIncrement(opts RoundOptions) (int64, error) {
	if opts.SmallestUnit == Auto {
		return 0, errs.Range("smallest unit is required")
	}
	if opts.SmallestUnit > Day {
		return 0, errs.Range("cannot round a date-time to %v", opts.SmallestUnit)
	}
	increment := opts.RoundingIncrement
	if increment == 0 {
		increment = 1
	}
	if opts.SmallestUnit == Day {
		return increment, validateIncrement(increment, 1, true)
	}
	return increment, validateIncrement(increment, maxIncrement(opts.SmallestUnit), false)
}

// Round rounds p to opts.SmallestUnit, which is required and may not exceed Day.
func (p PlainDateTime) Round(opts RoundOptions) (PlainDateTime, error) {
	increment, err := roundIncrement(opts)
	if err != nil {
		return PlainDateTime{}, err
	}
	dt, err := roundISODateTime(p.iso(), increment, opts.SmallestUnit, opts.RoundingMode.or(RoundHalfExpand))
	if err != nil {
		return PlainDateTime{}, err
	}
	return PlainDateTime{calendarDate{dt.date, p.cal}, dt.time}, nil
}

// ToZonedDateTime resolves p in tz. Skipped and repeated wall-clock times are
// resolved by disambiguation.
func (p PlainDateTime) ToZonedDateTime(tz timezone.TimeZone, disambiguation Disambiguation) (ZonedDateTime, error) {
	if tz == nil {
		return ZonedDateTime{}, errs.Type("time zone is required")
	}
	ns, err := epochNsFor(tz, p.iso(), disambiguation)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(ns, tz, p.cal)
}

// Equal reports whether both are the same date and time in the same calendar.
func (p PlainDateTime) Equal(other PlainDateTime) bool {
	return p.date == other.date && p.t == other.t && sameCalendar(p.cal, other.cal)
}

// ComparePlainDateTimes returns -1, 0 or 1 depending on whether a is before,
// equal to or after b. Calendars are not compared.
func ComparePlainDateTimes(a, b PlainDateTime) int {
	return compareISODateTime(a.iso(), b.iso())
}

// String formats the date-time, for example 2012-09-11T10:30:00.
func (p PlainDateTime) String() string {
	return p.iso().String() + calendarAnnotation(p.cal)
}

// ToLocaleString formats the date-time. No locale data is used; the result
// equals String.
func (p PlainDateTime) ToLocaleString() string {
	return p.String()
}

// MarshalJSON encodes the date-time as its string form.
func (p PlainDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
