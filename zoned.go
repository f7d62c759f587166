package temporal

import (
	"encoding/json"
	"math/big"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

// ZonedDateTime is an exact instant in a time zone and calendar. It stores
// only the instant and both capabilities; every wall-clock field is derived
// from the offset of the zone at the instant.
type ZonedDateTime struct {
	inst Instant
	tz   timezone.TimeZone
	cal  calendar.Calendar
}

// NewZonedDateTime returns the instant epochNs in tz and cal. A nil calendar is
// the ISO calendar.
func NewZonedDateTime(epochNs *big.Int, tz timezone.TimeZone, cal calendar.Calendar) (ZonedDateTime, error) {
	inst, err := InstantFromEpochNanoseconds(epochNs)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return inst.ToZonedDateTime(tz, cal)
}

// ZonedDateTimeFromFields resolves wall-clock fields in f.TimeZone. An offset
// in f is reconciled with the zone according to opts.Offset, which defaults to
// OffsetReject.
func ZonedDateTimeFromFields(f ZonedFields, opts ZonedOptions) (ZonedDateTime, error) {
	if f.TimeZone == nil {
		return ZonedDateTime{}, errs.Type("time zone is required")
	}
	cal := calendarOrISO(f.Calendar)
	offsetNs, err := f.offsetNs()
	if err != nil {
		return ZonedDateTime{}, err
	}
	dt, err := f.resolve(cal, opts.Overflow)
	if err != nil {
		return ZonedDateTime{}, err
	}
	ns, err := interpretOffset(dt, offsetNs, f.TimeZone, opts.Disambiguation, opts.Offset.or(OffsetReject))
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(ns, f.TimeZone, cal)
}

func (z ZonedDateTime) ns() *big.Int { return z.inst.EpochNanoseconds() }

func (z ZonedDateTime) iso() isoDateTime { return isoDateTimeInZone(z.ns(), z.tz) }

func (z ZonedDateTime) isRule() bool { return z.tz.Kind() == timezone.KindRule }

func (z ZonedDateTime) anchor() (isoDateTime, calendar.Calendar) {
	return isoDateTime{date: z.iso().date}, z.cal
}

// Instant returns the exact instant.
func (z ZonedDateTime) Instant() Instant { return z.inst }

// TimeZone returns the time zone.
func (z ZonedDateTime) TimeZone() timezone.TimeZone { return z.tz }

// Calendar returns the calendar.
func (z ZonedDateTime) Calendar() calendar.Calendar { return z.cal }

func (z ZonedDateTime) EpochSeconds() int64        { return z.inst.EpochSeconds() }
func (z ZonedDateTime) EpochMilliseconds() int64   { return z.inst.EpochMilliseconds() }
func (z ZonedDateTime) EpochMicroseconds() int64   { return z.inst.EpochMicroseconds() }
func (z ZonedDateTime) EpochNanoseconds() *big.Int { return z.ns() }
func (z ZonedDateTime) OffsetNanoseconds() int64   { return z.tz.OffsetNanosecondsFor(z.inst.sec) }
func (z ZonedDateTime) Offset() string             { return timezone.FormatOffset(z.OffsetNanoseconds()) }
func (z ZonedDateTime) local() calendarDate        { return calendarDate{z.iso().date, z.cal} }
func (z ZonedDateTime) Year() int                  { return z.local().Year() }
func (z ZonedDateTime) Month() int                 { return z.local().Month() }
func (z ZonedDateTime) MonthCode() string          { return z.local().MonthCode() }
func (z ZonedDateTime) Day() int                   { return z.local().Day() }
func (z ZonedDateTime) Era() string                { return z.local().Era() }
func (z ZonedDateTime) EraYear() (int, bool)       { return z.local().EraYear() }
func (z ZonedDateTime) DayOfWeek() int             { return z.local().DayOfWeek() }
func (z ZonedDateTime) DayOfYear() int             { return z.local().DayOfYear() }
func (z ZonedDateTime) WeekOfYear() int            { return z.local().WeekOfYear() }
func (z ZonedDateTime) DaysInMonth() int           { return z.local().DaysInMonth() }
func (z ZonedDateTime) DaysInYear() int            { return z.local().DaysInYear() }
func (z ZonedDateTime) MonthsInYear() int          { return z.local().MonthsInYear() }
func (z ZonedDateTime) InLeapYear() bool           { return z.local().InLeapYear() }
func (z ZonedDateTime) Hour() int                  { return z.iso().time.hour }
func (z ZonedDateTime) Minute() int                { return z.iso().time.minute }
func (z ZonedDateTime) Second() int                { return z.iso().time.second }
func (z ZonedDateTime) Millisecond() int           { return z.iso().time.millisecond }
func (z ZonedDateTime) Microsecond() int           { return z.iso().time.microsecond }
func (z ZonedDateTime) Nanosecond() int            { return z.iso().time.nanosecond }

// PlainDateTime returns the wall-clock date and time.
func (z ZonedDateTime) PlainDateTime() PlainDateTime {
	dt := z.iso()
	return PlainDateTime{calendarDate{dt.date, z.cal}, dt.time}
}

// PlainDate returns the wall-clock date.
func (z ZonedDateTime) PlainDate() PlainDate { return PlainDate{z.local()} }

// PlainTime returns the wall-clock time.
func (z ZonedDateTime) PlainTime() PlainTime { return PlainTime{z.iso().time} }

// HoursInDay returns the length of the current wall-clock day in hours, for
// example 23 or 25 on days with a daylight saving transition.
func (z ZonedDateTime) HoursInDay() (float64, error) {
	today := z.iso().date
	start, err := startOfDay(z.tz, today)
	if err != nil {
		return 0, err
	}
	end, err := startOfDay(z.tz, today.AddDays(1))
	if err != nil {
		return 0, err
	}
	return totalOf(bigSub(end, start), nsPerUnit[Hour]), nil
}

// With returns z with the given wall-clock fields replaced. The offset of z
// is kept when it is still valid, so that changing a field of a repeated
// wall-clock time keeps its side of the transition. f must not name a time
// zone or calendar. Rule-based zones are not supported.
func (z ZonedDateTime) With(f ZonedFields, opts ZonedOptions) (ZonedDateTime, error) {
	if f.TimeZone != nil {
		return ZonedDateTime{}, errs.Type("With cannot change the time zone; use WithTimeZone")
	}
	if f.Calendar != nil {
		return ZonedDateTime{}, errs.Type("With cannot change the calendar; use WithCalendar")
	}
	if z.isRule() {
		return ZonedDateTime{}, errs.NotImplemented("With on rule-based time zone %s", z.tz.ID())
	}
	if f.empty() {
		return z, nil
	}

	dt := z.iso()
	fields := z.cal.MergeFields(z.cal.Fields(dt.date), f.Fields)
	date, err := z.cal.DateFromFields(fields, opts.Overflow)
	if err != nil {
		return ZonedDateTime{}, err
	}
	t, err := f.TimeFields.resolve(dt.time, opts.Overflow)
	if err != nil {
		return ZonedDateTime{}, err
	}
	offsetNs := z.OffsetNanoseconds()
	if f.Offset != nil {
		if offsetNs, err = parseOffset(*f.Offset); err != nil {
			return ZonedDateTime{}, err
		}
	}
	ns, err := interpretOffset(isoDateTime{date: date, time: t}, &offsetNs, z.tz, opts.Disambiguation, opts.Offset.or(OffsetPrefer))
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(ns, z.tz, z.cal)
}

// WithPlainTime returns z with its wall-clock time replaced, resolved with
// compatible disambiguation. A nil time is the start of the day.
func (z ZonedDateTime) WithPlainTime(t *PlainTime) (ZonedDateTime, error) {
	return z.PlainDate().ToZonedDateTime(z.tz, t)
}

// WithTimeZone returns the same instant in another time zone.
func (z ZonedDateTime) WithTimeZone(tz timezone.TimeZone) (ZonedDateTime, error) {
	return z.inst.ToZonedDateTime(tz, z.cal)
}

// WithCalendar returns the same instant in another calendar.
func (z ZonedDateTime) WithCalendar(cal calendar.Calendar) ZonedDateTime {
	z.cal = calendarOrISO(cal)
	return z
}

// Add returns z moved by d. Years, months, weeks and days are added to the
// wall-clock date, resolving the result with compatible disambiguation; the
// remaining hours and smaller units are then added as an exact span.
func (z ZonedDateTime) Add(d Duration, overflow Overflow) (ZonedDateTime, error) {
	ns, err := addZoned(z.ns(), z.tz, z.cal, d.internal(), overflow)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(ns, z.tz, z.cal)
}

// Subtract returns z moved back by d.
func (z ZonedDateTime) Subtract(d Duration, overflow Overflow) (ZonedDateTime, error) {
	return z.Add(d.Negated(), overflow)
}

// Until returns the duration from z to other. The largest unit defaults to
// Hour, which gives an exact difference. Day and longer units count
// wall-clock days in the time zone and require both operands to share it.
func (z ZonedDateTime) Until(other ZonedDateTime, opts DifferenceOptions) (Duration, error) {
	return z.difference(other, opts, 1)
}

// Since returns the duration from other to z.
func (z ZonedDateTime) Since(other ZonedDateTime, opts DifferenceOptions) (Duration, error) {
	return z.difference(other, opts, -1)
}

func (z ZonedDateTime) difference(other ZonedDateTime, opts DifferenceOptions, sign int) (Duration, error) {
	if !sameCalendar(z.cal, other.cal) {
		return Duration{}, errs.Range("cannot compute difference between calendars %s and %s", z.cal.ID(), other.cal.ID())
	}
	s, err := differenceSettings(opts, Nanosecond, Year, Hour)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		s.mode = s.mode.negate()
	}

	var d Duration
	if !s.largest.isDateUnit() {
		id, err := differenceZonedWithRounding(z.ns(), other.ns(), z.tz, z.cal, s)
		if err != nil {
			return Duration{}, err
		}
		if d, err = durationFromInternal(id, s.largest); err != nil {
			return Duration{}, err
		}
	} else {
		if err := z.checkSameZone(other); err != nil {
			return Duration{}, err
		}
		id, err := differenceZonedWithRounding(z.ns(), other.ns(), z.tz, z.cal, s)
		if err != nil {
			return Duration{}, err
		}
		if d, err = durationFromInternal(id, Hour); err != nil {
			return Duration{}, err
		}
	}
	if sign < 0 {
		d = d.Negated()
	}
	return d, nil
}

// checkSameZone verifies that calendar-aware differencing is defined: named
// zones must be equal, and rule-based zones must be the very same value.
func (z ZonedDateTime) checkSameZone(other ZonedDateTime) error {
	if timezone.Same(z.tz, other.tz) {
		return nil
	}
	eq, err := timezone.Equal(z.tz, other.tz)
	switch {
	case err != nil && (z.isRule() || other.isRule()) && errs.HasCode(err, errs.CodeType):
		return errs.NotImplemented("calendar units between rule-based time zones %s and %s", z.tz.ID(), other.tz.ID())
	case err != nil:
		return err
	case !eq:
		return errs.Range("cannot compute day difference between time zones %s and %s", z.tz.ID(), other.tz.ID())
	}
	return nil
}

// Round rounds z to opts.SmallestUnit, which is required and may not exceed
// Day. Rounding to Day uses the real length of the day. Rule-based zones are
// not supported.
func (z ZonedDateTime) Round(opts RoundOptions) (ZonedDateTime, error) {
	if z.isRule() {
		return ZonedDateTime{}, errs.NotImplemented("Round on rule-based time zone %s", z.tz.ID())
	}
	increment, err := roundIncrement(opts)
	if err != nil {
		return ZonedDateTime{}, err
	}
	mode := opts.RoundingMode.or(RoundHalfExpand)
	if opts.SmallestUnit == Nanosecond && increment == 1 {
		return z, nil
	}

	var ns *big.Int
	if opts.SmallestUnit == Day {
		today := z.iso().date
		start, err := startOfDay(z.tz, today)
		if err != nil {
			return ZonedDateTime{}, err
		}
		end, err := startOfDay(z.tz, today.AddDays(1))
		if err != nil {
			return ZonedDateTime{}, err
		}
		progress := bigSub(z.ns(), start)
		ns = bigAdd(start, roundToIncrement(progress, bigSub(end, start), mode))
	} else {
		dt, err := roundISODateTime(z.iso(), increment, opts.SmallestUnit, mode)
		if err != nil {
			return ZonedDateTime{}, err
		}
		offsetNs := z.OffsetNanoseconds()
		if ns, err = interpretOffset(dt, &offsetNs, z.tz, DisambiguationCompatible, OffsetPrefer); err != nil {
			return ZonedDateTime{}, err
		}
	}
	return NewZonedDateTime(ns, z.tz, z.cal)
}

// StartOfDay returns the first instant of the wall-clock day of z. It is
// midnight unless midnight is skipped by a transition.
func (z ZonedDateTime) StartOfDay() (ZonedDateTime, error) {
	ns, err := startOfDay(z.tz, z.iso().date)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(ns, z.tz, z.cal)
}

// NextTransition returns the first offset transition after z. ok is false
// when the zone has none. Rule-based zones do not enumerate transitions.
func (z ZonedDateTime) NextTransition() (next ZonedDateTime, ok bool, err error) {
	tf, err := z.transitionFinder()
	if err != nil {
		return ZonedDateTime{}, false, err
	}
	t, ok := tf.NextTransition(z.inst.sec)
	return z.transitionAt(t, ok)
}

// PreviousTransition returns the last offset transition before z.
func (z ZonedDateTime) PreviousTransition() (prev ZonedDateTime, ok bool, err error) {
	tf, err := z.transitionFinder()
	if err != nil {
		return ZonedDateTime{}, false, err
	}
	sec := z.inst.sec
	if z.inst.nsec > 0 {
		// A transition at the start of the current second lies before z.
		sec++
	}
	t, ok := tf.PreviousTransition(sec)
	return z.transitionAt(t, ok)
}

func (z ZonedDateTime) transitionFinder() (timezone.TransitionFinder, error) {
	tf, ok := z.tz.(timezone.TransitionFinder)
	if z.isRule() || !ok {
		return nil, errs.NotImplemented("transitions of rule-based time zone %s", z.tz.ID())
	}
	return tf, nil
}

func (z ZonedDateTime) transitionAt(sec int64, ok bool) (ZonedDateTime, bool, error) {
	if !ok {
		return ZonedDateTime{}, false, nil
	}
	inst, err := InstantFromEpochSeconds(sec)
	if err != nil {
		// Transitions beyond the supported range do not exist for callers.
		return ZonedDateTime{}, false, nil
	}
	return ZonedDateTime{inst, z.tz, z.cal}, true, nil
}

// Equal reports whether both are the same instant in the same time zone and
// calendar. Rule-based zones have no defined equality and yield a type error.
func (z ZonedDateTime) Equal(other ZonedDateTime) (bool, error) {
	sameZone, err := timezone.Equal(z.tz, other.tz)
	if err != nil {
		return false, err
	}
	return z.inst == other.inst && sameZone && sameCalendar(z.cal, other.cal), nil
}

// CompareZonedDateTimes returns -1, 0 or 1 depending on whether a is before,
// equal to or after b. Only the instants are compared.
func CompareZonedDateTimes(a, b ZonedDateTime) int {
	return CompareInstants(a.inst, b.inst)
}

// ToString formats z, for example
// 2012-09-11T10:30:00-07:00[America/Los_Angeles], with a calendar annotation
// for non-ISO calendars. Rule-based zones have no serialized form.
func (z ZonedDateTime) ToString() (string, error) {
	if z.isRule() {
		return "", errs.NotImplemented("serializing rule-based time zone %s", z.tz.ID())
	}
	return z.iso().String() + z.Offset() + "[" + z.tz.ID() + "]" + calendarAnnotation(z.cal), nil
}

// ToLocaleString formats z. No locale data is used; the result equals ToString.
func (z ZonedDateTime) ToLocaleString() (string, error) {
	return z.ToString()
}

// MarshalJSON encodes z as its string form.
func (z ZonedDateTime) MarshalJSON() ([]byte, error) {
	s, err := z.ToString()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}
