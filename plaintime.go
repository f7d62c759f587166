package temporal

import (
	"encoding/json"

	"github.com/ngrash/go-temporal/errs"
)

// PlainTime is a wall-clock time without a date or time zone. The zero value
// is midnight.
type PlainTime struct {
	t isoTime
}

// NewPlainTime returns the given time. Fields out of range are a range error.
func NewPlainTime(hour, minute, second, millisecond, microsecond, nanosecond int) (PlainTime, error) {
	t, err := regulateTime(hour, minute, second, millisecond, microsecond, nanosecond, OverflowReject)
	if err != nil {
		return PlainTime{}, err
	}
	return PlainTime{t}, nil
}

// PlainTimeFromFields builds a time from fields. Missing fields are zero.
func PlainTimeFromFields(f TimeFields, overflow Overflow) (PlainTime, error) {
	if f.empty() {
		return PlainTime{}, errs.Type("no time fields given")
	}
	t, err := f.resolve(isoTime{}, overflow)
	if err != nil {
		return PlainTime{}, err
	}
	return PlainTime{t}, nil
}

func (t PlainTime) Hour() int        { return t.t.hour }
func (t PlainTime) Minute() int      { return t.t.minute }
func (t PlainTime) Second() int      { return t.t.second }
func (t PlainTime) Millisecond() int { return t.t.millisecond }
func (t PlainTime) Microsecond() int { return t.t.microsecond }
func (t PlainTime) Nanosecond() int  { return t.t.nanosecond }

// With returns t with the given fields replaced.
func (t PlainTime) With(f TimeFields, overflow Overflow) (PlainTime, error) {
	nt, err := f.resolve(t.t, overflow)
	if err != nil {
		return PlainTime{}, err
	}
	return PlainTime{nt}, nil
}

// Add returns the time d later, wrapping around midnight. Days and calendar
// units of d are ignored.
func (t PlainTime) Add(d Duration) PlainTime {
	nt, _ := addTime(t.t, d.timeSpan())
	return PlainTime{nt}
}

// Subtract returns the time d earlier, wrapping around midnight.
func (t PlainTime) Subtract(d Duration) PlainTime {
	return t.Add(d.Negated())
}

// Until returns the duration from t to other. The largest unit defaults to Hour.
func (t PlainTime) Until(other PlainTime, opts DifferenceOptions) (Duration, error) {
	return t.difference(other, opts, 1)
}

// Since returns the duration from other to t.
func (t PlainTime) Since(other PlainTime, opts DifferenceOptions) (Duration, error) {
	return t.difference(other, opts, -1)
}

func (t PlainTime) difference(other PlainTime, opts DifferenceOptions, sign int) (Duration, error) {
	s, err := differenceSettings(opts, Nanosecond, Hour, Hour)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		s.mode = s.mode.negate()
	}
	span, err := roundTimeSpan(differenceTime(t.t, other.t), bigInt(s.increment*nsPerUnit[s.smallest]), s.mode)
	if err != nil {
		return Duration{}, err
	}
	d, err := durationFromInternal(internalDuration{time: span}, s.largest)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		d = d.Negated()
	}
	return d, nil
}

// roundTime rounds a time of day. Rounding up from the last increment of the
// day returns midnight and a carry of one day.
func roundTime(t isoTime, increment int64, unit Unit, mode RoundingMode) (isoTime, int64) {
	rounded := roundToIncrement(bigInt(t.nanos()), bigInt(increment*nsPerUnit[unit]), mode)
	return addTime(isoTime{}, rounded)
}

// Round rounds t to opts.SmallestUnit, which is required and may not exceed Hour.
func (t PlainTime) Round(opts RoundOptions) (PlainTime, error) {
	if opts.SmallestUnit == Auto {
		return PlainTime{}, errs.Range("smallest unit is required")
	}
	if opts.SmallestUnit > Hour {
		return PlainTime{}, errs.Range("cannot round a time to %v", opts.SmallestUnit)
	}
	increment := opts.RoundingIncrement
	if increment == 0 {
		increment = 1
	}
	if err := validateIncrement(increment, maxIncrement(opts.SmallestUnit), false); err != nil {
		return PlainTime{}, err
	}
	nt, _ := roundTime(t.t, increment, opts.SmallestUnit, opts.RoundingMode.or(RoundHalfExpand))
	return PlainTime{nt}, nil
}

// Equal reports whether both times are the same.
func (t PlainTime) Equal(other PlainTime) bool {
	return t == other
}

// ComparePlainTimes returns -1, 0 or 1 depending on whether a is before, equal
// to or after b.
func ComparePlainTimes(a, b PlainTime) int {
	return compareTime(a.t, b.t)
}

// String formats the time, for example 10:30:00 or 10:30:00.5.
func (t PlainTime) String() string {
	return t.t.String()
}

// ToLocaleString formats the time. No locale data is used; the result equals String.
func (t PlainTime) ToLocaleString() string {
	return t.String()
}

// MarshalJSON encodes the time as its string form.
func (t PlainTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
