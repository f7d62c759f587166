package temporal

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
)

// maxCalendarField bounds the years, months and weeks of a duration.
const maxCalendarField = 1<<32 - 1

// Duration is an amount of time in ten units. All nonzero fields share one
// sign. Durations are not balanced: PT90M stays 90 minutes.
type Duration struct {
	years, months, weeks, days              int64
	hours, minutes, seconds                 int64
	milliseconds, microseconds, nanoseconds int64
}

// DurationFields lists the fields of a Duration.
type DurationFields struct {
	Years, Months, Weeks, Days              int64
	Hours, Minutes, Seconds                 int64
	Milliseconds, Microseconds, Nanoseconds int64
}

// NewDuration returns the duration with the given fields. Mixed signs and
// values beyond the representable range are range errors.
func NewDuration(f DurationFields) (Duration, error) {
	d := Duration{
		years: f.Years, months: f.Months, weeks: f.Weeks, days: f.Days,
		hours: f.Hours, minutes: f.Minutes, seconds: f.Seconds,
		milliseconds: f.Milliseconds, microseconds: f.Microseconds, nanoseconds: f.Nanoseconds,
	}
	if err := d.validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}

func (d Duration) fieldList() [10]int64 {
	return [10]int64{
		d.years, d.months, d.weeks, d.days,
		d.hours, d.minutes, d.seconds,
		d.milliseconds, d.microseconds, d.nanoseconds,
	}
}

func (d Duration) validate() error {
	sign := 0
	for _, v := range d.fieldList() {
		s := cmpInt64(v, 0)
		if s == 0 {
			continue
		}
		if sign != 0 && s != sign {
			return errs.Range("duration fields must not have mixed signs: %+v", d.Fields())
		}
		sign = s
	}
	for _, v := range []int64{d.years, d.months, d.weeks} {
		if v > maxCalendarField || v < -maxCalendarField {
			return errs.Range("duration calendar field %d out of range", v)
		}
	}
	total := bigAdd(bigMul(bigNsPerDay, d.days), d.timeSpan())
	if err := checkTimeSpan(total); err != nil {
		return err
	}
	return nil
}

// checkTimeSpan verifies a span is below 2^53 seconds in magnitude.
func checkTimeSpan(span *big.Int) error {
	if span.Cmp(maxTimeSpan) > 0 || span.Cmp(minTimeSpan) < 0 {
		return errs.Range("time span of %v ns out of range", span)
	}
	return nil
}

func (d Duration) Years() int64        { return d.years }
func (d Duration) Months() int64       { return d.months }
func (d Duration) Weeks() int64        { return d.weeks }
func (d Duration) Days() int64         { return d.days }
func (d Duration) Hours() int64        { return d.hours }
func (d Duration) Minutes() int64      { return d.minutes }
func (d Duration) Seconds() int64      { return d.seconds }
func (d Duration) Milliseconds() int64 { return d.milliseconds }
func (d Duration) Microseconds() int64 { return d.microseconds }
func (d Duration) Nanoseconds() int64  { return d.nanoseconds }

// Fields returns the fields of d.
func (d Duration) Fields() DurationFields {
	return DurationFields{
		Years: d.years, Months: d.months, Weeks: d.weeks, Days: d.days,
		Hours: d.hours, Minutes: d.minutes, Seconds: d.seconds,
		Milliseconds: d.milliseconds, Microseconds: d.microseconds, Nanoseconds: d.nanoseconds,
	}
}

// Sign returns -1, 0 or 1.
func (d Duration) Sign() int {
	for _, v := range d.fieldList() {
		if v != 0 {
			return cmpInt64(v, 0)
		}
	}
	return 0
}

// Blank reports whether all fields are zero.
func (d Duration) Blank() bool {
	return d.Sign() == 0
}

// Negated returns d with every field negated.
func (d Duration) Negated() Duration {
	return Duration{
		-d.years, -d.months, -d.weeks, -d.days,
		-d.hours, -d.minutes, -d.seconds,
		-d.milliseconds, -d.microseconds, -d.nanoseconds,
	}
}

// Abs returns d with every field made non-negative.
func (d Duration) Abs() Duration {
	if d.Sign() < 0 {
		return d.Negated()
	}
	return d
}

// timeSpan returns hours through nanoseconds as nanoseconds.
func (d Duration) timeSpan() *big.Int {
	span := new(big.Int)
	for _, f := range []struct {
		v    int64
		unit Unit
	}{
		{d.hours, Hour}, {d.minutes, Minute}, {d.seconds, Second},
		{d.milliseconds, Millisecond}, {d.microseconds, Microsecond}, {d.nanoseconds, Nanosecond},
	} {
		span.Add(span, bigMul(bigInt(f.v), nsPerUnit[f.unit]))
	}
	return span
}

func (d Duration) dateDuration() calendar.Duration {
	return calendar.Duration{Years: d.years, Months: d.months, Weeks: d.weeks, Days: d.days}
}

// defaultLargestUnit returns the largest unit with a nonzero field.
func (d Duration) defaultLargestUnit() Unit {
	fields := d.fieldList()
	units := [10]Unit{Year, Month, Week, Day, Hour, Minute, Second, Millisecond, Microsecond, Nanosecond}
	for i, v := range fields {
		if v != 0 {
			return units[i]
		}
	}
	return Nanosecond
}

func (d Duration) hasCalendarUnits() bool {
	return d.years != 0 || d.months != 0 || d.weeks != 0
}

// internalDuration is a duration with its date part kept in calendar units and
// its time part as one nanosecond span. Both parts share a sign.
type internalDuration struct {
	date calendar.Duration
	time *big.Int
}

func (d Duration) internal() internalDuration {
	return internalDuration{date: d.dateDuration(), time: d.timeSpan()}
}

// internalWith24HourDays moves the days of d into the time span.
func (d Duration) internalWith24HourDays() internalDuration {
	date := d.dateDuration()
	date.Days = 0
	return internalDuration{date: date, time: bigAdd(d.timeSpan(), bigMul(bigNsPerDay, d.days))}
}

func (id internalDuration) span() *big.Int {
	if id.time == nil {
		return new(big.Int)
	}
	return id.time
}

func (id internalDuration) sign() int {
	if s := dateDurationSign(id.date); s != 0 {
		return s
	}
	return id.span().Sign()
}

func dateDurationSign(d calendar.Duration) int {
	for _, v := range []int64{d.Years, d.Months, d.Weeks, d.Days} {
		if v != 0 {
			return cmpInt64(v, 0)
		}
	}
	return 0
}

// durationFromInternal balances the time span of id into fields no larger
// than largest. For date units the span is balanced into 24-hour days.
func durationFromInternal(id internalDuration, largest Unit) (Duration, error) {
	span := id.span()
	sign := int64(span.Sign())
	rest := new(big.Int).Abs(span)

	units := []Unit{Day, Hour, Minute, Second, Millisecond, Microsecond, Nanosecond}
	var values [7]int64
	top := largest
	if top > Day {
		top = Day
	}
	for i, u := range units {
		if u > top {
			continue
		}
		if u == top {
			v, ok := int64Of(new(big.Int).Quo(rest, bigInt(nsPerUnit[u])))
			if !ok {
				return Duration{}, errs.Range("duration of %v ns does not fit in %v", span, u)
			}
			values[i] = v
			rest.Rem(rest, bigInt(nsPerUnit[u]))
			continue
		}
		q, r := new(big.Int).QuoRem(rest, bigInt(nsPerUnit[u]), new(big.Int))
		values[i], rest = q.Int64(), r
	}

	return NewDuration(DurationFields{
		Years:        id.date.Years,
		Months:       id.date.Months,
		Weeks:        id.date.Weeks,
		Days:         id.date.Days + values[0]*sign,
		Hours:        values[1] * sign,
		Minutes:      values[2] * sign,
		Seconds:      values[3] * sign,
		Milliseconds: values[4] * sign,
		Microseconds: values[5] * sign,
		Nanoseconds:  values[6] * sign,
	})
}

// Add returns d + other. relativeTo is required when either duration has
// weeks, months or years; without it days count 24 hours.
func (d Duration) Add(other Duration, relativeTo RelativeTo) (Duration, error) {
	largest := largerUnit(d.defaultLargestUnit(), other.defaultLargestUnit())
	switch rel := relativeTo.(type) {
	case nil:
		if largest.IsCalendarUnit() {
			return Duration{}, errs.Range("relativeTo is required to add durations with %v", largest)
		}
		sum := bigAdd(d.internalWith24HourDays().time, other.internalWith24HourDays().time)
		if err := checkTimeSpan(sum); err != nil {
			return Duration{}, err
		}
		return durationFromInternal(internalDuration{time: sum}, largest)
	case ZonedDateTime:
		start := rel.inst.EpochNanoseconds()
		mid, err := addZoned(start, rel.tz, rel.cal, d.internal(), OverflowConstrain)
		if err != nil {
			return Duration{}, err
		}
		end, err := addZoned(mid, rel.tz, rel.cal, other.internal(), OverflowConstrain)
		if err != nil {
			return Duration{}, err
		}
		if !largest.isDateUnit() {
			return durationFromInternal(internalDuration{time: bigSub(end, start)}, largest)
		}
		diff, err := differenceZoned(start, end, rel.tz, rel.cal, largest)
		if err != nil {
			return Duration{}, err
		}
		return durationFromInternal(diff, Hour)
	default:
		start, cal := rel.anchor()
		mid, err := addDateTime(start, cal, d.internalWith24HourDays(), OverflowConstrain)
		if err != nil {
			return Duration{}, err
		}
		end, err := addDateTime(mid, cal, other.internalWith24HourDays(), OverflowConstrain)
		if err != nil {
			return Duration{}, err
		}
		diff, err := differenceISODateTime(start, end, cal, largest)
		if err != nil {
			return Duration{}, err
		}
		return durationFromInternal(diff, largest)
	}
}

// Subtract returns d - other.
func (d Duration) Subtract(other Duration, relativeTo RelativeTo) (Duration, error) {
	return d.Add(other.Negated(), relativeTo)
}

// CompareDurations returns -1, 0 or 1 depending on whether a is shorter than,
// equal to or longer than b. relativeTo is required when either has weeks,
// months or years. A ZonedDateTime anchor accounts for days of 23 or 25 hours.
func CompareDurations(a, b Duration, relativeTo RelativeTo) (int, error) {
	if a == b {
		return 0, nil
	}
	if z, ok := relativeTo.(ZonedDateTime); ok && (a.defaultLargestUnit().isDateUnit() || b.defaultLargestUnit().isDateUnit()) {
		start := z.inst.EpochNanoseconds()
		after1, err := addZoned(start, z.tz, z.cal, a.internal(), OverflowConstrain)
		if err != nil {
			return 0, err
		}
		after2, err := addZoned(start, z.tz, z.cal, b.internal(), OverflowConstrain)
		if err != nil {
			return 0, err
		}
		return after1.Cmp(after2), nil
	}

	days1, days2 := a.days, b.days
	if a.hasCalendarUnits() || b.hasCalendarUnits() {
		if relativeTo == nil {
			return 0, errs.Range("relativeTo is required to compare durations with calendar units")
		}
		start, cal := relativeTo.anchor()
		var err error
		if days1, err = dateDurationDays(a.dateDuration(), start.date, cal); err != nil {
			return 0, err
		}
		if days2, err = dateDurationDays(b.dateDuration(), start.date, cal); err != nil {
			return 0, err
		}
	}
	t1 := bigAdd(a.timeSpan(), bigMul(bigNsPerDay, days1))
	t2 := bigAdd(b.timeSpan(), bigMul(bigNsPerDay, days2))
	return t1.Cmp(t2), nil
}

// dateDurationDays converts a date duration to days from an anchor date.
func dateDurationDays(d calendar.Duration, anchor calendar.Date, cal calendar.Calendar) (int64, error) {
	ymw := calendar.Duration{Years: d.Years, Months: d.Months, Weeks: d.Weeks}
	if dateDurationSign(ymw) == 0 {
		return d.Days, nil
	}
	later, err := cal.DateAdd(anchor, ymw, OverflowConstrain)
	if err != nil {
		return 0, err
	}
	return d.Days + later.EpochDays() - anchor.EpochDays(), nil
}

// String formats d in ISO 8601 notation, for example P1Y2M3DT4H5M6.7S.
// A blank duration is PT0S.
func (d Duration) String() string {
	if d.Blank() {
		return "PT0S"
	}
	a := d.Abs()
	var b strings.Builder
	if d.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	for _, f := range []struct {
		v      int64
		letter byte
	}{{a.years, 'Y'}, {a.months, 'M'}, {a.weeks, 'W'}, {a.days, 'D'}} {
		if f.v != 0 {
			fmt.Fprintf(&b, "%d%c", f.v, f.letter)
		}
	}

	// Sub-second fields are balanced into seconds for display only.
	secs := new(big.Int).Add(bigMul(bigInt(a.seconds), nsPerSecond), bigMul(bigInt(a.milliseconds), 1_000_000))
	secs.Add(secs, bigMul(bigInt(a.microseconds), 1000))
	secs.Add(secs, bigInt(a.nanoseconds))
	whole, frac := new(big.Int).QuoRem(secs, bigNsPerSec, new(big.Int))

	if a.hours != 0 || a.minutes != 0 || secs.Sign() != 0 {
		b.WriteByte('T')
		if a.hours != 0 {
			fmt.Fprintf(&b, "%dH", a.hours)
		}
		if a.minutes != 0 {
			fmt.Fprintf(&b, "%dM", a.minutes)
		}
		if secs.Sign() != 0 {
			b.WriteString(whole.String())
			if frac.Sign() != 0 {
				b.WriteByte('.')
				b.WriteString(strings.TrimRight(fmt.Sprintf("%09d", frac.Int64()), "0"))
			}
			b.WriteByte('S')
		}
	}
	return b.String()
}

// ToLocaleString formats d. No locale data is used; the result equals String.
func (d Duration) ToLocaleString() string {
	return d.String()
}

// MarshalJSON encodes the duration as its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
