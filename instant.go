package temporal

import (
	"encoding/json"
	"math/big"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/internal/isodate"
	"github.com/ngrash/go-temporal/timezone"
)

// maxInstantSeconds bounds instants to 10^8 days on either side of the epoch.
const maxInstantSeconds = 100_000_000 * 86_400

// Instant is an exact point in time with nanosecond precision, independent of
// calendars and time zones. The zero value is the Unix epoch.
type Instant struct {
	sec  int64 // floored seconds since the epoch
	nsec int32 // [0, 1e9)
}

func validInstant(sec int64, nsec int32) bool {
	return sec >= -maxInstantSeconds && (sec < maxInstantSeconds || sec == maxInstantSeconds && nsec == 0)
}

func newInstant(sec int64, nsec int64) (Instant, error) {
	sec += isodate.FloorDiv(nsec, nsPerSecond)
	nsec = isodate.FloorMod(nsec, nsPerSecond)
	if !validInstant(sec, int32(nsec)) {
		return Instant{}, errs.Range("instant %d.%09ds out of range", sec, nsec)
	}
	return Instant{sec: sec, nsec: int32(nsec)}, nil
}

// InstantFromEpochSeconds returns the instant s seconds after the epoch.
func InstantFromEpochSeconds(s int64) (Instant, error) {
	return newInstant(s, 0)
}

// InstantFromEpochMilliseconds returns the instant ms milliseconds after the epoch.
func InstantFromEpochMilliseconds(ms int64) (Instant, error) {
	return newInstant(isodate.FloorDiv(ms, 1000), isodate.FloorMod(ms, 1000)*1_000_000)
}

// InstantFromEpochMicroseconds returns the instant us microseconds after the epoch.
func InstantFromEpochMicroseconds(us int64) (Instant, error) {
	return newInstant(isodate.FloorDiv(us, 1_000_000), isodate.FloorMod(us, 1_000_000)*1000)
}

// InstantFromEpochNanoseconds returns the instant ns nanoseconds after the
// epoch. The range is ±8.64e21 nanoseconds.
func InstantFromEpochNanoseconds(ns *big.Int) (Instant, error) {
	if ns.Cmp(minInstantNs) < 0 || ns.Cmp(maxInstantNs) > 0 {
		return Instant{}, errs.Range("epoch nanoseconds %v out of range", ns)
	}
	sec, nsec := new(big.Int).DivMod(ns, bigNsPerSec, new(big.Int))
	return Instant{sec: sec.Int64(), nsec: int32(nsec.Int64())}, nil
}

// EpochSeconds returns the seconds since the epoch, rounded toward negative infinity.
func (i Instant) EpochSeconds() int64 { return i.sec }

// EpochMilliseconds returns the milliseconds since the epoch, rounded toward
// negative infinity.
func (i Instant) EpochMilliseconds() int64 {
	return i.sec*1000 + int64(i.nsec)/1_000_000
}

// EpochMicroseconds returns the microseconds since the epoch, rounded toward
// negative infinity.
func (i Instant) EpochMicroseconds() int64 {
	return i.sec*1_000_000 + int64(i.nsec)/1000
}

// EpochNanoseconds returns the nanoseconds since the epoch.
func (i Instant) EpochNanoseconds() *big.Int {
	ns := bigMul(bigNsPerSec, i.sec)
	return ns.Add(ns, big.NewInt(int64(i.nsec)))
}

func (i Instant) addSpan(span *big.Int) (Instant, error) {
	return InstantFromEpochNanoseconds(bigAdd(i.EpochNanoseconds(), span))
}

// Add returns the instant d later. d must not have calendar units.
func (i Instant) Add(d Duration) (Instant, error) {
	if d.years != 0 || d.months != 0 || d.weeks != 0 || d.days != 0 {
		return Instant{}, errs.Type("cannot add duration %v with calendar units to an instant", d)
	}
	return i.addSpan(d.timeSpan())
}

// Subtract returns the instant d earlier. d must not have calendar units.
func (i Instant) Subtract(d Duration) (Instant, error) {
	return i.Add(d.Negated())
}

// Until returns the duration from i to other. The largest unit defaults to
// Second and may not exceed Hour.
func (i Instant) Until(other Instant, opts DifferenceOptions) (Duration, error) {
	return i.difference(other, opts, 1)
}

// Since returns the duration from other to i.
func (i Instant) Since(other Instant, opts DifferenceOptions) (Duration, error) {
	return i.difference(other, opts, -1)
}

func (i Instant) difference(other Instant, opts DifferenceOptions, sign int) (Duration, error) {
	s, err := differenceSettings(opts, Nanosecond, Hour, Second)
	if err != nil {
		return Duration{}, err
	}
	if sign < 0 {
		s.mode = s.mode.negate()
	}
	span := bigSub(other.EpochNanoseconds(), i.EpochNanoseconds())
	span, err = roundTimeSpan(span, bigInt(s.increment*nsPerUnit[s.smallest]), s.mode)
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

// Round rounds the instant to a multiple of a time unit. SmallestUnit is
// required and may not exceed Hour; the increment must divide a 24-hour day.
func (i Instant) Round(opts RoundOptions) (Instant, error) {
	if opts.SmallestUnit == Auto {
		return Instant{}, errs.Range("smallest unit is required")
	}
	if opts.SmallestUnit > Hour {
		return Instant{}, errs.Range("cannot round an instant to %v", opts.SmallestUnit)
	}
	increment := opts.RoundingIncrement
	if increment == 0 {
		increment = 1
	}
	unitNs := nsPerUnit[opts.SmallestUnit]
	if err := validateIncrement(increment, nsPerDay/unitNs, true); err != nil {
		return Instant{}, err
	}
	ns := roundToIncrementAsIfPositive(i.EpochNanoseconds(), bigInt(increment*unitNs), opts.RoundingMode.or(RoundHalfExpand))
	return InstantFromEpochNanoseconds(ns)
}

// CompareInstants returns -1, 0 or 1 depending on whether a is before, equal to
// or after b.
func CompareInstants(a, b Instant) int {
	if c := cmpInt64(a.sec, b.sec); c != 0 {
		return c
	}
	return cmpInt64(int64(a.nsec), int64(b.nsec))
}

// Equal reports whether both instants are the same point in time.
func (i Instant) Equal(other Instant) bool {
	return i == other
}

// ToZonedDateTime returns the instant in a time zone and calendar. A nil
// calendar is the ISO calendar.
func (i Instant) ToZonedDateTime(tz timezone.TimeZone, cal calendar.Calendar) (ZonedDateTime, error) {
	if tz == nil {
		return ZonedDateTime{}, errs.Type("time zone is required")
	}
	return ZonedDateTime{inst: i, tz: tz, cal: calendarOrISO(cal)}, nil
}

// String formats the instant in UTC, for example 2012-09-11T17:30:00Z.
func (i Instant) String() string {
	return isoDateTimeFromEpochNs(i.EpochNanoseconds()).String() + "Z"
}

// ToLocaleString formats the instant. No locale data is used; the result
// equals String.
func (i Instant) ToLocaleString() string {
	return i.String()
}

// MarshalJSON encodes the instant as its string form.
func (i Instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}
