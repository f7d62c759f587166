package temporal

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
)

// isoTime is a wall-clock time of day.
type isoTime struct {
	hour        int
	minute      int
	second      int
	millisecond int
	microsecond int
	nanosecond  int
}

func (t isoTime) nanos() int64 {
	return int64(t.hour)*nsPerUnit[Hour] +
		int64(t.minute)*nsPerUnit[Minute] +
		int64(t.second)*nsPerUnit[Second] +
		int64(t.millisecond)*nsPerUnit[Millisecond] +
		int64(t.microsecond)*nsPerUnit[Microsecond] +
		int64(t.nanosecond)
}

// isoTimeFromNanos converts nanoseconds since midnight, 0 <= ns < 24h.
func isoTimeFromNanos(ns int64) isoTime {
	return isoTime{
		hour:        int(ns / nsPerUnit[Hour]),
		minute:      int(ns / nsPerUnit[Minute] % 60),
		second:      int(ns / nsPerUnit[Second] % 60),
		millisecond: int(ns / nsPerUnit[Millisecond] % 1000),
		microsecond: int(ns / nsPerUnit[Microsecond] % 1000),
		nanosecond:  int(ns % 1000),
	}
}

// addTime adds a span to t and returns the resulting time and the number of
// days carried over midnight.
func addTime(t isoTime, span *big.Int) (isoTime, int64) {
	days, rem := new(big.Int).DivMod(bigAdd(bigInt(t.nanos()), span), bigNsPerDay, new(big.Int))
	return isoTimeFromNanos(rem.Int64()), days.Int64()
}

// differenceTime returns b - a in nanoseconds.
func differenceTime(a, b isoTime) *big.Int {
	return bigInt(b.nanos() - a.nanos())
}

func compareTime(a, b isoTime) int {
	return cmpInt64(a.nanos(), b.nanos())
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (t isoTime) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
	if frac := t.millisecond*1_000_000 + t.microsecond*1_000 + t.nanosecond; frac != 0 {
		s += "." + strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	}
	return s
}

// regulateTime validates or clamps time fields.
func regulateTime(h, m, s, ms, us, ns int, overflow Overflow) (isoTime, error) {
	if overflow == OverflowReject {
		if h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 ||
			ms < 0 || ms > 999 || us < 0 || us > 999 || ns < 0 || ns > 999 {
			return isoTime{}, errs.Range("time %02d:%02d:%02d.%03d%03d%03d out of range", h, m, s, ms, us, ns)
		}
		return isoTime{h, m, s, ms, us, ns}, nil
	}
	return isoTime{
		hour:        clamp(h, 0, 23),
		minute:      clamp(m, 0, 59),
		second:      clamp(s, 0, 59),
		millisecond: clamp(ms, 0, 999),
		microsecond: clamp(us, 0, 999),
		nanosecond:  clamp(ns, 0, 999),
	}, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// isoDateTime is a wall-clock date and time in the ISO calendar.
type isoDateTime struct {
	date calendar.Date
	time isoTime
}

// Limits of dates, in days since the epoch, and of date-times, in nanoseconds
// since the epoch as if the wall clock were UTC. They extend the instant range
// by a day so that every instant has a wall-clock representation in every zone.
const (
	minEpochDays = -100_000_001
	maxEpochDays = 100_000_000
)

var (
	maxInstantNs  = new(big.Int).Mul(big.NewInt(100_000_000), bigNsPerDay)
	minInstantNs  = new(big.Int).Neg(maxInstantNs)
	maxDateTimeNs = bigAdd(maxInstantNs, bigNsPerDay)
	minDateTimeNs = new(big.Int).Neg(maxDateTimeNs)
)

func dateWithinLimits(d calendar.Date) bool {
	days := d.EpochDays()
	return days >= minEpochDays && days <= maxEpochDays
}

func checkDate(d calendar.Date) error {
	if !d.Valid() || !dateWithinLimits(d) {
		return errs.Range("date %v out of range", d)
	}
	return nil
}

// epochNs returns the nanoseconds since the epoch of the wall-clock time read as UTC.
func (dt isoDateTime) epochNs() *big.Int {
	ns := bigMul(bigNsPerDay, dt.date.EpochDays())
	return ns.Add(ns, bigInt(dt.time.nanos()))
}

// localSeconds returns the wall-clock time read as UTC, in whole seconds.
func (dt isoDateTime) localSeconds() int64 {
	return dt.date.EpochDays()*86400 + dt.time.nanos()/nsPerSecond
}

func isoDateTimeFromEpochNs(ns *big.Int) isoDateTime {
	days, rem := new(big.Int).DivMod(ns, bigNsPerDay, new(big.Int))
	return isoDateTime{
		date: calendar.DateFromEpochDays(days.Int64()),
		time: isoTimeFromNanos(rem.Int64()),
	}
}

// withinLimits reports whether the date-time is less than a day beyond the
// range of instants.
func (dt isoDateTime) withinLimits() bool {
	if !dateWithinLimits(dt.date) {
		return false
	}
	ns := dt.epochNs()
	return ns.Cmp(minDateTimeNs) > 0 && ns.Cmp(maxDateTimeNs) < 0
}

func checkDateTime(dt isoDateTime) error {
	if !dt.date.Valid() || !dt.withinLimits() {
		return errs.Range("date-time %v out of range", dt)
	}
	return nil
}

func compareISODateTime(a, b isoDateTime) int {
	if c := calendar.Compare(a.date, b.date); c != 0 {
		return c
	}
	return compareTime(a.time, b.time)
}

// addSpan shifts a wall-clock date-time by an exact span, carrying days.
func (dt isoDateTime) addSpan(span *big.Int) isoDateTime {
	t, days := addTime(dt.time, span)
	return isoDateTime{date: dt.date.AddDays(days), time: t}
}

func (dt isoDateTime) String() string {
	return dt.date.String() + "T" + dt.time.String()
}

// calendarAnnotation returns the suffix that marks a non-ISO calendar.
func calendarAnnotation(cal calendar.Calendar) string {
	if cal.ID() == calendar.ISO.ID() {
		return ""
	}
	return "[u-ca=" + cal.ID() + "]"
}

func calendarOrISO(cal calendar.Calendar) calendar.Calendar {
	if cal == nil {
		return calendar.ISO
	}
	return cal
}

func sameCalendar(a, b calendar.Calendar) bool {
	return a.ID() == b.ID()
}
