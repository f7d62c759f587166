package temporal

import (
	"math/big"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

// combine joins a date part and a time span into an internal duration, checking
// that both parts agree in sign and the span is in range.
func combine(date calendar.Duration, span *big.Int) (internalDuration, error) {
	if span == nil {
		span = new(big.Int)
	}
	if ds, ts := dateDurationSign(date), span.Sign(); ds != 0 && ts != 0 && ds != ts {
		return internalDuration{}, errs.Range("duration parts have mixed signs")
	}
	if err := checkTimeSpan(span); err != nil {
		return internalDuration{}, err
	}
	return internalDuration{date: date, time: span}, nil
}

// addDateTime adds a duration to a wall-clock date-time. Days are expected in
// the time span so that they carry together with the time of day.
func addDateTime(start isoDateTime, cal calendar.Calendar, id internalDuration, overflow Overflow) (isoDateTime, error) {
	t, days := addTime(start.time, id.span())
	date := id.date
	date.Days += days
	added, err := cal.DateAdd(start.date, date, overflow)
	if err != nil {
		return isoDateTime{}, err
	}
	dt := isoDateTime{date: added, time: t}
	if err := checkDateTime(dt); err != nil {
		return isoDateTime{}, err
	}
	return dt, nil
}

// addZoned adds a duration to an instant in tz. The date part is added to the
// wall-clock date with compatible disambiguation, then the time part is added
// as an exact span.
func addZoned(ns *big.Int, tz timezone.TimeZone, cal calendar.Calendar, id internalDuration, overflow Overflow) (*big.Int, error) {
	if dateDurationSign(id.date) == 0 {
		out := bigAdd(ns, id.span())
		if err := checkInstantNs(out); err != nil {
			return nil, err
		}
		return out, nil
	}
	dt := isoDateTimeInZone(ns, tz)
	added, err := cal.DateAdd(dt.date, id.date, overflow)
	if err != nil {
		return nil, err
	}
	intermediate := isoDateTime{date: added, time: dt.time}
	if err := checkDateTime(intermediate); err != nil {
		return nil, err
	}
	mid, err := epochNsFor(tz, intermediate, DisambiguationCompatible)
	if err != nil {
		return nil, err
	}
	out := bigAdd(mid, id.span())
	if err := checkInstantNs(out); err != nil {
		return nil, err
	}
	return out, nil
}

// differenceISODateTime returns the unrounded difference between two
// wall-clock date-times. For a time unit as largest, days are folded into the
// time span.
func differenceISODateTime(a, b isoDateTime, cal calendar.Calendar, largest Unit) (internalDuration, error) {
	span := differenceTime(a.time, b.time)
	timeSign := span.Sign()
	dateSign := calendar.Compare(a.date, b.date)

	adjusted := b.date
	if timeSign != 0 && timeSign == dateSign {
		adjusted = adjusted.AddDays(int64(timeSign))
		span = bigSub(span, bigMul(bigNsPerDay, int64(timeSign)))
	}
	dateLargest := largerUnit(Day, largest)
	date, err := cal.DateUntil(a.date, adjusted, dateLargest.calendarUnit())
	if err != nil {
		return internalDuration{}, err
	}
	if largest != dateLargest {
		span = bigAdd(span, bigMul(bigNsPerDay, date.Days))
		date.Days = 0
	}
	return combine(date, span)
}

// differenceZoned returns the unrounded difference between two instants in tz
// with a date unit as largest. Days are counted on the wall clock, so a day
// may be 23 or 25 hours long.
func differenceZoned(ns1, ns2 *big.Int, tz timezone.TimeZone, cal calendar.Calendar, largest Unit) (internalDuration, error) {
	if ns1.Cmp(ns2) == 0 {
		return internalDuration{time: new(big.Int)}, nil
	}
	start := isoDateTimeInZone(ns1, tz)
	end := isoDateTimeInZone(ns2, tz)
	if calendar.Compare(start.date, end.date) == 0 {
		return combine(calendar.Duration{}, bigSub(ns2, ns1))
	}

	sign := ns2.Cmp(ns1)
	maxCorrection := int64(2)
	if sign < 0 {
		maxCorrection = 1
	}
	var correction int64
	if differenceTime(start.time, end.time).Sign() == -sign {
		correction++
	}

	var (
		intermediate calendar.Date
		span         *big.Int
		found        bool
	)
	for ; correction <= maxCorrection && !found; correction++ {
		intermediate = end.date.AddDays(-correction * int64(sign))
		mid, err := epochNsFor(tz, isoDateTime{date: intermediate, time: start.time}, DisambiguationCompatible)
		if err != nil {
			return internalDuration{}, err
		}
		span = bigSub(ns2, mid)
		if span.Sign() != -sign {
			found = true
		}
	}
	if !found {
		return internalDuration{}, errs.Range("cannot balance difference in time zone %s", tz.ID())
	}
	date, err := cal.DateUntil(start.date, intermediate, largerUnit(largest, Day).calendarUnit())
	if err != nil {
		return internalDuration{}, err
	}
	return combine(date, span)
}

// relative carries the anchor of a relative rounding: the starting wall-clock
// date-time and, for zoned anchors, the time zone.
type relative struct {
	start isoDateTime
	tz    timezone.TimeZone // nil for plain anchors
	cal   calendar.Calendar
}

// epochNs resolves a wall-clock date-time the way the anchor counts time:
// as UTC for plain anchors and in the zone for zoned ones.
func (r relative) epochNs(dt isoDateTime) (*big.Int, error) {
	if r.tz == nil {
		if err := checkDateTime(dt); err != nil {
			return nil, err
		}
		return dt.epochNs(), nil
	}
	return epochNsFor(r.tz, dt, DisambiguationCompatible)
}

// nudged is the result of rounding the smallest unit of a duration.
type nudged struct {
	duration internalDuration
	epochNs  *big.Int
	expanded bool
	total    *big.Rat
}

// roundRelative rounds a difference that ends at dest, then bubbles any carry
// up into larger units.
func roundRelative(id internalDuration, dest *big.Int, r relative, s settings) (internalDuration, error) {
	irregular := s.smallest.IsCalendarUnit() || (r.tz != nil && s.smallest == Day)
	sign := 1
	if id.sign() < 0 {
		sign = -1
	}

	var (
		n   nudged
		err error
	)
	switch {
	case irregular:
		n, err = nudgeToCalendarUnit(sign, id, dest, r, s.increment, s.smallest, s.mode)
	case r.tz != nil:
		n, err = nudgeToZonedTime(sign, id, r, s.increment, s.smallest, s.mode)
	default:
		n, err = nudgeToDayOrTime(id, dest, s.largest, s.increment, s.smallest, s.mode)
	}
	if err != nil {
		return internalDuration{}, err
	}
	if n.expanded && s.smallest != Week {
		return bubbleRelative(sign, n.duration, n.epochNs, r, s.largest, largerUnit(s.smallest, Day))
	}
	return n.duration, nil
}

// calendarStep returns the date duration id truncated to unit with the given
// value for unit itself.
func calendarStep(id internalDuration, unit Unit, value int64) calendar.Duration {
	d := calendar.Duration{Years: id.date.Years}
	switch unit {
	case Year:
		d.Years = value
	case Month:
		d.Months = value
	case Week:
		d.Months = id.date.Months
		d.Weeks = value
	case Day:
		d.Months = id.date.Months
		d.Weeks = id.date.Weeks
		d.Days = value
	}
	return d
}

// truncInt64 rounds v toward zero to a multiple of increment.
func truncInt64(v, increment int64) int64 {
	return v / increment * increment
}

// nudgeToCalendarUnit rounds to a unit whose length depends on where it lies:
// a calendar unit, or a day in a time zone. The duration is bracketed by two
// candidate values and the position of dest between their end points decides.
func nudgeToCalendarUnit(sign int, id internalDuration, dest *big.Int, r relative, increment int64, unit Unit, mode RoundingMode) (nudged, error) {
	var value int64
	switch unit {
	case Year:
		value = id.date.Years
	case Month:
		value = id.date.Months
	case Week:
		weeksStart, err := r.cal.DateAdd(r.start.date, calendar.Duration{Years: id.date.Years, Months: id.date.Months}, OverflowConstrain)
		if err != nil {
			return nudged{}, err
		}
		until, err := r.cal.DateUntil(weeksStart, weeksStart.AddDays(id.date.Days), calendar.Week)
		if err != nil {
			return nudged{}, err
		}
		value = id.date.Weeks + until.Weeks
	default:
		value = id.date.Days
	}
	r1 := truncInt64(value, increment)
	r2 := r1 + increment*int64(sign)
	startDuration := calendarStep(id, unit, r1)
	endDuration := calendarStep(id, unit, r2)

	startNs, err := r.dateEpochNs(startDuration)
	if err != nil {
		return nudged{}, err
	}
	endNs, err := r.dateEpochNs(endDuration)
	if err != nil {
		return nudged{}, err
	}
	if startNs.Cmp(endNs) == 0 {
		return nudged{}, errs.Range("cannot round to %v: the unit has zero length", unit)
	}
	num := bigSub(dest, startNs)
	den := bigSub(endNs, startNs)
	if num.Sign() == -sign && num.Sign() != 0 || new(big.Int).Abs(num).Cmp(new(big.Int).Abs(den)) > 0 {
		return nudged{}, errs.Range("rounding end point is outside the %v bracket", unit)
	}

	progress := new(big.Rat).SetFrac(num, den)
	total := new(big.Rat).Mul(progress, new(big.Rat).SetInt64(increment*int64(sign)))
	total.Add(total, new(big.Rat).SetInt64(r1))

	expand := false
	absNum, absDen := new(big.Int).Abs(num), new(big.Int).Abs(den)
	switch {
	case absNum.Sign() == 0:
	case absNum.Cmp(absDen) == 0:
		expand = true
	default:
		half := new(big.Int).Lsh(absNum, 1).Cmp(absDen)
		lowerEven := (abs64(r1)/increment)%2 == 0
		expand = unsignedMode(mode, sign < 0).roundsUp(half, lowerEven)
	}

	out := nudged{total: total}
	if expand {
		out.duration, out.epochNs, out.expanded = internalDuration{date: endDuration, time: new(big.Int)}, endNs, true
	} else {
		out.duration, out.epochNs = internalDuration{date: startDuration, time: new(big.Int)}, startNs
	}
	return out, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// dateEpochNs returns the end point of adding a date duration to the anchor.
func (r relative) dateEpochNs(d calendar.Duration) (*big.Int, error) {
	date, err := r.cal.DateAdd(r.start.date, d, OverflowConstrain)
	if err != nil {
		return nil, err
	}
	return r.epochNs(isoDateTime{date: date, time: r.start.time})
}

// nudgeToZonedTime rounds a time unit within the real length of the last day,
// moving into the next day when rounding goes past its end.
func nudgeToZonedTime(sign int, id internalDuration, r relative, increment int64, unit Unit, mode RoundingMode) (nudged, error) {
	start, err := r.cal.DateAdd(r.start.date, id.date, OverflowConstrain)
	if err != nil {
		return nudged{}, err
	}
	startNs, err := epochNsFor(r.tz, isoDateTime{date: start, time: r.start.time}, DisambiguationCompatible)
	if err != nil {
		return nudged{}, err
	}
	endNs, err := epochNsFor(r.tz, isoDateTime{date: start.AddDays(int64(sign)), time: r.start.time}, DisambiguationCompatible)
	if err != nil {
		return nudged{}, err
	}
	daySpan := bigSub(endNs, startNs)
	if daySpan.Sign() != sign {
		return nudged{}, errs.Range("day in time zone %s has no length", r.tz.ID())
	}

	inc := bigInt(increment * nsPerUnit[unit])
	rounded, err := roundTimeSpan(id.span(), inc, mode)
	if err != nil {
		return nudged{}, err
	}
	beyond := bigSub(rounded, daySpan)
	var (
		dayDelta int64
		expanded bool
		epochNs  *big.Int
	)
	if beyond.Sign() != -sign {
		expanded, dayDelta = true, int64(sign)
		if rounded, err = roundTimeSpan(beyond, inc, mode); err != nil {
			return nudged{}, err
		}
		epochNs = bigAdd(endNs, rounded)
	} else {
		epochNs = bigAdd(startNs, rounded)
	}
	date := id.date
	date.Days += dayDelta
	d, err := combine(date, rounded)
	if err != nil {
		return nudged{}, err
	}
	return nudged{duration: d, epochNs: epochNs, expanded: expanded}, nil
}

// nudgeToDayOrTime rounds with 24-hour days.
func nudgeToDayOrTime(id internalDuration, dest *big.Int, largest Unit, increment int64, unit Unit, mode RoundingMode) (nudged, error) {
	span := bigAdd(id.span(), bigMul(bigNsPerDay, id.date.Days))
	rounded, err := roundTimeSpan(span, bigInt(increment*nsPerUnit[unit]), mode)
	if err != nil {
		return nudged{}, err
	}
	diff := bigSub(rounded, span)
	wholeDays := truncDays(span)
	roundedDays := truncDays(rounded)
	expanded := cmpInt64(roundedDays-wholeDays, 0) == span.Sign()

	var days int64
	rest := rounded
	if largest.isDateUnit() {
		days = roundedDays
		rest = bigSub(rounded, bigMul(bigNsPerDay, days))
	}
	date := id.date
	date.Days = days
	d, err := combine(date, rest)
	if err != nil {
		return nudged{}, err
	}
	return nudged{duration: d, epochNs: bigAdd(dest, diff), expanded: expanded}, nil
}

// bubbleRelative carries a rounding overflow into larger units, for example
// 11 months 30 days rounded up to 12 months becomes 1 year.
func bubbleRelative(sign int, id internalDuration, nudgedNs *big.Int, r relative, largest, smallest Unit) (internalDuration, error) {
	if smallest == largest {
		return id, nil
	}
	for unit := smallest + 1; unit <= largest; unit++ {
		if unit == Week && largest != Week {
			continue
		}
		var end calendar.Duration
		switch unit {
		case Year:
			end = calendar.Duration{Years: id.date.Years + int64(sign)}
		case Month:
			end = calendar.Duration{Years: id.date.Years, Months: id.date.Months + int64(sign)}
		case Week:
			end = calendar.Duration{Years: id.date.Years, Months: id.date.Months, Weeks: id.date.Weeks + int64(sign)}
		}
		endNs, err := r.dateEpochNs(end)
		if err != nil {
			return internalDuration{}, err
		}
		if bigSub(nudgedNs, endNs).Sign() == -sign {
			break
		}
		id = internalDuration{date: end, time: new(big.Int)}
	}
	return id, nil
}

// differencePlainWithRounding is the rounded difference of two wall-clock
// date-times.
func differencePlainWithRounding(a, b isoDateTime, cal calendar.Calendar, s settings) (internalDuration, error) {
	if compareISODateTime(a, b) == 0 {
		return internalDuration{time: new(big.Int)}, nil
	}
	diff, err := differenceISODateTime(a, b, cal, s.largest)
	if err != nil {
		return internalDuration{}, err
	}
	if s.smallest == Nanosecond && s.increment == 1 {
		return diff, nil
	}
	return roundRelative(diff, b.epochNs(), relative{start: a, cal: cal}, s)
}

// differenceZonedWithRounding is the rounded difference of two instants in
// tz. Time units as largest give an exact difference.
func differenceZonedWithRounding(ns1, ns2 *big.Int, tz timezone.TimeZone, cal calendar.Calendar, s settings) (internalDuration, error) {
	if !s.largest.isDateUnit() {
		span, err := roundTimeSpan(bigSub(ns2, ns1), bigInt(s.increment*nsPerUnit[s.smallest]), s.mode)
		if err != nil {
			return internalDuration{}, err
		}
		return internalDuration{time: span}, nil
	}
	diff, err := differenceZoned(ns1, ns2, tz, cal, s.largest)
	if err != nil {
		return internalDuration{}, err
	}
	if s.smallest == Nanosecond && s.increment == 1 {
		return diff, nil
	}
	return roundRelative(diff, ns2, relative{start: isoDateTimeInZone(ns1, tz), tz: tz, cal: cal}, s)
}

// totalRelative expresses a difference ending at dest in fractional units.
func totalRelative(id internalDuration, dest *big.Int, r relative, unit Unit) (float64, error) {
	if unit.IsCalendarUnit() || (r.tz != nil && unit == Day) {
		sign := 1
		if id.sign() < 0 {
			sign = -1
		}
		n, err := nudgeToCalendarUnit(sign, id, dest, r, 1, unit, RoundTrunc)
		if err != nil {
			return 0, err
		}
		f, _ := n.total.Float64()
		return f, nil
	}
	return totalOf(bigAdd(id.span(), bigMul(bigNsPerDay, id.date.Days)), nsPerUnit[unit]), nil
}
