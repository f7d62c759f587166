package temporal

import (
	"math/big"
	"regexp"
	"strconv"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

func epochSecondsOf(ns *big.Int) int64 {
	sec, _ := new(big.Int).DivMod(ns, bigNsPerSec, new(big.Int))
	return sec.Int64()
}

// offsetNsAt returns the offset of tz at an instant.
func offsetNsAt(tz timezone.TimeZone, ns *big.Int) int64 {
	return tz.OffsetNanosecondsFor(epochSecondsOf(ns))
}

// isoDateTimeInZone returns the wall-clock time of an instant in tz.
func isoDateTimeInZone(ns *big.Int, tz timezone.TimeZone) isoDateTime {
	return isoDateTimeFromEpochNs(bigAdd(ns, bigInt(offsetNsAt(tz, ns))))
}

func checkInstantNs(ns *big.Int) error {
	if ns.Cmp(minInstantNs) < 0 || ns.Cmp(maxInstantNs) > 0 {
		return errs.Range("epoch nanoseconds %v out of range", ns)
	}
	return nil
}

// possibleEpochNs returns the instants that display as dt in tz, in ascending
// order: none for a skipped time, two for a repeated one.
func possibleEpochNs(tz timezone.TimeZone, dt isoDateTime) ([]*big.Int, error) {
	if err := checkDateTime(dt); err != nil {
		return nil, err
	}
	local := dt.epochNs()
	var out []*big.Int
	for _, off := range tz.PossibleOffsets(dt.localSeconds()) {
		ns := bigSub(local, bigInt(off))
		if err := checkInstantNs(ns); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, nil
}

// disambiguate picks one instant out of the candidates for dt.
func disambiguate(possible []*big.Int, tz timezone.TimeZone, dt isoDateTime, mode Disambiguation) (*big.Int, error) {
	switch n := len(possible); {
	case n == 1:
		return possible[0], nil
	case n > 1:
		switch mode {
		case DisambiguationEarlier, DisambiguationCompatible:
			return possible[0], nil
		case DisambiguationLater:
			return possible[n-1], nil
		default:
			return nil, errs.Range("%v is ambiguous in time zone %s", dt, tz.ID())
		}
	}

	if mode == DisambiguationReject {
		return nil, errs.Range("%v does not exist in time zone %s", dt, tz.ID())
	}
	utc := dt.epochNs()
	dayBefore := bigSub(utc, bigNsPerDay)
	dayAfter := bigAdd(utc, bigNsPerDay)
	if err := checkInstantNs(dayBefore); err != nil {
		return nil, err
	}
	if err := checkInstantNs(dayAfter); err != nil {
		return nil, err
	}
	gap := offsetNsAt(tz, dayAfter) - offsetNsAt(tz, dayBefore)

	if mode == DisambiguationEarlier {
		shifted, err := possibleEpochNs(tz, dt.addSpan(bigInt(-gap)))
		if err != nil {
			return nil, err
		}
		if len(shifted) == 0 {
			return nil, errs.Range("%v cannot be resolved in time zone %s", dt, tz.ID())
		}
		return shifted[0], nil
	}
	shifted, err := possibleEpochNs(tz, dt.addSpan(bigInt(gap)))
	if err != nil {
		return nil, err
	}
	if len(shifted) == 0 {
		return nil, errs.Range("%v cannot be resolved in time zone %s", dt, tz.ID())
	}
	return shifted[len(shifted)-1], nil
}

// epochNsFor resolves a wall-clock time in tz to exactly one instant.
func epochNsFor(tz timezone.TimeZone, dt isoDateTime, mode Disambiguation) (*big.Int, error) {
	possible, err := possibleEpochNs(tz, dt)
	if err != nil {
		return nil, err
	}
	return disambiguate(possible, tz, dt, mode)
}

// startOfDay returns the first instant of a date in tz. Midnight may be
// skipped, in which case the day starts at the transition.
func startOfDay(tz timezone.TimeZone, date calendar.Date) (*big.Int, error) {
	dt := isoDateTime{date: date}
	possible, err := possibleEpochNs(tz, dt)
	if err != nil {
		return nil, err
	}
	if len(possible) > 0 {
		return possible[0], nil
	}

	midnight := dt.localSeconds()
	if tf, ok := tz.(timezone.TransitionFinder); ok {
		if t, ok := tf.NextTransition(midnight - 86400); ok {
			return bigMul(bigNsPerSec, t), nil
		}
	}
	// Find the first second whose wall-clock time is at or after midnight.
	lo, hi := midnight-2*86400, midnight+2*86400
	for lo < hi {
		mid := lo + (hi-lo)/2
		if mid+tz.OffsetNanosecondsFor(mid)/nsPerSecond >= midnight {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	ns := bigMul(bigNsPerSec, lo)
	if err := checkInstantNs(ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// interpretOffset resolves wall-clock fields with an optional explicit offset.
// A nil offset resolves the wall-clock time by disambiguation alone.
func interpretOffset(dt isoDateTime, offsetNs *int64, tz timezone.TimeZone, mode Disambiguation, option OffsetOption) (*big.Int, error) {
	if offsetNs == nil || option == OffsetIgnore {
		return epochNsFor(tz, dt, mode)
	}
	if option == OffsetUse {
		if err := checkDateTime(dt); err != nil {
			return nil, err
		}
		ns := bigSub(dt.epochNs(), bigInt(*offsetNs))
		if err := checkInstantNs(ns); err != nil {
			return nil, err
		}
		return ns, nil
	}

	possible, err := possibleEpochNs(tz, dt)
	if err != nil {
		return nil, err
	}
	utc := dt.epochNs()
	for _, candidate := range possible {
		if bigSub(utc, candidate).Cmp(bigInt(*offsetNs)) == 0 {
			return candidate, nil
		}
	}
	if option == OffsetReject {
		return nil, errs.Range("offset %s is invalid for %v in time zone %s", timezone.FormatOffset(*offsetNs), dt, tz.ID())
	}
	return disambiguate(possible, tz, dt, mode)
}

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2})(?::?(\d{2})(?::?(\d{2})(?:[.,](\d{1,9}))?)?)?$`)

// parseOffset parses a UTC offset such as +05:30, -0800 or +01:00:00.5 into
// nanoseconds.
func parseOffset(s string) (int64, error) {
	m := offsetPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, errs.Range("invalid UTC offset %q", s)
	}
	var parts [3]int64
	for i, p := range m[2:5] {
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, errs.Wrap(err, errs.CodeRange, "invalid UTC offset "+strconv.Quote(s))
		}
		parts[i] = v
	}
	h, mins, sec := parts[0], parts[1], parts[2]
	if h > 23 || mins > 59 || sec > 59 {
		return 0, errs.Range("UTC offset %q out of range", s)
	}
	var frac int64
	if f := m[5]; f != "" {
		padded := f + "000000000"[len(f):]
		frac, _ = strconv.ParseInt(padded, 10, 64)
	}
	ns := ((h*60+mins)*60+sec)*nsPerSecond + frac
	if m[1] == "-" {
		ns = -ns
	}
	return ns, nil
}
