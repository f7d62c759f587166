// Package timezone provides the time zone capability: mapping exact instants to
// UTC offsets and local wall-clock times back to the offsets that produce them.
//
// Three variants exist. IANA zones are compiled from TZif data, fixed offset
// zones have a single offset, and rule-based zones are described by
// iCalendar-style observances. Fixed offset zones report KindIANA because they
// are identified and serialized like named zones.
package timezone

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/ngrash/go-temporal/errs"
)

const (
	nsPerSecond    = 1_000_000_000
	secondsPerDay  = 86400
	secondsPerHour = 3600
)

// Kind tags the variant of a TimeZone.
type Kind int

const (
	// KindIANA marks zones with a serializable identifier: named TZif zones,
	// fixed offsets and UTC.
	KindIANA Kind = iota
	// KindRule marks rule-based zones without a registered identifier.
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindIANA:
		return "iana"
	case KindRule:
		return "rule"
	default:
		return fmt.Sprintf("<undefined kind (%d)>", int(k))
	}
}

// TimeZone maps instants to offsets and local times to candidate offsets.
// Implementations must be safe for concurrent use and should be pointer
// types; see Same.
type TimeZone interface {
	ID() string
	Kind() Kind

	// OffsetNanosecondsFor returns the UTC offset in effect at the given Unix
	// second. Offsets are whole seconds.
	OffsetNanosecondsFor(epochSeconds int64) int64

	// PossibleOffsets returns every offset, in nanoseconds, for which
	// localSeconds - offset is an instant that displays as localSeconds.
	// localSeconds is the wall-clock time counted as if it were UTC. The
	// result has no entries for a skipped wall-clock time, two for a
	// repeated one, and is ordered so that the resulting instants ascend.
	PossibleOffsets(localSeconds int64) []int64
}

// TransitionFinder is implemented by zones that can enumerate their offset
// transitions. Only transitions that change the offset are reported.
type TransitionFinder interface {
	// NextTransition returns the first transition strictly after epochSeconds.
	NextTransition(epochSeconds int64) (int64, bool)
	// PreviousTransition returns the last transition strictly before epochSeconds.
	PreviousTransition(epochSeconds int64) (int64, bool)
}

// Equal reports whether two zones are the same named zone. Rule-based zones
// have no defined equality and yield a type error.
func Equal(a, b TimeZone) (bool, error) {
	if a.Kind() == KindRule || b.Kind() == KindRule {
		return false, errs.Type("cannot compare rule-based time zones %q and %q", a.ID(), b.ID())
	}
	return strings.EqualFold(a.ID(), b.ID()), nil
}

// Same reports whether a and b hold the same zone value. Values of a type that
// is not comparable are never the same.
func Same(a, b TimeZone) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// possibleOffsets implements TimeZone.PossibleOffsets for a zone whose
// transitions are at least a day apart. offsetFor returns seconds.
func possibleOffsets(offsetFor func(epochSeconds int64) int64, local int64) []int64 {
	var candidates []int64
	for _, probe := range []int64{local - secondsPerDay, local, local + secondsPerDay} {
		off := offsetFor(probe)
		if !slices.Contains(candidates, off) {
			candidates = append(candidates, off)
		}
	}
	var out []int64
	for _, off := range candidates {
		if offsetFor(local-off) == off {
			out = append(out, off*nsPerSecond)
		}
	}
	// Larger offsets give earlier instants.
	slices.SortFunc(out, func(a, b int64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	return out
}

// FormatOffset formats an offset in nanoseconds as ±HH:MM, adding seconds and
// fractional seconds only when they are nonzero.
func FormatOffset(offsetNs int64) string {
	sign := '+'
	if offsetNs < 0 {
		sign = '-'
		offsetNs = -offsetNs
	}
	ns := offsetNs % nsPerSecond
	secs := offsetNs / nsPerSecond
	h, m, s := secs/secondsPerHour, secs/60%60, secs%60
	switch {
	case ns != 0:
		frac := strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
		return fmt.Sprintf("%c%02d:%02d:%02d.%s", sign, h, m, s, frac)
	case s != 0:
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, h, m, s)
	default:
		return fmt.Sprintf("%c%02d:%02d", sign, h, m)
	}
}

// ParseOffsetID parses the identifier of a fixed offset zone: ±HH, ±HHMM or
// ±HH:MM. It returns the offset in seconds.
func ParseOffsetID(id string) (int64, bool) {
	if len(id) < 3 || (id[0] != '+' && id[0] != '-') {
		return 0, false
	}
	digits := id[1:]
	switch len(digits) {
	case 2:
		digits += "00"
	case 4:
	case 5:
		if digits[2] != ':' {
			return 0, false
		}
		digits = digits[:2] + digits[3:]
	default:
		return 0, false
	}
	var v [4]int64
	for i := range v {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v[i] = int64(c - '0')
	}
	h, m := v[0]*10+v[1], v[2]*10+v[3]
	if h > 23 || m > 59 {
		return 0, false
	}
	off := h*secondsPerHour + m*60
	if id[0] == '-' {
		off = -off
	}
	return off, true
}
