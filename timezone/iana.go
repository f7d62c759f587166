package timezone

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/ngrash/go-temporal/internal/tzrule"
	"github.com/ngrash/go-temporal/tzif"
)

// LocalType is a local time type of a zone.
type LocalType struct {
	Offset int64 // seconds east of UTC
	DST    bool
	Abbr   string
}

// Zone is a named zone compiled from TZif data. Times before the first
// transition use the zone's initial local time type; times at or after the
// last transition follow the footer TZ string when there is one.
type Zone struct {
	id    string
	times []int64
	types []LocalType // types[i] is in effect from times[i] on
	first LocalType
	rule  *tzrule.Rule
}

// FromTZif compiles decoded TZif data.
func FromTZif(id string, d tzif.Data) (*Zone, error) {
	b := d.Block()
	if len(b.LocalTimeTypes) == 0 {
		return nil, fmt.Errorf("zone %s: no local time types", id)
	}
	if len(b.TransitionTimes) != len(b.TransitionTypes) {
		return nil, fmt.Errorf("zone %s: %d transition times but %d types", id, len(b.TransitionTimes), len(b.TransitionTypes))
	}

	types := make([]LocalType, len(b.LocalTimeTypes))
	for i, lt := range b.LocalTimeTypes {
		types[i] = LocalType{Offset: int64(lt.Utoff), DST: lt.Dst, Abbr: b.Designation(lt.Idx)}
	}

	z := &Zone{
		id:    id,
		first: types[firstType(b)],
	}
	for i, t := range b.TransitionTimes {
		idx := int(b.TransitionTypes[i])
		if idx >= len(types) {
			return nil, fmt.Errorf("zone %s: transition %d references type %d of %d", id, i, idx, len(types))
		}
		if i > 0 && t <= b.TransitionTimes[i-1] {
			return nil, fmt.Errorf("zone %s: transition times not ascending at %d", id, i)
		}
		z.times = append(z.times, t)
		z.types = append(z.types, types[idx])
	}

	if tz := d.TZString(); tz != "" {
		r, err := tzrule.Parse(tz)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", id, err)
		}
		z.rule = &r
	}
	return z, nil
}

// Load decodes TZif data from r and compiles it.
func Load(id string, r io.Reader) (*Zone, error) {
	d, err := tzif.DecodeData(r)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", id, err)
	}
	return FromTZif(id, d)
}

// LoadBytes is Load for an in-memory TZif file.
func LoadBytes(id string, data []byte) (*Zone, error) {
	return Load(id, bytes.NewReader(data))
}

// firstType selects the local time type for times before the first
// transition, following the heuristics of the Go time package:
//
//  1. The first type, if no transition uses it.
//  2. If the first transition is to daylight time, the closest
//     standard time type before that transition's type.
//  3. The first standard time type.
//  4. The first type.
func firstType(b tzif.DataBlock) int {
	used := false
	for _, t := range b.TransitionTypes {
		if t == 0 {
			used = true
			break
		}
	}
	if !used {
		return 0
	}
	if len(b.TransitionTypes) > 0 && b.LocalTimeTypes[b.TransitionTypes[0]].Dst {
		for i := int(b.TransitionTypes[0]) - 1; i >= 0; i-- {
			if !b.LocalTimeTypes[i].Dst {
				return i
			}
		}
	}
	for i, lt := range b.LocalTimeTypes {
		if !lt.Dst {
			return i
		}
	}
	return 0
}

func (z *Zone) ID() string { return z.id }

func (z *Zone) Kind() Kind { return KindIANA }

func (z *Zone) String() string { return z.id }

// Lookup returns the local time type in effect at the given Unix second.
func (z *Zone) Lookup(epochSeconds int64) LocalType {
	n := len(z.times)
	if z.rule != nil && (n == 0 || epochSeconds >= z.times[n-1]) {
		off, dst, abbr := z.rule.Lookup(epochSeconds)
		return LocalType{Offset: off, DST: dst, Abbr: abbr}
	}
	if n == 0 || epochSeconds < z.times[0] {
		return z.first
	}
	i := sort.Search(n, func(i int) bool { return z.times[i] > epochSeconds }) - 1
	return z.types[i]
}

func (z *Zone) offset(epochSeconds int64) int64 {
	return z.Lookup(epochSeconds).Offset
}

func (z *Zone) OffsetNanosecondsFor(epochSeconds int64) int64 {
	return z.offset(epochSeconds) * nsPerSecond
}

func (z *Zone) PossibleOffsets(localSeconds int64) []int64 {
	return possibleOffsets(z.offset, localSeconds)
}

// offsetBefore returns the offset in effect just before table transition i.
func (z *Zone) offsetBefore(i int) int64 {
	if i == 0 {
		return z.first.Offset
	}
	return z.types[i-1].Offset
}

// maxRuleSteps bounds the search for an offset-changing footer transition.
const maxRuleSteps = 4

func (z *Zone) NextTransition(epochSeconds int64) (int64, bool) {
	n := len(z.times)
	for i := sort.Search(n, func(i int) bool { return z.times[i] > epochSeconds }); i < n; i++ {
		if z.offsetBefore(i) != z.types[i].Offset {
			return z.times[i], true
		}
	}
	if z.rule == nil {
		return 0, false
	}
	from := epochSeconds
	if n > 0 && from < z.times[n-1] {
		from = z.times[n-1]
	}
	for i := 0; i < maxRuleSteps; i++ {
		t, ok := z.rule.Next(from)
		if !ok {
			return 0, false
		}
		if z.offset(t.At-1) != t.Offset {
			return t.At, true
		}
		from = t.At
	}
	return 0, false
}

func (z *Zone) PreviousTransition(epochSeconds int64) (int64, bool) {
	n := len(z.times)
	if z.rule != nil && (n == 0 || epochSeconds > z.times[n-1]) {
		from := epochSeconds
		for i := 0; i < maxRuleSteps; i++ {
			t, ok := z.rule.Previous(from)
			if !ok || (n > 0 && t.At <= z.times[n-1]) {
				break
			}
			if z.offset(t.At-1) != t.Offset {
				return t.At, true
			}
			from = t.At
		}
	}
	for i := sort.Search(n, func(i int) bool { return z.times[i] >= epochSeconds }) - 1; i >= 0; i-- {
		if z.offsetBefore(i) != z.types[i].Offset {
			return z.times[i], true
		}
	}
	return 0, false
}
