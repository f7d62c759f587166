package timezone

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/ngrash/go-temporal/errs"
)

// Observance is one STANDARD or DAYLIGHT definition of a rule-based zone.
//
// Onsets are wall-clock times in the local time in effect before the onset,
// counted in seconds since 1970-01-01T00:00 as if that local time were UTC.
type Observance struct {
	Name     string
	Daylight bool

	// Start is the first onset (DTSTART).
	Start int64

	// OffsetFrom is the offset in seconds in effect before each onset.
	OffsetFrom int64
	// OffsetTo is the offset in seconds in effect from each onset on.
	OffsetTo int64

	// RRule is an RFC 5545 recurrence rule value such as
	// "FREQ=YEARLY;BYMONTH=3;BYDAY=2SU", or empty.
	RRule string

	// RDates are additional onsets.
	RDates []int64
}

type observance struct {
	Observance
	onsets []int64 // DTSTART, RDATEs and the occurrences of COUNT rules, ascending
	opt    rrule.ROption
	rule   *rrule.RRule
}

// latestOnset returns the latest local onset at or before local.
func (o *observance) latestOnset(local int64) (int64, bool) {
	var (
		best  int64
		found bool
	)
	if i := sort.Search(len(o.onsets), func(i int) bool { return o.onsets[i] > local }); i > 0 {
		best, found = o.onsets[i-1], true
	}
	if o.rule != nil {
		if t := o.ruleBefore(time.Unix(local, 0).UTC()); !t.IsZero() && (!found || t.Unix() > best) {
			best, found = t.Unix(), true
		}
	}
	return best, found
}

// ruleBefore returns the latest occurrence of the recurrence at or before t.
// Iteration starts from a restarted rule near t when one applies, since rrule
// stops about 292 years after DTSTART when no UNTIL is given.
func (o *observance) ruleBefore(t time.Time) time.Time {
	if !o.opt.Until.IsZero() && t.After(o.opt.Until) {
		t = o.opt.Until
	}
	if r := o.restarted(t); r != nil {
		if got := r.Before(t, true); !got.IsZero() {
			return got
		}
	}
	return o.rule.Before(t, true)
}

// restarted returns the recurrence with DTSTART moved forward by whole
// intervals to about two years before t. It returns nil when t is within two
// years of DTSTART or the frequency is finer than daily.
func (o *observance) restarted(t time.Time) *rrule.RRule {
	start := o.opt.Dtstart
	target := t.AddDate(-2, 0, 0)
	if !target.After(start) {
		return nil
	}
	n := max(o.opt.Interval, 1)
	var anchor time.Time
	switch o.opt.Freq {
	case rrule.YEARLY:
		k := (target.Year() - start.Year()) / n
		if k == 0 {
			return nil
		}
		anchor = time.Date(start.Year()+k*n, time.January, 1, start.Hour(), start.Minute(), start.Second(), 0, time.UTC)
	case rrule.MONTHLY:
		months := (target.Year()-start.Year())*12 + int(target.Month()) - int(start.Month())
		k := months / n
		if k == 0 {
			return nil
		}
		anchor = time.Date(start.Year(), start.Month()+time.Month(k*n), 1, start.Hour(), start.Minute(), start.Second(), 0, time.UTC)
	case rrule.WEEKLY, rrule.DAILY:
		step := n
		if o.opt.Freq == rrule.WEEKLY {
			step *= 7
		}
		k := int((target.Unix() - start.Unix()) / secondsPerDay / int64(step))
		if k == 0 {
			return nil
		}
		anchor = start.AddDate(0, 0, k*step)
	default:
		return nil
	}
	opt := o.opt
	opt.Dtstart = anchor
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}
	return r
}

var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// explicit fills in the BY parts a recurrence otherwise derives from DTSTART,
// so the rule keeps its occurrences when DTSTART moves.
func explicit(opt rrule.ROption) rrule.ROption {
	s := opt.Dtstart
	if len(opt.Byweekno)+len(opt.Byyearday)+len(opt.Bymonthday)+len(opt.Byweekday)+len(opt.Byeaster) > 0 {
		return opt
	}
	switch opt.Freq {
	case rrule.YEARLY:
		if len(opt.Bymonth) == 0 {
			opt.Bymonth = []int{int(s.Month())}
		}
		opt.Bymonthday = []int{s.Day()}
	case rrule.MONTHLY:
		opt.Bymonthday = []int{s.Day()}
	case rrule.WEEKLY:
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[s.Weekday()]}
	}
	return opt
}

// RuleZone is a zone defined by observances, as found in an iCalendar
// VTIMEZONE component. It has no transition queries and no serializable
// identifier.
type RuleZone struct {
	id       string
	obs      []*observance
	earliest *observance
}

var utcUntil = regexp.MustCompile(`(?i)UNTIL=\d{8}T\d{6}Z`)

// NewRuleZone builds a rule-based zone from at least one observance.
func NewRuleZone(id string, observances []Observance) (*RuleZone, error) {
	if len(observances) == 0 {
		return nil, errs.Range("rule zone %q has no observances", id)
	}
	z := &RuleZone{id: id}
	for i, o := range observances {
		obs := &observance{Observance: o}
		// DTSTART is always the first onset.
		obs.onsets = append([]int64{o.Start}, o.RDates...)
		slices.Sort(obs.onsets)
		if o.RRule != "" {
			dtstart := time.Unix(o.Start, 0).UTC()
			opt, err := rrule.StrToROption(o.RRule)
			if err != nil {
				return nil, errs.Wrap(err, errs.CodeRange, fmt.Sprintf("rule zone %q: observance %d: invalid RRULE %q", id, i, o.RRule))
			}
			opt.Dtstart = dtstart
			if !opt.Until.IsZero() && utcUntil.MatchString(o.RRule) {
				// Onsets are iterated in local time; UNTIL in UTC is not.
				opt.Until = opt.Until.Add(time.Duration(o.OffsetFrom) * time.Second)
			}
			r, err := rrule.NewRRule(*opt)
			if err != nil {
				return nil, errs.Wrap(err, errs.CodeRange, fmt.Sprintf("rule zone %q: observance %d: invalid RRULE %q", id, i, o.RRule))
			}
			if opt.Count > 0 {
				// COUNT is relative to DTSTART; the occurrences are finite.
				for _, t := range r.All() {
					obs.onsets = append(obs.onsets, t.Unix())
				}
				slices.Sort(obs.onsets)
			} else {
				obs.opt = explicit(*opt)
				obs.rule = r
			}
		}
		z.obs = append(z.obs, obs)
		if z.earliest == nil || o.Start-o.OffsetFrom < z.earliest.Start-z.earliest.OffsetFrom {
			z.earliest = obs
		}
	}
	return z, nil
}

func (z *RuleZone) ID() string { return z.id }

func (z *RuleZone) Kind() Kind { return KindRule }

func (z *RuleZone) String() string { return z.id }

// Observances returns the definitions the zone was built from.
func (z *RuleZone) Observances() []Observance {
	out := make([]Observance, len(z.obs))
	for i, o := range z.obs {
		out[i] = o.Observance
	}
	return out
}

// offset returns the offset in seconds at the given Unix second: the OffsetTo
// of the observance with the latest onset at or before it. Before the first
// onset the OffsetFrom of the earliest observance applies.
func (z *RuleZone) offset(epochSeconds int64) int64 {
	var (
		best    *observance
		bestUTC int64
	)
	for _, o := range z.obs {
		local, ok := o.latestOnset(epochSeconds + o.OffsetFrom)
		if !ok {
			continue
		}
		if utc := local - o.OffsetFrom; best == nil || utc > bestUTC {
			best, bestUTC = o, utc
		}
	}
	if best == nil {
		return z.earliest.OffsetFrom
	}
	return best.OffsetTo
}

func (z *RuleZone) OffsetNanosecondsFor(epochSeconds int64) int64 {
	return z.offset(epochSeconds) * nsPerSecond
}

func (z *RuleZone) PossibleOffsets(localSeconds int64) []int64 {
	return possibleOffsets(z.offset, localSeconds)
}

// OffsetSecondsAtLocal returns the offset that applies to a wall-clock time by
// comparing it with the onsets directly: the OffsetTo of the observance with
// the latest onset at or before localSeconds.
func (z *RuleZone) OffsetSecondsAtLocal(localSeconds int64) int64 {
	var (
		best      *observance
		bestLocal int64
	)
	for _, o := range z.obs {
		local, ok := o.latestOnset(localSeconds)
		if !ok {
			continue
		}
		if best == nil || local > bestLocal {
			best, bestLocal = o, local
		}
	}
	if best == nil {
		return z.earliest.OffsetFrom
	}
	return best.OffsetTo
}
