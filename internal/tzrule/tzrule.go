// Package tzrule evaluates POSIX TZ strings as found in the footer of TZif files.
//
// A TZ string describes the local time rules that apply after the last
// transition stored in a TZif data block, for example
//
//	PST8PDT,M3.2.0,M11.1.0
//
// The grammar is defined in Section 8.3 of the "Base Definitions" volume of
// POSIX, with the extensions from Section 3.3.1 of RFC 8536.
package tzrule

import (
	"fmt"
	"sort"
	"time"

	"github.com/ngrash/go-temporal/internal/isodate"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// DayForm represents the form of the date part of a transition rule.
type DayForm int

func (f DayForm) String() string {
	switch f {
	case DayFormJulian:
		return "Julian"
	case DayFormDayOfYear:
		return "DayOfYear"
	case DayFormMonthWeekDay:
		return "MonthWeekDay"
	default:
		return "<UNDEFINED>"
	}
}

const (
	// DayFormJulian is "Jn": day n (1..365) where February 29 is never counted.
	DayFormJulian DayForm = iota
	// DayFormDayOfYear is "n": zero-based day n (0..365) counting February 29.
	DayFormDayOfYear
	// DayFormMonthWeekDay is "Mm.w.d": weekday d of week w of month m, where
	// week 5 means the last such weekday.
	DayFormMonthWeekDay
)

// DateRule describes when in a year a transition happens.
type DateRule struct {
	Form    DayForm
	Day     int          // Julian or day-of-year number.
	Month   int          // MonthWeekDay only.
	Week    int          // MonthWeekDay only, 1..5.
	Weekday time.Weekday // MonthWeekDay only.
	Time    int64        // Seconds after local midnight, may be negative or exceed a day.
}

// Rule is a parsed TZ string.
type Rule struct {
	StdName   string
	StdOffset int64 // Seconds east of UTC.
	DSTName   string
	DSTOffset int64 // Seconds east of UTC.
	HasDST    bool
	Start     DateRule // Transition into daylight saving time, in local standard time.
	End       DateRule // Transition back to standard time, in local daylight time.
}

// Transition is a change of local time type computed from a Rule.
type Transition struct {
	At     int64 // Unix seconds.
	Offset int64 // Seconds east of UTC after the transition.
	DST    bool
	Name   string
}

// Parse parses a TZ string. An empty string is an error.
func Parse(s string) (Rule, error) {
	var (
		r   Rule
		ok  bool
		rem = s
	)
	if r.StdName, rem, ok = parseName(rem); !ok {
		return r, fmt.Errorf("invalid TZ string %q: bad standard time name", s)
	}
	var off int64
	if off, rem, ok = parseOffset(rem, 24*7); !ok {
		return r, fmt.Errorf("invalid TZ string %q: bad standard time offset", s)
	}
	r.StdOffset = -off
	if len(rem) == 0 {
		return r, nil
	}

	r.HasDST = true
	if r.DSTName, rem, ok = parseName(rem); !ok {
		return r, fmt.Errorf("invalid TZ string %q: bad daylight time name", s)
	}
	if len(rem) == 0 || rem[0] == ',' {
		r.DSTOffset = r.StdOffset + secondsPerHour
	} else {
		if off, rem, ok = parseOffset(rem, 24*7); !ok {
			return r, fmt.Errorf("invalid TZ string %q: bad daylight time offset", s)
		}
		r.DSTOffset = -off
	}

	if len(rem) == 0 {
		// Default US rules.
		rem = ",M3.2.0,M11.1.0"
	}
	if rem[0] != ',' {
		return r, fmt.Errorf("invalid TZ string %q: expected rule separator", s)
	}
	if r.Start, rem, ok = parseDateRule(rem[1:]); !ok || len(rem) == 0 || rem[0] != ',' {
		return r, fmt.Errorf("invalid TZ string %q: bad start rule", s)
	}
	if r.End, rem, ok = parseDateRule(rem[1:]); !ok || len(rem) > 0 {
		return r, fmt.Errorf("invalid TZ string %q: bad end rule", s)
	}
	return r, nil
}

func parseName(s string) (string, string, bool) {
	if len(s) == 0 {
		return "", "", false
	}
	if s[0] == '<' {
		for i, c := range s {
			if c == '>' {
				return s[1:i], s[i+1:], i > 1
			}
		}
		return "", "", false
	}
	for i, c := range s {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			if i < 3 {
				return "", "", false
			}
			return s[:i], s[i:], true
		}
	}
	if len(s) < 3 {
		return "", "", false
	}
	return s, "", true
}

// parseOffset parses [+-]hh[:mm[:ss]] and returns seconds with the sign as written.
func parseOffset(s string, maxHours int) (int64, string, bool) {
	if len(s) == 0 {
		return 0, "", false
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	hours, s, ok := parseNum(s, 0, maxHours)
	if !ok {
		return 0, "", false
	}
	off := int64(hours) * secondsPerHour
	if len(s) > 0 && s[0] == ':' {
		var mins int
		if mins, s, ok = parseNum(s[1:], 0, 59); !ok {
			return 0, "", false
		}
		off += int64(mins) * secondsPerMinute
		if len(s) > 0 && s[0] == ':' {
			var secs int
			if secs, s, ok = parseNum(s[1:], 0, 59); !ok {
				return 0, "", false
			}
			off += int64(secs)
		}
	}
	if neg {
		off = -off
	}
	return off, s, true
}

func parseDateRule(s string) (DateRule, string, bool) {
	var (
		r  DateRule
		ok bool
	)
	if len(s) == 0 {
		return r, "", false
	}
	switch s[0] {
	case 'J':
		r.Form = DayFormJulian
		if r.Day, s, ok = parseNum(s[1:], 1, 365); !ok {
			return r, "", false
		}
	case 'M':
		r.Form = DayFormMonthWeekDay
		if r.Month, s, ok = parseNum(s[1:], 1, 12); !ok || len(s) == 0 || s[0] != '.' {
			return r, "", false
		}
		if r.Week, s, ok = parseNum(s[1:], 1, 5); !ok || len(s) == 0 || s[0] != '.' {
			return r, "", false
		}
		var wd int
		if wd, s, ok = parseNum(s[1:], 0, 6); !ok {
			return r, "", false
		}
		r.Weekday = time.Weekday(wd)
	default:
		r.Form = DayFormDayOfYear
		if r.Day, s, ok = parseNum(s, 0, 365); !ok {
			return r, "", false
		}
	}

	if len(s) == 0 || s[0] != '/' {
		r.Time = 2 * secondsPerHour
		return r, s, true
	}
	// RFC 8536 Section 3.3.1 allows -167..167 hours.
	if r.Time, s, ok = parseOffset(s[1:], 167); !ok {
		return r, "", false
	}
	return r, s, true
}

func parseNum(s string, min, max int) (int, string, bool) {
	if len(s) == 0 || s[0] < '0' || s[0] > '9' {
		return 0, "", false
	}
	num := 0
	i := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		num = num*10 + int(s[i]-'0')
		if num > max {
			return 0, "", false
		}
	}
	if num < min {
		return 0, "", false
	}
	return num, s[i:], true
}

// EpochDay returns the day, as days since the epoch, on which the rule fires in year.
func (d DateRule) EpochDay(year int) int64 {
	jan1 := isodate.EpochDays(year, 1, 1)
	switch d.Form {
	case DayFormJulian:
		n := int64(d.Day - 1)
		if isodate.IsLeapYear(year) && d.Day >= 60 {
			n++
		}
		return jan1 + n
	case DayFormDayOfYear:
		return jan1 + int64(d.Day)
	case DayFormMonthWeekDay:
		if d.Week == 5 {
			return isodate.EpochDays(year, d.Month, isodate.LastWeekdayOfMonth(year, d.Month, d.Weekday))
		}
		return isodate.WeekdayOnOrAfter(year, d.Month, 1, d.Weekday) + int64(7*(d.Week-1))
	}
	panic(fmt.Errorf("invalid DayForm: %v", d.Form))
}

// TransitionsIn returns the transitions computed for the given year in chronological order.
// A rule without daylight saving time has none.
func (r Rule) TransitionsIn(year int) []Transition {
	if !r.HasDST {
		return nil
	}
	start := Transition{
		At:     r.Start.EpochDay(year)*secondsPerDay + r.Start.Time - r.StdOffset,
		Offset: r.DSTOffset,
		DST:    true,
		Name:   r.DSTName,
	}
	end := Transition{
		At:     r.End.EpochDay(year)*secondsPerDay + r.End.Time - r.DSTOffset,
		Offset: r.StdOffset,
		DST:    false,
		Name:   r.StdName,
	}
	if end.At < start.At {
		return []Transition{end, start}
	}
	return []Transition{start, end}
}

// around returns the transitions of the years before, of and after the year containing sec.
func (r Rule) around(sec int64) []Transition {
	y, _, _ := isodate.FromEpochDays(isodate.FloorDiv(sec, secondsPerDay))
	var ts []Transition
	for year := y - 1; year <= y+1; year++ {
		ts = append(ts, r.TransitionsIn(year)...)
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].At < ts[j].At })
	return ts
}

// Lookup returns the local time type in effect at sec.
func (r Rule) Lookup(sec int64) (offset int64, dst bool, name string) {
	if !r.HasDST {
		return r.StdOffset, false, r.StdName
	}
	ts := r.around(sec)
	// The year before always contributes a transition at or before sec.
	cur := ts[0]
	for _, t := range ts {
		if t.At > sec {
			break
		}
		cur = t
	}
	return cur.Offset, cur.DST, cur.Name
}

// Next returns the first transition strictly after sec that changes the offset.
func (r Rule) Next(sec int64) (Transition, bool) {
	if !r.HasDST || r.StdOffset == r.DSTOffset {
		return Transition{}, false
	}
	for {
		for _, t := range r.around(sec) {
			if t.At > sec {
				return t, true
			}
		}
		// All transitions of the window fired already; look at the following year.
		sec += 365 * secondsPerDay
	}
}

// Previous returns the last transition strictly before sec that changes the offset.
func (r Rule) Previous(sec int64) (Transition, bool) {
	if !r.HasDST || r.StdOffset == r.DSTOffset {
		return Transition{}, false
	}
	for {
		ts := r.around(sec)
		for i := len(ts) - 1; i >= 0; i-- {
			if ts[i].At < sec {
				return ts[i], true
			}
		}
		sec -= 365 * secondsPerDay
	}
}
