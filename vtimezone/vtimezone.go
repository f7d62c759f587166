// Package vtimezone converts iCalendar VTIMEZONE components, as parsed by
// github.com/arran4/golang-ical, into rule-based time zones.
//
// A VTIMEZONE holds STANDARD and DAYLIGHT sub-components. Each one becomes a
// timezone.Observance: DTSTART is the first onset in the local time before the
// onset, TZOFFSETFROM and TZOFFSETTO the offsets around each onset, and RRULE
// and RDATE the further onsets.
package vtimezone

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

const (
	componentStandard = "STANDARD"
	componentDaylight = "DAYLIGHT"

	propertyTzoffsetfrom = ics.ComponentProperty(ics.PropertyTzoffsetfrom)
	propertyTzoffsetto   = ics.ComponentProperty(ics.PropertyTzoffsetto)
	propertyTzname       = ics.ComponentProperty(ics.PropertyTzname)
)

// Local date-time layouts of DTSTART and RDATE values.
const (
	layoutDateTime = "20060102T150405"
	layoutDate     = "20060102"
)

// Parse reads an iCalendar stream and converts all of its VTIMEZONE components.
func Parse(r io.Reader) ([]*timezone.RuleZone, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeRange, "parse calendar")
	}
	return FromCalendar(cal)
}

// FromCalendar converts every VTIMEZONE component of cal, in order.
func FromCalendar(cal *ics.Calendar) ([]*timezone.RuleZone, error) {
	var zones []*timezone.RuleZone
	for _, vtz := range cal.Timezones() {
		z, err := FromComponent(vtz)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// FromComponent converts a single VTIMEZONE component. The zone takes the
// TZID of the component as its identifier.
func FromComponent(vtz *ics.VTimezone) (*timezone.RuleZone, error) {
	p := vtz.GetProperty(ics.ComponentPropertyTzid)
	if p == nil || p.Value == "" {
		return nil, errs.Type("VTIMEZONE without TZID")
	}
	id := p.Value

	var observances []timezone.Observance
	for i, c := range vtz.SubComponents() {
		base, daylight, ok := observanceComponent(c)
		if !ok {
			continue
		}
		o, err := observance(base, daylight)
		if err != nil {
			return nil, fmt.Errorf("VTIMEZONE %s: sub-component %d: %w", id, i, err)
		}
		observances = append(observances, o)
	}
	if len(observances) == 0 {
		return nil, errs.Type("VTIMEZONE %s has no STANDARD or DAYLIGHT component", id)
	}
	return timezone.NewRuleZone(id, observances)
}

func observanceComponent(c ics.Component) (*ics.ComponentBase, bool, bool) {
	switch c := c.(type) {
	case *ics.Standard:
		return &c.ComponentBase, false, true
	case *ics.Daylight:
		return &c.ComponentBase, true, true
	case *ics.GeneralComponent:
		switch strings.ToUpper(c.Token) {
		case componentStandard:
			return &c.ComponentBase, false, true
		case componentDaylight:
			return &c.ComponentBase, true, true
		}
	}
	return nil, false, false
}

func observance(c *ics.ComponentBase, daylight bool) (timezone.Observance, error) {
	o := timezone.Observance{Daylight: daylight}
	if p := c.GetProperty(propertyTzname); p != nil {
		o.Name = p.Value
	}

	p := c.GetProperty(ics.ComponentPropertyDtStart)
	if p == nil {
		return o, errs.Type("missing DTSTART")
	}
	start, err := parseLocal(p.Value)
	if err != nil {
		return o, err
	}
	o.Start = start

	if o.OffsetFrom, err = requiredOffset(c, propertyTzoffsetfrom); err != nil {
		return o, err
	}
	if o.OffsetTo, err = requiredOffset(c, propertyTzoffsetto); err != nil {
		return o, err
	}

	if p := c.GetProperty(ics.ComponentPropertyRrule); p != nil {
		o.RRule = p.Value
	}
	for _, p := range c.GetProperties(ics.ComponentPropertyRdate) {
		for _, v := range strings.Split(p.Value, ",") {
			// A PERIOD value starts at its first date-time.
			v, _, _ = strings.Cut(v, "/")
			t, err := parseLocal(v)
			if err != nil {
				return o, err
			}
			o.RDates = append(o.RDates, t)
		}
	}
	return o, nil
}

func requiredOffset(c *ics.ComponentBase, prop ics.ComponentProperty) (int64, error) {
	p := c.GetProperty(prop)
	if p == nil {
		return 0, errs.Type("missing %s", prop)
	}
	return ParseUTCOffset(p.Value)
}

// parseLocal parses a local DATE-TIME or DATE value into seconds since
// 1970-01-01T00:00 of the same wall clock.
func parseLocal(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "Z") {
		return 0, errs.Range("onset %q must be a local time", v)
	}
	layout := layoutDateTime
	if !strings.Contains(v, "T") {
		layout = layoutDate
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeRange, fmt.Sprintf("invalid date-time %q", v))
	}
	return t.Unix(), nil
}

// ParseUTCOffset parses an RFC 5545 UTC-OFFSET value (±HHMM or ±HHMMSS) into
// seconds east of UTC.
func ParseUTCOffset(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if (len(v) != 5 && len(v) != 7) || (v[0] != '+' && v[0] != '-') {
		return 0, errs.Range("invalid UTC offset %q", v)
	}
	var parts [3]int64
	for i := 0; 1+2*i < len(v); i++ {
		hi, lo := v[1+2*i], v[2+2*i]
		if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
			return 0, errs.Range("invalid UTC offset %q", v)
		}
		parts[i] = int64(hi-'0')*10 + int64(lo-'0')
	}
	if parts[0] > 23 || parts[1] > 59 || parts[2] > 59 {
		return 0, errs.Range("invalid UTC offset %q", v)
	}
	off := parts[0]*3600 + parts[1]*60 + parts[2]
	if v[0] == '-' {
		if off == 0 {
			// -0000 is not permitted by RFC 5545.
			return 0, errs.Range("invalid UTC offset %q", v)
		}
		off = -off
	}
	return off, nil
}
