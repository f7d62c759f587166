package temporal

import (
	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

// TimeFields is a bag of wall-clock time fields. Nil means absent.
type TimeFields struct {
	Hour        *int
	Minute      *int
	Second      *int
	Millisecond *int
	Microsecond *int
	Nanosecond  *int
}

func (f TimeFields) empty() bool {
	return f == TimeFields{}
}

// merge overlays the fields of f that are set on t.
func (f TimeFields) merge(t isoTime) [6]int {
	out := [6]int{t.hour, t.minute, t.second, t.millisecond, t.microsecond, t.nanosecond}
	for i, p := range []*int{f.Hour, f.Minute, f.Second, f.Millisecond, f.Microsecond, f.Nanosecond} {
		if p != nil {
			out[i] = *p
		}
	}
	return out
}

func (f TimeFields) resolve(base isoTime, overflow Overflow) (isoTime, error) {
	v := f.merge(base)
	return regulateTime(v[0], v[1], v[2], v[3], v[4], v[5], overflow)
}

// PropertyBag is a set of fields to build a date-time from. It is either
// DateTimeFields or ZonedFields.
type PropertyBag interface {
	propertyBag()
}

// DateTimeFields is a bag of calendar date and wall-clock time fields. A nil
// Calendar is the ISO calendar.
type DateTimeFields struct {
	calendar.Fields
	TimeFields
	Calendar calendar.Calendar
}

func (DateTimeFields) propertyBag() {}

func (f DateTimeFields) empty() bool {
	return f.Fields == calendar.Fields{} && f.TimeFields.empty() && f.Calendar == nil
}

// resolve interprets the fields as an ISO date-time. Missing time fields are zero.
func (f DateTimeFields) resolve(cal calendar.Calendar, overflow Overflow) (isoDateTime, error) {
	date, err := cal.DateFromFields(f.Fields, overflow)
	if err != nil {
		return isoDateTime{}, err
	}
	t, err := f.TimeFields.resolve(isoTime{}, overflow)
	if err != nil {
		return isoDateTime{}, err
	}
	dt := isoDateTime{date: date, time: t}
	if err := checkDateTime(dt); err != nil {
		return isoDateTime{}, err
	}
	return dt, nil
}

// ZonedFields adds a time zone and a UTC offset to DateTimeFields. Offset is a
// string such as -07:00 and is reconciled with the time zone according to an
// OffsetOption.
type ZonedFields struct {
	DateTimeFields
	Offset   *string
	TimeZone timezone.TimeZone
}

func (ZonedFields) propertyBag() {}

func (f ZonedFields) empty() bool {
	return f.DateTimeFields.empty() && f.Offset == nil && f.TimeZone == nil
}

func (f ZonedFields) offsetNs() (*int64, error) {
	if f.Offset == nil {
		return nil, nil
	}
	ns, err := parseOffset(*f.Offset)
	if err != nil {
		return nil, err
	}
	return &ns, nil
}

// RelativeTo anchors durations with calendar units. It is one of PlainDate,
// PlainDateTime or ZonedDateTime. A PlainDateTime anchors at the start of its
// date.
type RelativeTo interface {
	// anchor returns the midnight the anchor starts at and its calendar.
	anchor() (isoDateTime, calendar.Calendar)
}

// RelativeToFromFields builds a RelativeTo from a property bag: DateTimeFields
// give a PlainDate and ZonedFields a ZonedDateTime.
func RelativeToFromFields(bag PropertyBag) (RelativeTo, error) {
	switch b := bag.(type) {
	case DateTimeFields:
		d, err := PlainDateFromFields(b, OverflowConstrain)
		if err != nil {
			return nil, err
		}
		return d, nil
	case ZonedFields:
		z, err := ZonedDateTimeFromFields(b, ZonedOptions{Offset: OffsetReject})
		if err != nil {
			return nil, err
		}
		return z, nil
	default:
		return nil, errs.Type("unsupported property bag %T", bag)
	}
}
