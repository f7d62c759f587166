package calendar

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/internal/isodate"
)

// era is a named span of calendar years. Eras of a calendar are ordered from
// the latest to the earliest start.
type era struct {
	name string
	// start is the first ISO date of the era. The zero Date marks an era
	// without a lower bound.
	start Date
	// anchor is the calendar year of era year 1.
	anchor int
	// inverse eras count era years backwards from the anchor.
	inverse bool
}

func (e era) year(eraYear int) int {
	if e.inverse {
		return e.anchor - eraYear + 1
	}
	return e.anchor + eraYear - 1
}

func (e era) eraYear(year int) int {
	if e.inverse {
		return e.anchor - year + 1
	}
	return year - e.anchor + 1
}

// isoCalendar implements the ISO 8601 calendar and calendars that share its
// months but number years differently.
type isoCalendar struct {
	id string
	// yearOffset converts ISO years to calendar years.
	yearOffset int
	eras       []era
	// eraFollowsDate is set when changing month or day may change the era.
	eraFollowsDate bool
}

var (
	// ISO is the ISO 8601 calendar.
	ISO Calendar = &isoCalendar{id: "iso8601"}

	// Gregory is the proleptic Gregorian calendar with the eras ce and bce.
	Gregory Calendar = &isoCalendar{
		id: "gregory",
		eras: []era{
			{name: "ce", start: Date{1, 1, 1}, anchor: 1},
			{name: "bce", anchor: 0, inverse: true},
		},
	}

	// Japanese numbers years by imperial era from 1868-10-23 on and falls
	// back to ce and bce before that.
	Japanese Calendar = &isoCalendar{
		id: "japanese",
		eras: []era{
			{name: "reiwa", start: Date{2019, 5, 1}, anchor: 2019},
			{name: "heisei", start: Date{1989, 1, 8}, anchor: 1989},
			{name: "showa", start: Date{1926, 12, 25}, anchor: 1926},
			{name: "taisho", start: Date{1912, 7, 30}, anchor: 1912},
			{name: "meiji", start: Date{1868, 10, 23}, anchor: 1868},
			{name: "ce", start: Date{1, 1, 1}, anchor: 1},
			{name: "bce", anchor: 0, inverse: true},
		},
		eraFollowsDate: true,
	}

	// ROC is the Republic of China (Minguo) calendar; year 1 is ISO 1912.
	ROC Calendar = &isoCalendar{
		id:         "roc",
		yearOffset: -1911,
		eras: []era{
			{name: "roc", start: Date{1912, 1, 1}, anchor: 1},
			{name: "broc", anchor: 0, inverse: true},
		},
	}

	// Buddhist is the Thai solar calendar; year 1 is ISO -542.
	Buddhist Calendar = &isoCalendar{
		id:         "buddhist",
		yearOffset: 543,
		eras:       []era{{name: "be", anchor: 1}},
	}
)

func (c *isoCalendar) ID() string { return c.id }

func (c *isoCalendar) String() string { return c.id }

func (c *isoCalendar) eraOf(d Date) era {
	for _, e := range c.eras {
		if e.start == (Date{}) || Compare(d, e.start) >= 0 {
			return e
		}
	}
	return c.eras[len(c.eras)-1]
}

func (c *isoCalendar) eraNamed(name string) (era, bool) {
	for _, e := range c.eras {
		if e.name == name {
			return e, true
		}
	}
	return era{}, false
}

// MonthCode formats an ISO month as a month code, for example "M03".
func MonthCode(month int) string {
	return fmt.Sprintf("M%02d", month)
}

// ParseMonthCode parses month codes of calendars without leap months.
func ParseMonthCode(code string) (int, error) {
	if len(code) != 3 || code[0] != 'M' {
		return 0, errs.Range("invalid month code %q", code)
	}
	m, err := strconv.Atoi(code[1:])
	if err != nil || m < 1 || m > 12 {
		return 0, errs.Range("invalid month code %q", code)
	}
	return m, nil
}

func (c *isoCalendar) Fields(d Date) Fields {
	f := Fields{
		Year:      Ptr(d.Year + c.yearOffset),
		Month:     Ptr(d.Month),
		MonthCode: Ptr(MonthCode(d.Month)),
		Day:       Ptr(d.Day),
	}
	if len(c.eras) > 0 {
		e := c.eraOf(d)
		f.Era = Ptr(e.name)
		f.EraYear = Ptr(e.eraYear(d.Year + c.yearOffset))
	}
	return f
}

func (c *isoCalendar) resolveYear(f Fields) (int, error) {
	var (
		year    int
		hasYear = f.Year != nil
	)
	if hasYear {
		year = *f.Year
	}
	if len(c.eras) == 0 || (f.Era == nil && f.EraYear == nil) {
		if !hasYear {
			return 0, errs.Type("year is required")
		}
		return year, nil
	}
	if f.Era == nil || f.EraYear == nil {
		return 0, errs.Type("era and eraYear must be given together")
	}
	e, ok := c.eraNamed(*f.Era)
	if !ok {
		return 0, errs.Range("unknown era %q for calendar %s", *f.Era, c.id)
	}
	fromEra := e.year(*f.EraYear)
	if hasYear && year != fromEra {
		return 0, errs.Range("year %d does not match era %s year %d", year, e.name, *f.EraYear)
	}
	return fromEra, nil
}

func resolveMonth(f Fields) (int, error) {
	switch {
	case f.MonthCode != nil:
		m, err := ParseMonthCode(*f.MonthCode)
		if err != nil {
			return 0, err
		}
		if f.Month != nil && *f.Month != m {
			return 0, errs.Range("month %d does not match month code %q", *f.Month, *f.MonthCode)
		}
		return m, nil
	case f.Month != nil:
		return *f.Month, nil
	default:
		return 0, errs.Type("month or monthCode is required")
	}
}

func (c *isoCalendar) DateFromFields(f Fields, overflow Overflow) (Date, error) {
	year, err := c.resolveYear(f)
	if err != nil {
		return Date{}, err
	}
	month, err := resolveMonth(f)
	if err != nil {
		return Date{}, err
	}
	if f.Day == nil {
		return Date{}, errs.Type("day is required")
	}
	return regulate(year-c.yearOffset, month, *f.Day, overflow)
}

// regulate validates or clamps an ISO date.
func regulate(year, month, day int, overflow Overflow) (Date, error) {
	if month < 1 || day < 1 {
		return Date{}, errs.Range("month and day must be positive, got %d-%d", month, day)
	}
	if year < MinYear || year > MaxYear {
		return Date{}, errs.Range("year %d out of range", year)
	}
	if overflow == Reject {
		if month > 12 {
			return Date{}, errs.Range("month %d out of range", month)
		}
		if dim := isodate.DaysInMonth(year, month); day > dim {
			return Date{}, errs.Range("day %d out of range for %04d-%02d", day, year, month)
		}
		return Date{year, month, day}, nil
	}
	month = min(month, 12)
	day = min(day, isodate.DaysInMonth(year, month))
	return Date{year, month, day}, nil
}

func (c *isoCalendar) DateAdd(d Date, dur Duration, overflow Overflow) (Date, error) {
	year := int64(d.Year) + dur.Years
	months := int64(d.Month) + dur.Months
	if year < math.MinInt32 || year > math.MaxInt32 {
		return Date{}, errs.Range("year out of range adding %+v to %v", dur, d)
	}
	y, m := isodate.BalanceYearMonth(int(year), months)
	intermediate, err := regulate(y, m, d.Day, overflow)
	if err != nil {
		return Date{}, err
	}
	days := dur.Weeks*7 + dur.Days
	if days == 0 {
		return intermediate, nil
	}
	out := DateFromEpochDays(intermediate.EpochDays() + days)
	if out.Year < MinYear || out.Year > MaxYear {
		return Date{}, errs.Range("date out of range adding %+v to %v", dur, d)
	}
	return out, nil
}

// surpasses reports whether the unregulated date y-m-d lies beyond target in
// the direction of sign.
func surpasses(sign, y, m, d int, target Date) bool {
	return sign*compareFields(y, m, d, target) > 0
}

func (c *isoCalendar) DateUntil(a, b Date, largest Unit) (Duration, error) {
	sign := -Compare(a, b)
	if sign == 0 {
		return Duration{}, nil
	}

	var years, months int
	if largest == Year || largest == Month {
		candidate := b.Year - a.Year
		if candidate != 0 {
			candidate -= sign
		}
		for !surpasses(sign, a.Year+candidate, a.Month, a.Day, b) {
			years = candidate
			candidate += sign
		}

		candidate = sign
		y, m := isodate.BalanceYearMonth(a.Year+years, int64(a.Month+candidate))
		for !surpasses(sign, y, m, a.Day, b) {
			months = candidate
			candidate += sign
			y, m = isodate.BalanceYearMonth(y, int64(m+sign))
		}

		if largest == Month {
			months += years * 12
			years = 0
		}
	}

	y, m := isodate.BalanceYearMonth(a.Year+years, int64(a.Month+months))
	intermediate, err := regulate(y, m, a.Day, Constrain)
	if err != nil {
		return Duration{}, err
	}
	days := b.EpochDays() - intermediate.EpochDays()
	var weeks int64
	if largest == Week {
		weeks = days / 7
		days %= 7
	}
	return Duration{Years: int64(years), Months: int64(months), Weeks: weeks, Days: days}, nil
}

func (c *isoCalendar) DaysInMonth(d Date) int { return isodate.DaysInMonth(d.Year, d.Month) }

func (c *isoCalendar) DaysInYear(d Date) int { return isodate.DaysInYear(d.Year) }

func (c *isoCalendar) MonthsInYear(Date) int { return 12 }

func (c *isoCalendar) InLeapYear(d Date) bool { return isodate.IsLeapYear(d.Year) }

func (c *isoCalendar) DayOfWeek(d Date) int { return isodate.ISODayOfWeek(d.Year, d.Month, d.Day) }

func (c *isoCalendar) DayOfYear(d Date) int { return isodate.DayOfYear(d.Year, d.Month, d.Day) }

func (c *isoCalendar) WeekOfYear(d Date) int {
	_, w := isodate.ISOWeek(d.Year, d.Month, d.Day)
	return w
}

func (c *isoCalendar) FieldNames(requested []string) []string {
	out := slices.Clone(requested)
	if len(c.eras) > 0 && slices.Contains(requested, "year") {
		for _, name := range []string{"era", "eraYear"} {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

func (c *isoCalendar) MergeFields(base, additional Fields) Fields {
	out := base
	if additional.Month != nil || additional.MonthCode != nil {
		out.Month, out.MonthCode = nil, nil
	}
	if len(c.eras) > 0 {
		if additional.Year != nil || additional.Era != nil || additional.EraYear != nil {
			out.Year, out.Era, out.EraYear = nil, nil, nil
		}
		if c.eraFollowsDate && (additional.Month != nil || additional.MonthCode != nil || additional.Day != nil) {
			out.Era, out.EraYear = nil, nil
		}
	}
	if additional.Era != nil {
		out.Era = additional.Era
	}
	if additional.EraYear != nil {
		out.EraYear = additional.EraYear
	}
	if additional.Year != nil {
		out.Year = additional.Year
	}
	if additional.Month != nil {
		out.Month = additional.Month
	}
	if additional.MonthCode != nil {
		out.MonthCode = additional.MonthCode
	}
	if additional.Day != nil {
		out.Day = additional.Day
	}
	return out
}
