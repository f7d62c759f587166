// Package isodate implements day arithmetic in the proleptic Gregorian calendar
// (ISO 8601) without depending on time.Location.
//
// Days are counted from the Unix epoch, 1970-01-01, and may be negative.
package isodate

import "time"

// The constants mirror the ones in the Go standard library's time package.
const (
	daysPer400Years = 365*400 + 97
	daysPer100Years = 365*100 + 24
	daysPer4Years   = 365*4 + 1

	// absoluteZeroYear is far enough in the past that every supported year lies
	// after it, which keeps cycle arithmetic unsigned.
	absoluteZeroYear = -292277022399
)

// unixEpochDays is the number of days from the absolute zero year to 1970-01-01.
var unixEpochDays = daysSinceAbsolute(1970)

// daysBefore[m] counts the days in a non-leap year before month m+1 begins.
var daysBefore = [...]int{
	0,
	31,
	31 + 28,
	31 + 28 + 31,
	31 + 28 + 31 + 30,
	31 + 28 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31 + 30,
	31 + 28 + 31 + 30 + 31 + 30 + 31 + 31 + 30 + 31 + 30 + 31,
}

// IsLeapYear determines if the year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in a given month for a specific year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysBefore[month] - daysBefore[month-1]
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// daysSinceAbsolute takes a year and returns the number of days from
// the absolute epoch to the start of that year.
func daysSinceAbsolute(year int) uint64 {
	y := uint64(int64(year) - absoluteZeroYear)

	// Add in days from 400-year cycles.
	n := y / 400
	y -= 400 * n
	d := daysPer400Years * n

	// Add in 100-year cycles.
	n = y / 100
	y -= 100 * n
	d += daysPer100Years * n

	// Add in 4-year cycles.
	n = y / 4
	y -= 4 * n
	d += daysPer4Years * n

	// Add in non-leap years.
	d += 365 * y

	return d
}

// EpochDays converts a date to the number of days since 1970-01-01.
// Month and day must already be valid for the year.
func EpochDays(year, month, day int) int64 {
	d := daysSinceAbsolute(year) + uint64(daysBefore[month-1]) + uint64(day-1)
	if month > 2 && IsLeapYear(year) {
		d++
	}
	return int64(d) - int64(unixEpochDays)
}

// FromEpochDays converts days since 1970-01-01 to a date.
func FromEpochDays(days int64) (year, month, day int) {
	d := uint64(days + int64(unixEpochDays))

	// Account for 400 year cycles.
	n := d / daysPer400Years
	y := 400 * n
	d -= daysPer400Years * n

	// Cut off 100-year cycles. The last cycle has one extra leap year, so on
	// the last day of that year, d / daysPer100Years will be 4 instead of 3.
	n = d / daysPer100Years
	n -= n >> 2
	y += 100 * n
	d -= daysPer100Years * n

	// Cut off 4-year cycles.
	n = d / daysPer4Years
	y += 4 * n
	d -= daysPer4Years * n

	// Cut off years within a 4-year cycle; the last one is a leap year.
	n = d / 365
	n -= n >> 2
	y += n
	d -= 365 * n

	year = int(int64(y) + absoluteZeroYear)
	yday := int(d)

	if IsLeapYear(year) {
		switch {
		case yday > 31+29-1:
			// After leap day; pretend it wasn't there.
			yday--
		case yday == 31+29-1:
			return year, 2, 29
		}
	}

	// Estimate month on assumption that every month has 31 days.
	// The estimate may be too low by at most one month, so adjust.
	month = yday / 31
	end := daysBefore[month+1]
	var begin int
	if yday >= end {
		month++
		begin = end
	} else {
		begin = daysBefore[month]
	}
	return year, month + 1, yday - begin + 1
}

// DayOfYear returns the ordinal day of the year, starting at 1.
func DayOfYear(year, month, day int) int {
	d := daysBefore[month-1] + day
	if month > 2 && IsLeapYear(year) {
		d++
	}
	return d
}

// Weekday returns the day of the week of a date.
func Weekday(year, month, day int) time.Weekday {
	// 1970-01-01 was a Thursday.
	return time.Weekday(FloorMod(EpochDays(year, month, day)+4, 7))
}

// ISODayOfWeek returns the ISO 8601 day of the week, 1 for Monday through 7 for Sunday.
func ISODayOfWeek(year, month, day int) int {
	wd := int(Weekday(year, month, day))
	if wd == 0 {
		return 7
	}
	return wd
}

// ISOWeek returns the ISO 8601 week number and the year that week belongs to.
func ISOWeek(year, month, day int) (weekYear, week int) {
	doy := DayOfYear(year, month, day)
	dow := ISODayOfWeek(year, month, day)
	week = (doy - dow + 10) / 7
	switch {
	case week < 1:
		weekYear = year - 1
		week = weeksInYear(weekYear)
	case week > weeksInYear(year):
		weekYear = year + 1
		week = 1
	default:
		weekYear = year
	}
	return weekYear, week
}

func weeksInYear(year int) int {
	jan1 := ISODayOfWeek(year, 1, 1)
	if jan1 == 4 || (jan1 == 3 && IsLeapYear(year)) {
		return 53
	}
	return 52
}

// BalanceYearMonth normalizes a month that may lie outside 1..12.
func BalanceYearMonth(year int, month int64) (int, int) {
	m := month - 1
	return year + int(FloorDiv(m, 12)), int(FloorMod(m, 12)) + 1
}

// LastWeekdayOfMonth finds the last instance of a given weekday in a specific month and year.
func LastWeekdayOfMonth(year, month int, weekday time.Weekday) int {
	lastDay := DaysInMonth(year, month)
	lastDayWeekday := Weekday(year, month, lastDay)

	// How many days to subtract from the last day to reach the weekday.
	offset := (int(lastDayWeekday) - int(weekday) + 7) % 7
	return lastDay - offset
}

// WeekdayOnOrAfter returns the first day on or after the given day that falls on
// weekday, as days since the epoch. The result may lie in a later month.
func WeekdayOnOrAfter(year, month, day int, weekday time.Weekday) int64 {
	diff := int(weekday) - int(Weekday(year, month, day))
	if diff < 0 {
		diff += 7
	}
	return EpochDays(year, month, day) + int64(diff)
}

// WeekdayOnOrBefore returns the last day on or before the given day that falls on
// weekday, as days since the epoch. The result may lie in an earlier month.
func WeekdayOnOrBefore(year, month, day int, weekday time.Weekday) int64 {
	diff := int(Weekday(year, month, day)) - int(weekday)
	if diff < 0 {
		diff += 7
	}
	return EpochDays(year, month, day) - int64(diff)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod returns the remainder of FloorDiv, which has the sign of b.
func FloorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
