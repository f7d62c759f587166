// Package temporal implements date and time arithmetic with nanosecond
// resolution over pluggable calendars and time zones.
//
// Exact time is represented by Instant. Wall-clock time without a zone is
// represented by PlainDate, PlainTime and PlainDateTime, each bound to a
// calendar.Calendar. ZonedDateTime joins an Instant with a timezone.TimeZone
// and a calendar; its wall-clock fields are always derived from the instant.
//
// Arithmetic with years, months, weeks and days follows the wall clock:
// adding one day to 2022-03-12T12:00 in America/Los_Angeles gives
// 2022-03-13T12:00, which is 23 hours later. Hours and smaller units are exact.
//
// Wall-clock times that a transition skips or repeats are resolved by a
// Disambiguation. Durations with calendar units are rounded and compared
// relative to a RelativeTo anchor.
//
// Errors are categorized by package errs: range errors for values out of
// range, type errors for operations on the wrong kind of value, and
// not-implemented errors for operations that rule-based time zones do not
// support.
package temporal
