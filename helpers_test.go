package temporal

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/internal/tztest"
	"github.com/ngrash/go-temporal/timezone"
)

// unix returns the Unix second of a UTC date and time.
func unix(y int, m time.Month, d, h, min int) int64 {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC).Unix()
}

func epochNs(sec int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(sec), big.NewInt(nsPerSecond))
}

func losAngeles(t *testing.T) timezone.TimeZone {
	t.Helper()
	z, err := timezone.LoadBytes("America/Los_Angeles", tztest.File("America/Los_Angeles"))
	require.NoError(t, err)
	return z
}

func loadZone(t *testing.T, id string, data []byte) timezone.TimeZone {
	t.Helper()
	z, err := timezone.LoadBytes(id, data)
	require.NoError(t, err)
	return z
}

// rulePacific is US Pacific time described by observances, the way a
// VTIMEZONE component describes it.
func rulePacific(t *testing.T) *timezone.RuleZone {
	t.Helper()
	z, err := timezone.NewRuleZone("Custom/Pacific", []timezone.Observance{
		{
			Name:       "PST",
			Start:      unix(1970, time.November, 1, 2, 0),
			OffsetFrom: -7 * 3600,
			OffsetTo:   -8 * 3600,
			RRule:      "FREQ=YEARLY;BYMONTH=11;BYDAY=1SU",
		},
		{
			Name:       "PDT",
			Daylight:   true,
			Start:      unix(1970, time.March, 8, 2, 0),
			OffsetFrom: -8 * 3600,
			OffsetTo:   -7 * 3600,
			RRule:      "FREQ=YEARLY;BYMONTH=3;BYDAY=2SU",
		},
	})
	require.NoError(t, err)
	return z
}

// ruleFixed is a rule-based zone with a single constant offset.
func ruleFixed(t *testing.T, id string, offsetSeconds int64) *timezone.RuleZone {
	t.Helper()
	z, err := timezone.NewRuleZone(id, []timezone.Observance{{
		Name:       "STD",
		Start:      unix(1970, time.January, 1, 0, 0),
		OffsetFrom: offsetSeconds,
		OffsetTo:   offsetSeconds,
	}})
	require.NoError(t, err)
	return z
}

func mustDuration(t *testing.T, f DurationFields) Duration {
	t.Helper()
	d, err := NewDuration(f)
	require.NoError(t, err)
	return d
}

func mustPlainDateTime(t *testing.T, y, mo, d, h, mi int) PlainDateTime {
	t.Helper()
	p, err := NewPlainDateTime(y, mo, d, h, mi, 0, 0, 0, 0, nil)
	require.NoError(t, err)
	return p
}

func mustPlainDate(t *testing.T, y, m, d int) PlainDate {
	t.Helper()
	p, err := NewPlainDate(y, m, d, nil)
	require.NoError(t, err)
	return p
}

// zoned resolves a wall-clock time in tz with compatible disambiguation.
func zoned(t *testing.T, tz timezone.TimeZone, y, mo, d, h, mi int) ZonedDateTime {
	t.Helper()
	z, err := mustPlainDateTime(t, y, mo, d, h, mi).ToZonedDateTime(tz, DisambiguationCompatible)
	require.NoError(t, err)
	return z
}

func withCalendar(t *testing.T, id string) calendar.Calendar {
	t.Helper()
	c, err := calendar.Lookup(id)
	require.NoError(t, err)
	return c
}
