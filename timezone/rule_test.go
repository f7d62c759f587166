package timezone

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"github.com/ngrash/go-temporal/errs"
)

// usPacific describes US Pacific time as a VTIMEZONE would.
var usPacific = []Observance{
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
}

func TestRuleZone_Offsets(t *testing.T) {
	z, err := NewRuleZone("Custom/Pacific", usPacific)
	require.NoError(t, err)
	assert.Equal(t, KindRule, z.Kind())
	assert.Equal(t, "Custom/Pacific", z.ID())

	tests := []struct {
		name string
		at   int64
		want int64
	}{
		{"before first onset", unix(1960, time.July, 1, 0, 0), -8 * hour},
		{"summer", unix(2022, time.July, 1, 0, 0), -7 * hour},
		{"winter", unix(2022, time.December, 1, 0, 0), -8 * hour},
		{"just before daylight", unix(2022, time.March, 13, 9, 59), -8 * hour},
		{"daylight onset", unix(2022, time.March, 13, 10, 0), -7 * hour},
		{"just before standard", unix(2022, time.November, 6, 8, 59), -7 * hour},
		{"standard onset", unix(2022, time.November, 6, 9, 0), -8 * hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, z.OffsetNanosecondsFor(tt.at))
		})
	}
}

// outlookPacific is US Pacific time with the 1601 DTSTARTs Exchange and
// Outlook write.
var outlookPacific = []Observance{
	{
		Name:       "PST",
		Start:      unix(1601, time.November, 4, 2, 0),
		OffsetFrom: -7 * 3600,
		OffsetTo:   -8 * 3600,
		RRule:      "FREQ=YEARLY;BYMONTH=11;BYDAY=1SU",
	},
	{
		Name:       "PDT",
		Daylight:   true,
		Start:      unix(1601, time.March, 11, 2, 0),
		OffsetFrom: -8 * 3600,
		OffsetTo:   -7 * 3600,
		RRule:      "FREQ=YEARLY;BYMONTH=3;BYDAY=2SU",
	},
}

func TestRuleZone_DistantFromDTSTART(t *testing.T) {
	tests := []struct {
		name string
		obs  []Observance
		at   int64
		want int64
	}{
		{"1601 start, 1890 summer", outlookPacific, unix(1890, time.July, 1, 0, 0), -7 * hour},
		{"1601 start, 1900 summer", outlookPacific, unix(1900, time.July, 1, 0, 0), -7 * hour},
		{"1601 start, 2024 summer", outlookPacific, unix(2024, time.July, 1, 0, 0), -7 * hour},
		{"1601 start, 2024 winter", outlookPacific, unix(2024, time.January, 15, 0, 0), -8 * hour},
		{"1601 start, before daylight", outlookPacific, unix(2024, time.March, 10, 9, 59), -8 * hour},
		{"1601 start, daylight onset", outlookPacific, unix(2024, time.March, 10, 10, 0), -7 * hour},
		{"1601 start, before standard", outlookPacific, unix(2024, time.November, 3, 8, 59), -7 * hour},
		{"1601 start, standard onset", outlookPacific, unix(2024, time.November, 3, 9, 0), -8 * hour},
		{"1970 start, 2263 summer", usPacific, unix(2263, time.July, 1, 0, 0), -7 * hour},
		{"1970 start, 3000 summer", usPacific, unix(3000, time.July, 1, 0, 0), -7 * hour},
		{"1970 start, 3000 winter", usPacific, unix(3000, time.January, 15, 0, 0), -8 * hour},
		{"1970 start, 9000 summer", usPacific, unix(9000, time.July, 1, 0, 0), -7 * hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, err := NewRuleZone("Custom/Pacific", tt.obs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, z.OffsetNanosecondsFor(tt.at))
		})
	}
}

func TestRuleZone_MonthlyFromDTSTARTDay(t *testing.T) {
	// A fires on the 31st of 31-day months, B on every 15th.
	z, err := NewRuleZone("Custom/Monthly", []Observance{
		{
			Name:       "A",
			Start:      unix(1700, time.January, 31, 0, 0),
			OffsetFrom: 0,
			OffsetTo:   3600,
			RRule:      "FREQ=MONTHLY",
		},
		{
			Name:       "B",
			Start:      unix(1700, time.January, 15, 0, 0),
			OffsetFrom: 3600,
			OffsetTo:   0,
			RRule:      "FREQ=MONTHLY;BYMONTHDAY=15",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), z.OffsetNanosecondsFor(unix(2024, time.May, 20, 0, 0)))
	assert.Equal(t, hour, z.OffsetNanosecondsFor(unix(2024, time.May, 31, 12, 0)))
	assert.Equal(t, int64(0), z.OffsetNanosecondsFor(unix(2024, time.April, 30, 12, 0)))
	assert.Equal(t, hour, z.OffsetNanosecondsFor(unix(2024, time.June, 10, 0, 0)))
}

func TestRuleZone_Count(t *testing.T) {
	z, err := NewRuleZone("Custom/Count", []Observance{
		{
			Name:       "DST",
			Daylight:   true,
			Start:      unix(2000, time.April, 1, 2, 0),
			OffsetFrom: 0,
			OffsetTo:   3600,
			RRule:      "FREQ=YEARLY;COUNT=3",
		},
		{
			Name:       "STD",
			Start:      unix(2000, time.October, 1, 3, 0),
			OffsetFrom: 3600,
			OffsetTo:   0,
			RRule:      "FREQ=YEARLY",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, hour, z.OffsetNanosecondsFor(unix(2002, time.July, 1, 0, 0)))
	assert.Equal(t, int64(0), z.OffsetNanosecondsFor(unix(2003, time.July, 1, 0, 0)))
	assert.Equal(t, int64(0), z.OffsetNanosecondsFor(unix(2400, time.July, 1, 0, 0)))
}

func TestExplicit(t *testing.T) {
	wed := time.Date(2024, time.May, 1, 2, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		opt  rrule.ROption
		want rrule.ROption
	}{
		{
			name: "yearly",
			opt:  rrule.ROption{Freq: rrule.YEARLY, Dtstart: wed},
			want: rrule.ROption{Freq: rrule.YEARLY, Dtstart: wed, Bymonth: []int{5}, Bymonthday: []int{1}},
		},
		{
			name: "yearly with month",
			opt:  rrule.ROption{Freq: rrule.YEARLY, Dtstart: wed, Bymonth: []int{3}},
			want: rrule.ROption{Freq: rrule.YEARLY, Dtstart: wed, Bymonth: []int{3}, Bymonthday: []int{1}},
		},
		{
			name: "monthly",
			opt:  rrule.ROption{Freq: rrule.MONTHLY, Dtstart: wed},
			want: rrule.ROption{Freq: rrule.MONTHLY, Dtstart: wed, Bymonthday: []int{1}},
		},
		{
			name: "weekly",
			opt:  rrule.ROption{Freq: rrule.WEEKLY, Dtstart: wed},
			want: rrule.ROption{Freq: rrule.WEEKLY, Dtstart: wed, Byweekday: []rrule.Weekday{rrule.WE}},
		},
		{
			name: "by weekday kept",
			opt:  rrule.ROption{Freq: rrule.YEARLY, Dtstart: wed, Bymonth: []int{3}, Byweekday: []rrule.Weekday{rrule.SU.Nth(2)}},
			want: rrule.ROption{Freq: rrule.YEARLY, Dtstart: wed, Bymonth: []int{3}, Byweekday: []rrule.Weekday{rrule.SU.Nth(2)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, explicit(tt.opt))
		})
	}
}

func TestRuleZone_PossibleOffsets(t *testing.T) {
	z, err := NewRuleZone("Custom/Pacific", usPacific)
	require.NoError(t, err)

	tests := []struct {
		name  string
		local int64
		want  []int64
	}{
		{"normal", unix(2022, time.July, 1, 12, 0), []int64{-7 * hour}},
		{"gap", unix(2022, time.March, 13, 2, 30), nil},
		{"overlap", unix(2022, time.November, 6, 1, 30), []int64{-7 * hour, -8 * hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, z.PossibleOffsets(tt.local)); diff != "" {
				t.Errorf("PossibleOffsets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleZone_OffsetSecondsAtLocal(t *testing.T) {
	z, err := NewRuleZone("Custom/Pacific", usPacific)
	require.NoError(t, err)

	assert.Equal(t, int64(-8*3600), z.OffsetSecondsAtLocal(unix(2022, time.March, 13, 1, 59)))
	assert.Equal(t, int64(-7*3600), z.OffsetSecondsAtLocal(unix(2022, time.March, 13, 2, 0)))
	assert.Equal(t, int64(-7*3600), z.OffsetSecondsAtLocal(unix(2022, time.November, 6, 1, 59)))
	assert.Equal(t, int64(-8*3600), z.OffsetSecondsAtLocal(unix(2022, time.November, 6, 2, 0)))
}

func TestRuleZone_UTCUntil(t *testing.T) {
	// Daylight time from October 1 until 1982. The last onset is
	// 1982-10-01T02:00 local, which is 1982-09-30T16:00 UTC.
	obs := []Observance{
		{
			Name:       "DST",
			Daylight:   true,
			Start:      unix(1980, time.October, 1, 2, 0),
			OffsetFrom: 10 * 3600,
			OffsetTo:   11 * 3600,
			RRule:      "FREQ=YEARLY;UNTIL=19820930T160000Z",
		},
		{
			Name:       "STD",
			Start:      unix(1981, time.March, 1, 3, 0),
			OffsetFrom: 11 * 3600,
			OffsetTo:   10 * 3600,
			RRule:      "FREQ=YEARLY",
		},
	}
	z, err := NewRuleZone("Custom/Until", obs)
	require.NoError(t, err)

	assert.Equal(t, 11*hour, z.OffsetNanosecondsFor(unix(1982, time.December, 1, 0, 0)))
	assert.Equal(t, 10*hour, z.OffsetNanosecondsFor(unix(1983, time.December, 1, 0, 0)))
}

func TestRuleZone_RDates(t *testing.T) {
	obs := []Observance{
		{
			Name:       "B",
			Start:      unix(2000, time.January, 1, 0, 0),
			OffsetFrom: 0,
			OffsetTo:   3600,
			RDates:     []int64{unix(2010, time.January, 1, 0, 0)},
		},
		{
			Name:       "A",
			Start:      unix(2005, time.January, 1, 0, 0),
			OffsetFrom: 3600,
			OffsetTo:   0,
		},
	}
	z, err := NewRuleZone("Custom/RDates", obs)
	require.NoError(t, err)

	assert.Equal(t, int64(0), z.OffsetNanosecondsFor(unix(1999, time.January, 1, 0, 0)))
	assert.Equal(t, hour, z.OffsetNanosecondsFor(unix(2001, time.January, 1, 0, 0)))
	assert.Equal(t, int64(0), z.OffsetNanosecondsFor(unix(2006, time.January, 1, 0, 0)))
	assert.Equal(t, hour, z.OffsetNanosecondsFor(unix(2011, time.January, 1, 0, 0)))

	got := z.Observances()
	if diff := cmp.Diff(obs, got); diff != "" {
		t.Errorf("Observances() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRuleZone_Errors(t *testing.T) {
	_, err := NewRuleZone("Empty", nil)
	assert.ErrorIs(t, err, errs.ErrRange)

	_, err = NewRuleZone("Bad", []Observance{{Name: "X", RRule: "FREQ=SOMETIMES"}})
	assert.ErrorIs(t, err, errs.ErrRange)
}
