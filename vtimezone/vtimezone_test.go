package vtimezone

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrash/go-temporal/errs"
	"github.com/ngrash/go-temporal/timezone"
)

func calendar(lines ...string) string {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//go-temporal//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

var newYork = []string{
	"BEGIN:VTIMEZONE",
	"TZID:America/New_York",
	"BEGIN:DAYLIGHT",
	"TZOFFSETFROM:-0500",
	"TZOFFSETTO:-0400",
	"TZNAME:EDT",
	"DTSTART:20070311T020000",
	"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=2SU",
	"END:DAYLIGHT",
	"BEGIN:STANDARD",
	"TZOFFSETFROM:-0400",
	"TZOFFSETTO:-0500",
	"TZNAME:EST",
	"DTSTART:20071104T020000",
	"RRULE:FREQ=YEARLY;BYMONTH=11;BYDAY=1SU",
	"END:STANDARD",
	"END:VTIMEZONE",
}

var fixedMST = []string{
	"BEGIN:VTIMEZONE",
	"TZID:Custom/MST",
	"BEGIN:STANDARD",
	"DTSTART:19700101T000000",
	"TZOFFSETFROM:-0700",
	"TZOFFSETTO:-0700",
	"TZNAME:MST",
	"END:STANDARD",
	"END:VTIMEZONE",
}

func local(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).Unix()
}

func TestParse(t *testing.T) {
	lines := append(append([]string{}, newYork...), fixedMST...)
	zones, err := Parse(strings.NewReader(calendar(lines...)))
	require.NoError(t, err)
	require.Len(t, zones, 2)

	ny, mst := zones[0], zones[1]
	assert.Equal(t, "America/New_York", ny.ID())
	assert.Equal(t, timezone.KindRule, ny.Kind())

	want := []timezone.Observance{
		{
			Name:       "EDT",
			Daylight:   true,
			Start:      local(2007, time.March, 11, 2),
			OffsetFrom: -5 * 3600,
			OffsetTo:   -4 * 3600,
			RRule:      "FREQ=YEARLY;BYMONTH=3;BYDAY=2SU",
		},
		{
			Name:       "EST",
			Start:      local(2007, time.November, 4, 2),
			OffsetFrom: -4 * 3600,
			OffsetTo:   -5 * 3600,
			RRule:      "FREQ=YEARLY;BYMONTH=11;BYDAY=1SU",
		},
	}
	if diff := cmp.Diff(want, ny.Observances()); diff != "" {
		t.Errorf("Observances() mismatch (-want +got):\n%s", diff)
	}

	const h = int64(time.Hour)
	assert.Equal(t, -4*h, ny.OffsetNanosecondsFor(local(2023, time.July, 4, 12)))
	assert.Equal(t, -5*h, ny.OffsetNanosecondsFor(local(2023, time.January, 15, 12)))
	assert.Equal(t, -7*h, mst.OffsetNanosecondsFor(local(2023, time.July, 4, 12)))
	assert.Equal(t, []int64{-7 * h}, mst.PossibleOffsets(local(2023, time.March, 12, 2)))
}

func TestParse_OutlookDTSTART(t *testing.T) {
	lines := []string{
		"BEGIN:VTIMEZONE",
		"TZID:Pacific Standard Time",
		"BEGIN:STANDARD",
		"DTSTART:16011104T020000",
		"RRULE:FREQ=YEARLY;BYDAY=1SU;BYMONTH=11",
		"TZOFFSETFROM:-0700",
		"TZOFFSETTO:-0800",
		"END:STANDARD",
		"BEGIN:DAYLIGHT",
		"DTSTART:16010311T020000",
		"RRULE:FREQ=YEARLY;BYDAY=2SU;BYMONTH=3",
		"TZOFFSETFROM:-0800",
		"TZOFFSETTO:-0700",
		"END:DAYLIGHT",
		"END:VTIMEZONE",
	}
	zones, err := Parse(strings.NewReader(calendar(lines...)))
	require.NoError(t, err)
	require.Len(t, zones, 1)
	z := zones[0]

	const h = int64(time.Hour)
	assert.Equal(t, -7*h, z.OffsetNanosecondsFor(local(2024, time.July, 1, 12)))
	assert.Equal(t, -8*h, z.OffsetNanosecondsFor(local(2024, time.January, 15, 12)))
	assert.Equal(t, -8*h, z.OffsetNanosecondsFor(local(2024, time.December, 24, 12)))
	assert.Equal(t, []int64{-7 * h, -8 * h}, z.PossibleOffsets(local(2024, time.November, 3, 1)))
	assert.Empty(t, z.PossibleOffsets(local(2024, time.March, 10, 2)))
}

func TestFromComponent_RDates(t *testing.T) {
	lines := []string{
		"BEGIN:VTIMEZONE",
		"TZID:Custom/RDates",
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0100",
		"END:STANDARD",
		"BEGIN:DAYLIGHT",
		"DTSTART:20200301T020000",
		"RDATE:20210301T020000,20220301T020000",
		"RDATE;VALUE=PERIOD:20230301T020000/PT1H",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0200",
		"END:DAYLIGHT",
		"END:VTIMEZONE",
	}
	zones, err := Parse(strings.NewReader(calendar(lines...)))
	require.NoError(t, err)
	require.Len(t, zones, 1)

	obs := zones[0].Observances()
	require.Len(t, obs, 2)
	assert.Equal(t, []int64{
		local(2021, time.March, 1, 2),
		local(2022, time.March, 1, 2),
		local(2023, time.March, 1, 2),
	}, obs[1].RDates)
	assert.True(t, obs[1].Daylight)
	assert.Equal(t, "", obs[1].Name)
}

func TestFromComponent_Constructed(t *testing.T) {
	vtz := ics.NewTimezone("Custom/Built")
	std := vtz.AddStandard()
	std.SetProperty(ics.ComponentPropertyDtStart, "19700101T000000")
	std.SetProperty(propertyTzoffsetfrom, "+0530")
	std.SetProperty(propertyTzoffsetto, "+0530")
	vtz.Components = append(vtz.Components, &ics.GeneralComponent{
		Token: "DAYLIGHT",
		ComponentBase: ics.ComponentBase{
			Properties: []ics.IANAProperty{
				{BaseProperty: ics.BaseProperty{IANAToken: string(ics.ComponentPropertyDtStart), Value: "20300101T000000"}},
				{BaseProperty: ics.BaseProperty{IANAToken: string(propertyTzoffsetfrom), Value: "+0530"}},
				{BaseProperty: ics.BaseProperty{IANAToken: string(propertyTzoffsetto), Value: "+063000"}},
			},
		},
	})

	z, err := FromComponent(vtz)
	require.NoError(t, err)
	assert.Equal(t, "Custom/Built", z.ID())
	assert.Equal(t, int64(5*3600+1800)*int64(time.Second), z.OffsetNanosecondsFor(local(2020, time.January, 1, 0)))
	assert.Equal(t, int64(6*3600+1800)*int64(time.Second), z.OffsetNanosecondsFor(local(2031, time.January, 1, 0)))
}

func TestFromComponent_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		code  error
	}{
		{
			name:  "missing TZID",
			lines: []string{"BEGIN:VTIMEZONE", "BEGIN:STANDARD", "DTSTART:19700101T000000", "TZOFFSETFROM:+0100", "TZOFFSETTO:+0100", "END:STANDARD", "END:VTIMEZONE"},
			code:  errs.ErrType,
		},
		{
			name:  "no observances",
			lines: []string{"BEGIN:VTIMEZONE", "TZID:X", "END:VTIMEZONE"},
			code:  errs.ErrType,
		},
		{
			name:  "missing DTSTART",
			lines: []string{"BEGIN:VTIMEZONE", "TZID:X", "BEGIN:STANDARD", "TZOFFSETFROM:+0100", "TZOFFSETTO:+0100", "END:STANDARD", "END:VTIMEZONE"},
			code:  errs.ErrType,
		},
		{
			name:  "missing TZOFFSETTO",
			lines: []string{"BEGIN:VTIMEZONE", "TZID:X", "BEGIN:STANDARD", "DTSTART:19700101T000000", "TZOFFSETFROM:+0100", "END:STANDARD", "END:VTIMEZONE"},
			code:  errs.ErrType,
		},
		{
			name:  "UTC DTSTART",
			lines: []string{"BEGIN:VTIMEZONE", "TZID:X", "BEGIN:STANDARD", "DTSTART:19700101T000000Z", "TZOFFSETFROM:+0100", "TZOFFSETTO:+0100", "END:STANDARD", "END:VTIMEZONE"},
			code:  errs.ErrRange,
		},
		{
			name:  "bad offset",
			lines: []string{"BEGIN:VTIMEZONE", "TZID:X", "BEGIN:STANDARD", "DTSTART:19700101T000000", "TZOFFSETFROM:0100", "TZOFFSETTO:+0100", "END:STANDARD", "END:VTIMEZONE"},
			code:  errs.ErrRange,
		},
		{
			name:  "bad RRULE",
			lines: []string{"BEGIN:VTIMEZONE", "TZID:X", "BEGIN:STANDARD", "DTSTART:19700101T000000", "TZOFFSETFROM:+0100", "TZOFFSETTO:+0100", "RRULE:FREQ=NEVER", "END:STANDARD", "END:VTIMEZONE"},
			code:  errs.ErrRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(calendar(tt.lines...)))
			assert.ErrorIs(t, err, tt.code)
		})
	}
}

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"+0000", 0, false},
		{"-0500", -18000, false},
		{"+0530", 19800, false},
		{"+013045", 5445, false},
		{"-0000", 0, true},
		{"+2400", 0, true},
		{"+0560", 0, true},
		{"0500", 0, true},
		{"+05:00", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseUTCOffset(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, errs.ErrRange, "ParseUTCOffset(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseUTCOffset(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseUTCOffset(%q)", tt.in)
	}
}
