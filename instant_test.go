package temporal

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrash/go-temporal/errs"
)

func TestInstantFromEpoch(t *testing.T) {
	i, err := InstantFromEpochNanoseconds(big.NewInt(-1))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), i.EpochSeconds())
	assert.Equal(t, int64(-1), i.EpochMilliseconds())
	assert.Equal(t, int64(-1), i.EpochMicroseconds())
	assert.Equal(t, "-1", i.EpochNanoseconds().String())

	ms, err := InstantFromEpochMilliseconds(-1500)
	require.NoError(t, err)
	assert.Equal(t, "-1500000000", ms.EpochNanoseconds().String())

	us, err := InstantFromEpochMicroseconds(1_500_001)
	require.NoError(t, err)
	assert.Equal(t, "1500001000", us.EpochNanoseconds().String())
	assert.Equal(t, int64(1), us.EpochSeconds())
}

func TestInstantFromEpoch_Range(t *testing.T) {
	_, err := InstantFromEpochSeconds(maxInstantSeconds)
	require.NoError(t, err)
	_, err = InstantFromEpochSeconds(-maxInstantSeconds)
	require.NoError(t, err)

	_, err = InstantFromEpochSeconds(maxInstantSeconds + 1)
	assert.True(t, errors.Is(err, errs.ErrRange), "got %v", err)

	beyond := new(big.Int).Add(maxInstantNs, big.NewInt(1))
	_, err = InstantFromEpochNanoseconds(beyond)
	assert.True(t, errors.Is(err, errs.ErrRange), "got %v", err)

	last, err := InstantFromEpochNanoseconds(maxInstantNs)
	require.NoError(t, err)
	_, err = last.Add(mustDuration(t, DurationFields{Nanoseconds: 1}))
	assert.True(t, errors.Is(err, errs.ErrRange), "got %v", err)
}

func TestInstant_Add(t *testing.T) {
	i, err := InstantFromEpochSeconds(0)
	require.NoError(t, err)

	got, err := i.Add(mustDuration(t, DurationFields{Hours: 1, Milliseconds: 500}))
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T01:00:00.5Z", got.String())

	got, err = got.Subtract(mustDuration(t, DurationFields{Hours: 2}))
	require.NoError(t, err)
	assert.Equal(t, "1969-12-31T23:00:00.5Z", got.String())

	for _, d := range []DurationFields{{Days: 1}, {Weeks: 1}, {Months: 1}, {Years: 1}} {
		_, err := i.Add(mustDuration(t, d))
		assert.True(t, errors.Is(err, errs.ErrType), "Add(%+v) = %v, want type error", d, err)
	}
}

func TestInstant_Until(t *testing.T) {
	a, err := InstantFromEpochSeconds(0)
	require.NoError(t, err)
	b, err := InstantFromEpochSeconds(5400)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts DifferenceOptions
		want string
	}{
		{"default largest second", DifferenceOptions{}, "PT5400S"},
		{"largest hour", DifferenceOptions{LargestUnit: Hour}, "PT1H30M"},
		{"smallest hour trunc", DifferenceOptions{LargestUnit: Hour, SmallestUnit: Hour}, "PT1H"},
		{"smallest hour half expand", DifferenceOptions{SmallestUnit: Hour, RoundingMode: RoundHalfExpand}, "PT2H"},
		{"increment", DifferenceOptions{LargestUnit: Minute, SmallestUnit: Minute, RoundingIncrement: 20}, "PT80M"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Until(b, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())

			back, err := b.Since(a, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, back.String())
		})
	}

	neg, err := b.Until(a, DifferenceOptions{LargestUnit: Hour})
	require.NoError(t, err)
	assert.Equal(t, "-PT1H30M", neg.String())
}

func TestInstant_Until_Errors(t *testing.T) {
	a, err := InstantFromEpochSeconds(0)
	require.NoError(t, err)

	for _, opts := range []DifferenceOptions{
		{LargestUnit: Day},
		{SmallestUnit: Month},
		{LargestUnit: Minute, SmallestUnit: Hour},
		{SmallestUnit: Minute, RoundingIncrement: 60},
		{SmallestUnit: Minute, RoundingIncrement: 7},
	} {
		_, err := a.Until(a, opts)
		assert.True(t, errors.Is(err, errs.ErrRange), "Until(%+v) = %v, want range error", opts, err)
	}
}

func TestInstant_Round(t *testing.T) {
	tests := []struct {
		name string
		sec  int64
		opts RoundOptions
		want int64
	}{
		{"half expand up", 5400, RoundOptions{SmallestUnit: Hour}, 7200},
		{"floor", 5400, RoundOptions{SmallestUnit: Hour, RoundingMode: RoundFloor}, 3600},
		{"negative ties toward positive infinity", -5400, RoundOptions{SmallestUnit: Hour}, -3600},
		{"negative trunc acts as floor", -5400, RoundOptions{SmallestUnit: Hour, RoundingMode: RoundTrunc}, -7200},
		{"whole day increment", 13 * 3600, RoundOptions{SmallestUnit: Hour, RoundingIncrement: 24}, 86400},
		{"minutes", 100, RoundOptions{SmallestUnit: Minute, RoundingIncrement: 15}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, err := InstantFromEpochSeconds(tt.sec)
			require.NoError(t, err)
			got, err := i.Round(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.EpochSeconds())
		})
	}

	i, err := InstantFromEpochSeconds(0)
	require.NoError(t, err)
	for _, opts := range []RoundOptions{
		{},
		{SmallestUnit: Day},
		{SmallestUnit: Hour, RoundingIncrement: 7},
		{SmallestUnit: Hour, RoundingIncrement: 48},
	} {
		_, err := i.Round(opts)
		assert.True(t, errors.Is(err, errs.ErrRange), "Round(%+v) = %v, want range error", opts, err)
	}
}

func TestInstant_CompareAndString(t *testing.T) {
	a, err := InstantFromEpochMilliseconds(1347384600000)
	require.NoError(t, err)
	b, err := InstantFromEpochSeconds(1347384600)
	require.NoError(t, err)

	assert.Equal(t, 0, CompareInstants(a, b))
	assert.True(t, a.Equal(b))
	assert.Equal(t, "2012-09-11T17:30:00Z", a.String())
	assert.Equal(t, a.String(), a.ToLocaleString())

	later, err := a.Add(mustDuration(t, DurationFields{Nanoseconds: 1}))
	require.NoError(t, err)
	assert.Equal(t, -1, CompareInstants(a, later))
	assert.Equal(t, 1, CompareInstants(later, a))

	js, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2012-09-11T17:30:00Z"`, string(js))
}
