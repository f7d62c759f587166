package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	temporal "github.com/ngrash/go-temporal"
	"github.com/ngrash/go-temporal/timezone"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvZoneinfo, EnvCalendar, EnvDisambiguation, EnvLogLevel} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		yaml string
		want Config
	}{
		{
			name: "empty file",
			yaml: "",
			want: Config{Zoneinfo: timezone.DefaultZoneinfo, Calendar: "iso8601", Disambiguation: "compatible", LogLevel: "info"},
		},
		{
			name: "all fields",
			yaml: "zoneinfo: /opt/zoneinfo\ncalendar: Japanese\ndisambiguation: later\nlog_level: DEBUG\npreload:\n  - Europe/Berlin\n  - UTC\n",
			want: Config{
				Zoneinfo:       "/opt/zoneinfo",
				Calendar:       "japanese",
				Disambiguation: "later",
				LogLevel:       "debug",
				Preload:        []string{"Europe/Berlin", "UTC"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, "temporal.yaml", tt.yaml))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, *got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "bad.yaml", "calendar: [\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "calendar: hebrew\ndisambiguation: sometimes\nlog_level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hebrew")
	assert.Contains(t, err.Error(), "sometimes")
	assert.Contains(t, err.Error(), "loud")
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCalendar, "roc")
	t.Setenv(EnvDisambiguation, "reject")

	got, err := Load(writeFile(t, "temporal.yaml", "calendar: gregory\nlog_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "roc", got.Calendar)
	assert.Equal(t, "reject", got.Disambiguation)
	assert.Equal(t, "warn", got.LogLevel)

	cal, err := got.CalendarValue()
	require.NoError(t, err)
	assert.Equal(t, "roc", cal.ID())

	d, err := got.DisambiguationValue()
	require.NoError(t, err)
	assert.Equal(t, temporal.DisambiguationReject, d)

	level, err := got.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(EnvCalendar))
	t.Cleanup(func() { os.Unsetenv(EnvCalendar) })

	env := writeFile(t, ".env", EnvCalendar+"=buddhist\n")
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), env))

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "buddhist", got.Calendar)
}
