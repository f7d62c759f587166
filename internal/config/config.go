package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	temporal "github.com/ngrash/go-temporal"
	"github.com/ngrash/go-temporal/calendar"
	"github.com/ngrash/go-temporal/timezone"
)

// Environment variables that override the YAML file.
const (
	EnvZoneinfo       = "TEMPORAL_ZONEINFO"
	EnvCalendar       = "TEMPORAL_CALENDAR"
	EnvDisambiguation = "TEMPORAL_DISAMBIGUATION"
	EnvLogLevel       = "TEMPORAL_LOG_LEVEL"
)

// Config is the configuration of the command line tools.
type Config struct {
	// Zoneinfo is the directory TZif files are read from.
	Zoneinfo string `yaml:"zoneinfo"`

	// Calendar is the calendar identifier dates are shown in, for example
	// "iso8601" or "japanese".
	Calendar string `yaml:"calendar"`

	// Disambiguation resolves skipped and repeated wall-clock times: one of
	// "compatible", "earlier", "later" or "reject".
	Disambiguation string `yaml:"disambiguation"`

	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level"`

	// Preload lists zone identifiers loaded at startup.
	Preload []string `yaml:"preload"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in empty values with defaults and lower-cases the
// enumerated ones.
func (c *Config) Normalize() {
	if c.Zoneinfo == "" {
		c.Zoneinfo = timezone.DefaultZoneinfo
	}
	c.Calendar = strings.ToLower(strings.TrimSpace(c.Calendar))
	if c.Calendar == "" {
		c.Calendar = calendar.ISO.ID()
	}
	c.Disambiguation = strings.ToLower(strings.TrimSpace(c.Disambiguation))
	if c.Disambiguation == "" {
		c.Disambiguation = temporal.DisambiguationCompatible.String()
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads the YAML file at path, applies the environment and normalizes
// the result. An empty path or a missing file yields the defaults with the
// environment applied.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	c.ApplyEnv()
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields with the TEMPORAL_* environment variables that
// are set.
func (c *Config) ApplyEnv() {
	for name, field := range map[string]*string{
		EnvZoneinfo:       &c.Zoneinfo,
		EnvCalendar:       &c.Calendar,
		EnvDisambiguation: &c.Disambiguation,
		EnvLogLevel:       &c.LogLevel,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}
}

// Validate checks the enumerated fields of a normalized configuration.
func (c *Config) Validate() error {
	var errList []error
	if _, err := c.CalendarValue(); err != nil {
		errList = append(errList, err)
	}
	if _, err := c.DisambiguationValue(); err != nil {
		errList = append(errList, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

// CalendarValue returns the configured calendar.
func (c *Config) CalendarValue() (calendar.Calendar, error) {
	return calendar.Lookup(c.Calendar)
}

// DisambiguationValue returns the configured disambiguation.
func (c *Config) DisambiguationValue() (temporal.Disambiguation, error) {
	for _, d := range []temporal.Disambiguation{
		temporal.DisambiguationCompatible,
		temporal.DisambiguationEarlier,
		temporal.DisambiguationLater,
		temporal.DisambiguationReject,
	} {
		if d.String() == c.Disambiguation {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown disambiguation %q", c.Disambiguation)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Registry returns a zone registry reading from the configured zoneinfo
// directory. opts are applied after it.
func (c *Config) Registry(opts ...timezone.Option) *timezone.Registry {
	base := []timezone.Option{
		timezone.WithFS(os.DirFS(c.Zoneinfo)),
		timezone.WithLogger(c.Logger()),
	}
	return timezone.NewRegistry(append(base, opts...)...)
}
