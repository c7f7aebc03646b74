// Package config loads the process configuration once at start up from an optional .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/aouyang1/revenue-forecaster"
	"github.com/aouyang1/revenue-forecaster/event"
	"github.com/aouyang1/revenue-forecaster/schema"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name except the API key
const Prefix = "REVFORECAST"

// MissingAPIKeyWarning is shown when no API key is configured
const MissingAPIKeyWarning = "API key is missing! Set GROQ_API_KEY in the environment or a .env file if integrating external APIs."

// Config is the immutable process configuration
type Config struct {
	ListenAddr      string        `envconfig:"LISTEN_ADDR" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`
	MaxRows        int   `envconfig:"MAX_ROWS" default:"1000000" validate:"gt=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	DateLocation   string  `envconfig:"DATE_LOCATION" default:"UTC" validate:"required"`
	DayFirst       bool    `envconfig:"DAY_FIRST" default:"false"`
	HolidayCountry string  `envconfig:"HOLIDAY_COUNTRY"`
	IntervalWidth  float64 `envconfig:"INTERVAL_WIDTH" default:"0.8" validate:"gt=0,lt=1"`

	// APIKey is read from GROQ_API_KEY when the prefixed variable is unset. Nothing in the
	// forecast path reads it.
	APIKey string `envconfig:"GROQ_API_KEY"`

	location *time.Location
}

// Load reads the given .env files, or .env in the working directory when none are given,
// then processes the environment and validates the result. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load env file, %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("unable to process environment, %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration, %w", err)
	}

	loc, err := time.LoadLocation(c.DateLocation)
	if err != nil {
		return fmt.Errorf("invalid date location %q, %w", c.DateLocation, err)
	}
	c.location = loc

	if c.HolidayCountry != "" {
		if _, err := event.CountryHolidays(c.HolidayCountry); err != nil {
			return fmt.Errorf("invalid holiday country, %w", err)
		}
	}
	return nil
}

// Location returns the location dates without a zone are read in
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Warnings returns non fatal configuration problems to surface to the user
func (c *Config) Warnings() []string {
	var warnings []string
	if strings.TrimSpace(c.APIKey) == "" {
		warnings = append(warnings, MissingAPIKeyWarning)
	}
	return warnings
}

// ForecasterOptions returns the default forecaster options with the configured holiday
// calendar and interval width
func (c *Config) ForecasterOptions() *forecaster.Options {
	opt := forecaster.NewDefaultOptions()
	opt.IntervalWidth = c.IntervalWidth
	opt.SeriesOptions.HolidayOptions.Country = c.HolidayCountry
	return opt
}

// SchemaOptions returns how uploaded dates are to be interpreted
func (c *Config) SchemaOptions() []schema.Option {
	return []schema.Option{
		schema.WithLocation(c.Location()),
		schema.WithDayFirst(c.DayFirst),
	}
}

// NewLogger builds a structured logger writing to w in the configured format and level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
