// Package config loads runtime configuration from environment variables.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/tillview/tillview/internal/dates"
)

// Config holds runtime configuration for the reporting tool. Flags on the
// command line override these values.
type Config struct {
	DBPath string `envconfig:"TILLVIEW_DB" default:"./Restaurant.sql"`

	// Timezone the venue operates in; times in the database are stored in
	// UTC seconds and reported in this zone.
	Timezone string `envconfig:"TILLVIEW_TZ" default:""`

	// DayBoundary is the wall-clock time at which one business day rolls
	// over into the next. Venues that close after midnight set this late
	// enough that a night's sales land on the day service started.
	DayBoundary string `envconfig:"TILLVIEW_DAY_BOUNDARY" default:"02:00:00"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := dates.ParseDayBoundary(cfg.DayBoundary); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured timezone; an empty setting means the
// system local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Boundary returns the parsed day-boundary offset.
func (c *Config) Boundary() (time.Duration, error) {
	return dates.ParseDayBoundary(c.DayBoundary)
}
