package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the process configuration of the conductor.
type Config struct {
	ListenPort        int
	ZoomOSCHost       string
	ZoomOSCPort       int
	SchedulePath      string
	Mode              string
	PrimaryName       string
	SelfName          string
	TickInterval      time.Duration
	DiscoveryInterval time.Duration
	WarnWindow        time.Duration
	StaleCycles       int
	Timezone          string
	JournalDSN        string
	StatusAddr        string
	LogLevel          string
	LogFormat         string

	// HashCodeword turns the run into a one-shot codeword hashing tool.
	HashCodeword bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ListenPort:        1234,
		ZoomOSCHost:       "localhost",
		ZoomOSCPort:       9090,
		Mode:              "auto",
		TickInterval:      30 * time.Second,
		DiscoveryInterval: 10 * time.Second,
		WarnWindow:        5 * time.Minute,
		StaleCycles:       1,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load parses configuration values from the current process environment.
//
// Defaults apply to every unset key. Invalid values are collected and
// reported together.
func Load() (Config, error) {
	cfg, err := fromEnvironment()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnvironment() (Config, error) {
	cfg := Default()
	invalid := make([]string, 0, 2)

	intVar := func(key string, dst *int, min int) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < min {
			invalid = append(invalid, key)
			return
		}
		*dst = n
	}
	durationVar := func(key string, dst *time.Duration) {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			return
		}
		*dst = d
	}
	stringVar := func(key string, dst *string) {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*dst = value
		}
	}

	intVar("LISTEN_PORT", &cfg.ListenPort, 1)
	stringVar("ZOOMOSC_HOST", &cfg.ZoomOSCHost)
	intVar("ZOOMOSC_PORT", &cfg.ZoomOSCPort, 1)
	stringVar("CONDUCTOR_SCHEDULE", &cfg.SchedulePath)
	stringVar("CONDUCTOR_MODE", &cfg.Mode)
	stringVar("CONDUCTOR_PRIMARY_NAME", &cfg.PrimaryName)
	stringVar("CONDUCTOR_NAME", &cfg.SelfName)
	durationVar("CONDUCTOR_TICK", &cfg.TickInterval)
	durationVar("CONDUCTOR_DISCOVERY_RETRY", &cfg.DiscoveryInterval)
	durationVar("CONDUCTOR_WARN_WINDOW", &cfg.WarnWindow)
	intVar("CONDUCTOR_STALE_CYCLES", &cfg.StaleCycles, 1)
	stringVar("CONDUCTOR_TIMEZONE", &cfg.Timezone)
	stringVar("CONDUCTOR_JOURNAL_DSN", &cfg.JournalDSN)
	stringVar("CONDUCTOR_STATUS_ADDR", &cfg.StatusAddr)
	stringVar("LOG_LEVEL", &cfg.LogLevel)
	stringVar("LOG_FORMAT", &cfg.LogFormat)

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Validate checks cross-field constraints that hold however the values were
// supplied.
func (c Config) Validate() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	switch strings.ToLower(c.Mode) {
	case "auto", "primary":
	case "secondary":
		if strings.TrimSpace(c.PrimaryName) == "" {
			missing = append(missing, "primary name (required in secondary mode)")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("mode %q", c.Mode))
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		invalid = append(invalid, fmt.Sprintf("listen port %d", c.ListenPort))
	}
	if c.ZoomOSCPort <= 0 || c.ZoomOSCPort > 65535 {
		invalid = append(invalid, fmt.Sprintf("zoomosc port %d", c.ZoomOSCPort))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			invalid = append(invalid, fmt.Sprintf("timezone %q", c.Timezone))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Location resolves Timezone; empty means the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
