package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

var allKeys = []string{
	"LISTEN_PORT", "ZOOMOSC_HOST", "ZOOMOSC_PORT", "CONDUCTOR_SCHEDULE", "CONDUCTOR_MODE",
	"CONDUCTOR_PRIMARY_NAME", "CONDUCTOR_NAME", "CONDUCTOR_TICK", "CONDUCTOR_DISCOVERY_RETRY",
	"CONDUCTOR_WARN_WINDOW", "CONDUCTOR_STALE_CYCLES", "CONDUCTOR_TIMEZONE",
	"CONDUCTOR_JOURNAL_DSN", "CONDUCTOR_STATUS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		// register restoration first, then remove
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.ListenPort != 1234 || cfg.ZoomOSCHost != "localhost" || cfg.ZoomOSCPort != 9090 {
			t.Fatalf("unexpected transport defaults: %+v", cfg)
		}
		if cfg.Mode != "auto" || cfg.TickInterval != 30*time.Second || cfg.WarnWindow != 5*time.Minute {
			t.Fatalf("unexpected conductor defaults: %+v", cfg)
		}
		if cfg.JournalDSN != "" || cfg.StatusAddr != "" {
			t.Fatal("journal and status endpoint must be disabled by default")
		}
		if loc, err := cfg.Location(); err != nil || loc != time.Local {
			t.Fatalf("expected local zone, got %v %v", loc, err)
		}
	})

	t.Run("reads every key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LISTEN_PORT", "4000")
		t.Setenv("ZOOMOSC_HOST", "10.0.0.5")
		t.Setenv("CONDUCTOR_MODE", "secondary")
		t.Setenv("CONDUCTOR_PRIMARY_NAME", "Conductor")
		t.Setenv("CONDUCTOR_TICK", "5s")
		t.Setenv("CONDUCTOR_STALE_CYCLES", "3")
		t.Setenv("CONDUCTOR_TIMEZONE", "UTC")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.ListenPort != 4000 || cfg.ZoomOSCHost != "10.0.0.5" || cfg.TickInterval != 5*time.Second || cfg.StaleCycles != 3 {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if loc, _ := cfg.Location(); loc.String() != "UTC" {
			t.Fatalf("expected UTC, got %s", loc)
		}
	})

	t.Run("reports invalid values together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LISTEN_PORT", "abc")
		t.Setenv("CONDUCTOR_TICK", "-1s")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"LISTEN_PORT", "CONDUCTOR_TICK"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %q", key, err.Error())
			}
		}
	})

	t.Run("secondary mode requires the primary name", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDUCTOR_MODE", "secondary")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "primary name") {
			t.Fatalf("expected missing primary name, got %v", err)
		}
	})

	t.Run("rejects unknown mode and timezone", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDUCTOR_MODE", "leader")
		t.Setenv("CONDUCTOR_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "leader") || !strings.Contains(err.Error(), "Mars/Olympus") {
			t.Fatalf("expected invalid mode and timezone, got %v", err)
		}
	})
}

func TestParse_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZOOMOSC_PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, _, err := Parse("conductor", []string{"--zoomosc-port", "9100", "--mode=primary", "--status-addr", ":8080"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.ZoomOSCPort != 9100 || cfg.Mode != "primary" || cfg.StatusAddr != ":8080" {
		t.Fatalf("flags must override: %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("unset flags must keep the environment value, got %q", cfg.LogLevel)
	}

	if _, _, err := Parse("conductor", []string{"--help"}); !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
	if _, _, err := Parse("conductor", []string{"--mode", "secondary"}); err == nil {
		t.Fatal("flag values must be validated")
	}
}

func TestParse_FlagCompletesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUCTOR_MODE", "secondary")

	cfg, _, err := Parse("conductor", []string{"--primary-name", "Conductor"})
	if err != nil {
		t.Fatalf("flag must satisfy the secondary requirement: %v", err)
	}
	if cfg.PrimaryName != "Conductor" {
		t.Fatalf("unexpected primary name %q", cfg.PrimaryName)
	}
	if _, _, err := Parse("conductor", []string{"stray"}); err == nil {
		t.Fatal("positional arguments must be rejected")
	}
}
