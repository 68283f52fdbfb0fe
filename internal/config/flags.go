package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Parse reads the environment, applies command-line overrides and validates
// the result.
// pflag.ErrHelp is returned unchanged when -h/--help is given.
func Parse(name string, args []string) (Config, *pflag.FlagSet, error) {
	cfg, err := fromEnvironment()
	if err != nil {
		return Config{}, nil, err
	}

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	Bind(flagSet, &cfg)
	if err := flagSet.Parse(args); err != nil {
		return Config{}, flagSet, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		return Config{}, flagSet, pflag.ErrHelp
	}
	if len(flagSet.Args()) > 0 {
		return Config{}, flagSet, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, flagSet, err
	}
	return cfg, flagSet, nil
}

// Bind registers the overridable flags on flagSet, using the current values
// of cfg as defaults.
func Bind(flagSet *pflag.FlagSet, cfg *Config) {
	flagSet.IntVar(&cfg.ListenPort, "listen-port", cfg.ListenPort, "UDP port to receive ZoomOSC events on")
	flagSet.StringVar(&cfg.ZoomOSCHost, "zoomosc-host", cfg.ZoomOSCHost, "host running ZoomOSC")
	flagSet.IntVar(&cfg.ZoomOSCPort, "zoomosc-port", cfg.ZoomOSCPort, "ZoomOSC command port")
	flagSet.StringVar(&cfg.SchedulePath, "schedule", cfg.SchedulePath, "schedule file (.yaml, .yml, .json or .jsonc)")
	flagSet.StringVar(&cfg.Mode, "mode", cfg.Mode, "auto, primary or secondary")
	flagSet.StringVar(&cfg.PrimaryName, "primary-name", cfg.PrimaryName, "display name of the primary instance")
	flagSet.StringVar(&cfg.SelfName, "name", cfg.SelfName, "display name used to join meetings")
	flagSet.StringVar(&cfg.JournalDSN, "journal", cfg.JournalDSN, "sqlite DSN for the audit journal (empty disables it)")
	flagSet.StringVar(&cfg.StatusAddr, "status-addr", cfg.StatusAddr, "address for the read-only status endpoint (empty disables it)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "json or text")
	flagSet.BoolVar(&cfg.HashCodeword, "hash-codeword", cfg.HashCodeword, "read a codeword from stdin, print its argon2id hash for the schedule file and exit")
	flagSet.BoolP("help", "h", false, "show help")
}
