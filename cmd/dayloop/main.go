// dayloop is a terminal daily-habit tracker with a guided workout timer.
//
// Without a subcommand it runs the interactive TUI. Subcommands:
//
//	history [--limit N]   print archived days
//	workout <preset-id>   run a workout headless, printing phase changes
//	presets               list built-in and custom presets
//	rollover              archive the daily record if the day has changed
//	config [--write]      print (or write) the effective configuration
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sandeepkv93/dayloop/internal/config"
)

type globalFlags struct {
	configPath string
	dbPath     string
	logFile    string
	logLevel   string
	timezone   string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dayloop: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags globalFlags
	flagSet := pflag.NewFlagSet("dayloop", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&flags.configPath, "config", "", "path to config.yaml (default: "+config.DefaultPath()+")")
	flagSet.StringVar(&flags.dbPath, "db", "", "SQLite database path")
	flagSet.StringVar(&flags.logFile, "log-file", "", "log file used while the TUI runs")
	flagSet.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&flags.timezone, "timezone", "", "IANA timezone for day boundaries (default: local)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := flagSet.Args()
	if len(rest) == 0 {
		return runTUI(ctx, cfg)
	}
	switch rest[0] {
	case "history":
		return runHistory(ctx, cfg, rest[1:])
	case "workout":
		return runWorkout(ctx, cfg, rest[1:])
	case "presets":
		return runPresets(ctx, cfg)
	case "rollover":
		return runRollover(ctx, cfg)
	case "config":
		return runConfig(cfg, flags.configPath, rest[1:])
	case "tui":
		return runTUI(ctx, cfg)
	default:
		return fmt.Errorf("unknown command %q (try --help)", rest[0])
	}
}

// resolveConfig layers the config file, DAYLOOP_* variables and flags.
func resolveConfig(flags globalFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, err
	}
	cfg = config.FromEnv(cfg)
	if flags.dbPath != "" {
		cfg.DatabasePath = flags.dbPath
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.timezone != "" {
		cfg.Timezone = flags.timezone
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `dayloop: daily habits and guided workouts in the terminal.

Usage:
  dayloop [flags]                      run the TUI
  dayloop [flags] history [--limit N]  print archived days
  dayloop [flags] workout <preset-id>  run a workout without the TUI
  dayloop [flags] presets              list workout presets
  dayloop [flags] rollover             archive yesterday if still open
  dayloop [flags] config [--write]     show or write the configuration

Flags:
%s`, flagSet.FlagUsages())
}
