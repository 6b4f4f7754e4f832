package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/navcore/internal/config"
	"github.com/san-kum/navcore/internal/scenario"
	"github.com/san-kum/navcore/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "NAVSIM"

var log zerolog.Logger

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers the commands. With no subcommand navsim opens the
// interactive scenario browser.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "navsim",
		Short:         "vehicle motion control simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		RunE: runInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", ".navsim", "data directory")
	pf.String("config", "", "config file (yaml)")
	pf.String("preset", "", "tuning preset applied before the scenario's own")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "log as JSON instead of console text")
	pf.String("theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	pf.String("scenarios", "scenarios", "directory searched for scenario files")
	for _, name := range []string{"data", "config", "preset", "log-level", "log-json", "theme", "scenarios"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		runCommand(),
		liveCommand(),
		listCommand(),
		plotCommand(),
		analyzeCommand(),
		phaseCommand(),
		compareCommand(),
		tuneCommand(),
		exportCommand(),
		pathsCommand(),
		presetsCommand(),
		layoutsCommand(),
		configCommand(),
	)

	return rootCmd
}

func setupLogging() error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if viper.GetBool("log-json") {
		log = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		return nil
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
	return nil
}

// baseConfig is the config file, or the defaults, with --preset on top.
func baseConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if file := viper.GetString("config"); file != "" {
		loaded, err := config.Load(file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if name := viper.GetString("preset"); name != "" {
		preset := config.GetPreset(name)
		if preset == nil {
			return nil, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(config.ListPresets(), ", "))
		}
		cfg = preset
	}
	return cfg, cfg.Validate()
}

// findScenarios loads every scenario in dir. Files that fail to load are
// logged and skipped.
func findScenarios(dir string) ([]*scenario.Scenario, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}

	scenarios := make([]*scenario.Scenario, 0, len(files))
	for _, f := range files {
		sc, err := scenario.Load(f)
		if err != nil {
			log.Warn().Err(err).Str("file", f).Msg("skipping scenario")
			continue
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	base, err := baseConfig()
	if err != nil {
		return err
	}
	scenarios, err := findScenarios(viper.GetString("scenarios"))
	if err != nil {
		return err
	}
	return viz.RunInteractive(scenarios, base, zerolog.Nop(), viz.GetTheme(viper.GetString("theme")))
}
