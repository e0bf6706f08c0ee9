package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/config"
	"github.com/meenmo/credlib/journal"
	"github.com/meenmo/credlib/logger"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "cdsprice",
		Short: "Value single-name credit default swaps",
		Long: `cdsprice values CDS contracts described in YAML scenario files.

Each scenario carries a contract, a valuation date and the discount, survival and
optional recovery curves. Results can be written as a table, JSON or msgpack, kept
in a SQLite run journal, or served over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./credlib.yaml if present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn, error or disabled (overrides config)")

	cmd.AddCommand(
		newPriceCmd(a),
		newServeCmd(a),
		newRunsCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, a.stderr)
	logger.SetGlobalLogger(a.log)
	return nil
}

func (a *app) engine() (*cds.Engine, error) {
	return cds.NewEngine(a.cfg.Engine, cds.WithLogger(a.log.With().Str("component", "engine").Logger()))
}

func (a *app) openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(a.cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", a.cfg.Journal.Path, err)
	}
	return j, nil
}
