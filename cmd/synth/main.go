package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/metalaw/internal/config"
	"github.com/danielpatrickdp/metalaw/internal/ledger"
	"github.com/danielpatrickdp/metalaw/internal/logger"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

var version = "dev"

// #region main

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region app

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	dbPath     string
	cfg        *config.Config
	logger     *zap.SugaredLogger
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log.Named(cmd.Name())
	return nil
}

// synthesizer builds a synthesizer from the configured law table and worker
// count.
func (a *app) synthesizer(observers ...synthesis.Observer) (*synthesis.Synthesizer, error) {
	table, err := a.cfg.LawTable()
	if err != nil {
		return nil, err
	}
	opts := []synthesis.Option{
		synthesis.WithLawTable(table),
		synthesis.WithWorkers(a.cfg.Batch.Workers),
		synthesis.WithLogger(a.logger),
	}
	for _, o := range observers {
		opts = append(opts, synthesis.WithObserver(o))
	}
	return synthesis.New(opts...), nil
}

func (a *app) openLedger() (*ledger.Store, error) {
	store, err := ledger.NewStore(a.cfg.Database.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "ledger %s", a.cfg.Database.Path)
	}
	return store, nil
}

// #endregion app

// #region root

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "synth",
		Short:         "Predict cognitive emergence from network resources",
		Long:          "synth classifies a network by structural differentiation S, causal density D and memory persistence M,\ncomputes capacity C = S*D*M and reports whether it reaches its universality class threshold.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to metalaw.toml (default: ./metalaw.toml if present)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "ledger database path (overrides database.path)")

	root.AddCommand(
		newPredictCommand(a),
		newDemoCommand(a),
		newReplayCommand(a),
		newSummaryCommand(a),
		newExportCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "synth %s\n", version)
		},
	}
}

// #endregion root
