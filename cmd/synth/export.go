package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/metalaw/internal/replay"
)

func newExportCommand(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "export <fixture>",
		Short: "Write ledger predictions as a replay fixture",
		Long:  "export writes every stored prediction as a fixture network whose expected flag is the recorded flag.\nThe format follows the file extension (.json, .yaml or .yml).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.Results()
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return errors.WithHint(errors.New("ledger has no predictions"), "record some with `synth predict --record` or `synth demo --record`")
			}
			f := replay.FixtureFromResults(description, results)
			if err := replay.WriteFixture(args[0], f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d networks to %s\n", len(f.Networks), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "exported from ledger", "fixture description")
	return cmd
}
