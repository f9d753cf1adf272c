package main

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/metalaw/internal/replay"
)

type replayRow struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Capacity float64 `json:"capacity"`
	Class    string  `json:"universality_class"`
	Emergent bool    `json:"emergent"`
	Expected bool    `json:"expected"`
	Match    bool    `json:"match"`
}

func newReplayCommand(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "replay <fixture>",
		Short: "Check a fixture's expected flags against predictions",
		Long:  "replay predicts every network in a JSON or YAML fixture and fails when any prediction differs from its expected flag.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			synth, err := a.synthesizer()
			if err != nil {
				return err
			}
			outcomes, err := replay.Replay(cmd.Context(), synth, fixture.Networks)
			if err != nil {
				return err
			}
			rep, err := replay.Summarize(outcomes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				rows := make([]replayRow, len(outcomes))
				for i, o := range outcomes {
					rows[i] = replayRow{
						Name:     o.Network.Name,
						Category: o.Network.Category,
						Capacity: o.Result.Capacity,
						Class:    string(o.Result.UniversalityClass),
						Emergent: o.Result.Emergent,
						Expected: o.Network.Expected,
						Match:    o.Match,
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rows); err != nil {
					return err
				}
			} else {
				for _, m := range rep.Mismatches {
					fmt.Fprintf(out, "MISMATCH  %-30s  C=%.6f  %s  predicted=%s expected=%s\n",
						m.Network.Name, m.Result.Capacity, m.Result.UniversalityClass,
						emergentLabel(m.Result.Emergent), emergentLabel(m.Network.Expected))
				}
				fmt.Fprintf(out, "%d/%d correct (%.1f%%)\n", rep.Correct, rep.Total, 100*rep.Accuracy)
			}

			if len(rep.Mismatches) > 0 {
				return errors.Newf("%d of %d networks mismatched", len(rep.Mismatches), rep.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output outcomes as JSON")
	return cmd
}
