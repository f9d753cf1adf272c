package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/eval"
	"github.com/danielpatrickdp/metalaw/internal/laws"
)

func newSummaryCommand(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the predictions stored in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.Results()
			if err != nil {
				return err
			}
			s, err := eval.Summarize(results)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			fmt.Fprintf(out, "Networks:    %d\n", s.Total)
			fmt.Fprintf(out, "Emergent:    %d\n", s.Emergent)
			fmt.Fprintf(out, "Inert:       %d\n", s.Inert)
			fmt.Fprintf(out, "Rate:        %.1f%%\n", 100*s.EmergenceRate)
			if s.Total == 0 {
				return nil
			}
			fmt.Fprintf(out, "Capacity:    mean=%.6f median=%.6f stddev=%.6f min=%.6f max=%.6f\n",
				s.Capacity.Mean, s.Capacity.Median, s.Capacity.StdDev, s.Capacity.Min, s.Capacity.Max)
			fmt.Fprintln(out, "Classes:")
			for _, c := range class.All {
				fmt.Fprintf(out, "  %-22s %d\n", c.Label(), s.ByClass[c])
			}
			fmt.Fprintln(out, "Laws:")
			for _, l := range laws.All {
				fmt.Fprintf(out, "  %-26s %d\n", l.Name(), s.ByLaw[l])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
