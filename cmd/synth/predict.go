package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/ledger"
	"github.com/danielpatrickdp/metalaw/internal/rpc"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

func newPredictCommand(a *app) *cobra.Command {
	var in synthesis.Input
	var jsonOut, record bool
	var remote string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "predict --s S --d D --m M",
		Short: "Predict emergence for one network",
		Long: `Predict emergence for one network.

With --remote the prediction is made by a running "synth serve" over gRPC,
and that server records it if it has a ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res synthesis.Result
			var err error
			if remote != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				res, err = predictRemote(ctx, remote, in)
			} else {
				res, err = a.predictLocal(in, record)
			}
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printPrediction(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "network name")
	cmd.Flags().Float64Var(&in.S, "s", 0, "structural differentiation in [0, 1]")
	cmd.Flags().Float64Var(&in.D, "d", 0, "causal density in [0, 1]")
	cmd.Flags().Float64Var(&in.M, "m", 0, "memory persistence in [0, 1]")
	cmd.Flags().StringToStringVar(&in.Metadata, "meta", nil, "metadata key=value pairs")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "store the prediction in the ledger")
	cmd.Flags().StringVar(&remote, "remote", "", "gRPC address of a synth server to predict with")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "deadline for a --remote call")
	cmd.MarkFlagsMutuallyExclusive("remote", "record")
	for _, f := range []string{"s", "d", "m"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) predictLocal(in synthesis.Input, record bool) (synthesis.Result, error) {
	var observers []synthesis.Observer
	if record {
		store, err := a.openLedger()
		if err != nil {
			return synthesis.Result{}, err
		}
		defer store.Close()
		observers = append(observers, ledger.NewRecorder(store, "cli", a.logger))
	}
	synth, err := a.synthesizer(observers...)
	if err != nil {
		return synthesis.Result{}, err
	}
	return synth.Predict(in)
}

func predictRemote(ctx context.Context, addr string, in synthesis.Input) (synthesis.Result, error) {
	client, err := rpc.NewClient(addr)
	if err != nil {
		return synthesis.Result{}, err
	}
	defer client.Close()
	return client.Predict(ctx, in)
}

// printPrediction writes a human readable prediction.
func printPrediction(w io.Writer, r synthesis.Result) {
	name := r.Name
	if name == "" {
		name = "(unnamed network)"
	}
	fmt.Fprintf(w, "%s\n%s\n", name, strings.Repeat("=", len(name)))
	fmt.Fprintf(w, "Resources:    S=%.3f  D=%.3f  M=%.3f\n", r.S, r.D, r.M)
	fmt.Fprintf(w, "Capacity:     C = S*D*M = %.6f\n", r.Capacity)
	fmt.Fprintf(w, "Class:        %s (%s, rule %s)\n", r.UniversalityClass.Label(), r.UniversalityClass, r.Rule)
	fmt.Fprintf(w, "Threshold:    %.6f\n", r.Threshold)

	verdict := "INERT"
	cmp := "<"
	if r.Emergent {
		verdict = "EMERGENT"
		cmp = ">="
	}
	fmt.Fprintf(w, "Prediction:   %s (phi=%d, %.6f %s %.6f)\n", verdict, r.Phi(), r.Capacity, cmp, r.Threshold)

	if len(r.ActiveLaws) == 0 {
		fmt.Fprintln(w, "Active laws:  none")
	} else {
		fmt.Fprintln(w, "Active laws:")
		for _, l := range r.ActiveLaws {
			fmt.Fprintf(w, "  - %s\n", l.Name())
		}
	}
	var inactive []string
	for _, l := range laws.All {
		if !r.ActiveLaws.Contains(l) {
			inactive = append(inactive, l.Name())
		}
	}
	if len(inactive) > 0 {
		fmt.Fprintf(w, "Inactive:     %s\n", strings.Join(inactive, ", "))
	}
}
