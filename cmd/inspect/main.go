package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/metalaw/internal/ledger"
	"github.com/danielpatrickdp/metalaw/internal/logging"
)

// #region main

func main() {
	if err := newInspectCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	dbPath    string
	last      int
	id        string
	decisions bool
	jsonOut   bool
}

func newInspectCommand() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "inspect --db path/to/metalaw.db",
		Short:         "Inspect a prediction ledger",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := ledger.NewStore(o.dbPath)
			if err != nil {
				return errors.Wrap(err, "open db")
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case o.id != "":
				return runDetailMode(out, store, o.id, o.jsonOut)
			case o.decisions:
				return runDecisionMode(out, store, o.last, o.jsonOut)
			default:
				return runListMode(out, store, o.last, o.jsonOut)
			}
		},
	}
	cmd.Flags().StringVar(&o.dbPath, "db", "", "path to metalaw.db")
	cmd.Flags().IntVar(&o.last, "last", 20, "show N most recent rows")
	cmd.Flags().StringVar(&o.id, "id", "", "show a single prediction in detail")
	cmd.Flags().BoolVar(&o.decisions, "decisions", false, "show the provenance log, including rejected inputs")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "output as JSON instead of table")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

// #endregion main

// #region list-mode

type listRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Capacity  float64 `json:"capacity"`
	Class     string  `json:"universality_class"`
	Threshold float64 `json:"threshold"`
	Emergent  bool    `json:"emergent"`
	Trigger   string  `json:"trigger_type"`
	CreatedAt string  `json:"created_at"`
}

func runListMode(w io.Writer, store *ledger.Store, last int, jsonOut bool) error {
	records, err := store.List(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no predictions found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(records))
	for i, rec := range records {
		rows[len(records)-1-i] = listRow{
			ID:        rec.ID,
			Name:      rec.Result.Name,
			Capacity:  rec.Result.Capacity,
			Class:     string(rec.Result.UniversalityClass),
			Threshold: rec.Result.Threshold,
			Emergent:  rec.Result.Emergent,
			Trigger:   rec.TriggerType,
			CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "%-8s  %-24s  %10s  %-18s  %9s  %-8s  %-7s  %s\n",
		"ID", "Name", "Capacity", "Class", "Threshold", "Phi", "Trigger", "Time")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 110))
	for _, r := range rows {
		phi := "0"
		if r.Emergent {
			phi = "1"
		}
		fmt.Fprintf(w, "%-8s  %-24s  %10.6f  %-18s  %9.3f  %-8s  %-7s  %s\n",
			shortID(r.ID), truncate(r.Name, 24), r.Capacity, r.Class, r.Threshold, phi, r.Trigger, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	CreatedAt  string            `json:"created_at"`
	Trigger    string            `json:"trigger_type"`
	S          float64           `json:"S"`
	D          float64           `json:"D"`
	M          float64           `json:"M"`
	Capacity   float64           `json:"capacity"`
	Class      string            `json:"universality_class"`
	Rule       string            `json:"rule"`
	Threshold  float64           `json:"threshold"`
	Emergent   bool              `json:"emergent"`
	ActiveLaws []string          `json:"active_laws"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func runDetailMode(w io.Writer, store *ledger.Store, id string, jsonOut bool) error {
	rec, err := store.Get(id)
	if err != nil {
		return err
	}
	r := rec.Result
	out := detailOutput{
		ID:         rec.ID,
		Name:       r.Name,
		CreatedAt:  rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Trigger:    rec.TriggerType,
		S:          r.S,
		D:          r.D,
		M:          r.M,
		Capacity:   r.Capacity,
		Class:      string(r.UniversalityClass),
		Rule:       r.Rule,
		Threshold:  r.Threshold,
		Emergent:   r.Emergent,
		ActiveLaws: r.ActiveLaws.Names(),
		Metadata:   r.Metadata,
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "ID:         %s\n", out.ID)
	fmt.Fprintf(w, "Name:       %s\n", out.Name)
	fmt.Fprintf(w, "Created:    %s (%s)\n", out.CreatedAt, out.Trigger)
	fmt.Fprintf(w, "Resources:  S=%.3f D=%.3f M=%.3f\n", out.S, out.D, out.M)
	fmt.Fprintf(w, "Capacity:   %.6f\n", out.Capacity)
	fmt.Fprintf(w, "Class:      %s (rule %s)\n", out.Class, out.Rule)
	fmt.Fprintf(w, "Threshold:  %.6f\n", out.Threshold)
	fmt.Fprintf(w, "Emergent:   %v\n", out.Emergent)
	fmt.Fprintf(w, "Laws:       %s\n", strings.Join(out.ActiveLaws, ", "))
	if len(out.Metadata) > 0 {
		fmt.Fprintf(w, "\nMetadata:\n")
		for _, k := range sortedKeys(out.Metadata) {
			fmt.Fprintf(w, "  %-12s %s\n", k, out.Metadata[k])
		}
	}
	return nil
}

// #endregion detail-mode

// #region decision-mode

func runDecisionMode(w io.Writer, store *ledger.Store, last int, jsonOut bool) error {
	entries, err := logging.ListDecisions(store.DB(), last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(w, entries)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(w, "%-5d  %-8s  %-24s  %-8s  %-7s  %s\n",
			e.ID, shortID(e.PredictionID), truncate(e.Name, 24), e.Decision, e.TriggerType, e.Reason)
	}
	return nil
}

// #endregion decision-mode

// #region output

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal json")
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// #endregion output
