package main

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/ledger"
	"github.com/danielpatrickdp/metalaw/internal/replay"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

func newDemoCommand(a *app) *cobra.Command {
	var fixturePath string
	var record bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the reference networks and print an accuracy report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := loadFixtureOrDefault(fixturePath)
			if err != nil {
				return err
			}
			var observers []synthesis.Observer
			if record {
				store, err := a.openLedger()
				if err != nil {
					return err
				}
				defer store.Close()
				observers = append(observers, ledger.NewRecorder(store, "replay", a.logger))
			}
			synth, err := a.synthesizer(observers...)
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
			return renderDemo(cmd.OutOrStdout(), synth, fixture, outcomes, rep)
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "fixture file (JSON or YAML); default is the embedded reference set")
	cmd.Flags().BoolVar(&record, "record", false, "store every prediction in the ledger")
	return cmd
}

func loadFixtureOrDefault(path string) (*replay.Fixture, error) {
	if path == "" {
		return replay.DefaultFixture(), nil
	}
	return replay.LoadFixture(path)
}

// #region render

func renderDemo(w io.Writer, synth *synthesis.Synthesizer, fixture *replay.Fixture, outcomes []replay.Outcome, rep replay.Report) error {
	fmt.Fprint(w, pterm.DefaultHeader.Sprint("Meta-Law Synthesis"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Core equation: Phi = 1 if C = S*D*M >= threshold(class), else 0")
	if fixture.Description != "" {
		fmt.Fprintln(w, fixture.Description)
	}
	fmt.Fprintln(w)

	if err := renderThresholds(w, synth); err != nil {
		return err
	}

	for _, g := range replay.GroupByCategory(outcomes) {
		fmt.Fprint(w, pterm.DefaultSection.Sprint(g.Category))
		rows := pterm.TableData{{"Network", "S", "D", "M", "C", "Class", "Predicted", "Expected", ""}}
		for _, o := range g.Outcomes {
			rows = append(rows, []string{
				o.Network.Name,
				fmt.Sprintf("%.2f", o.Result.S),
				fmt.Sprintf("%.2f", o.Result.D),
				fmt.Sprintf("%.2f", o.Result.M),
				fmt.Sprintf("%.4f", o.Result.Capacity),
				o.Result.UniversalityClass.Label(),
				emergentLabel(o.Result.Emergent),
				emergentLabel(o.Network.Expected),
				matchMark(o.Match),
			})
		}
		if err := renderTable(w, rows); err != nil {
			return err
		}
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprint("Accuracy"))
	acc := pterm.TableData{{"Category", "Correct", "Total", "Accuracy"}}
	for _, c := range rep.Categories {
		acc = append(acc, []string{c.Category, fmt.Sprint(c.Correct), fmt.Sprint(c.Total), fmt.Sprintf("%.1f%%", 100*c.Accuracy)})
	}
	acc = append(acc, []string{"overall", fmt.Sprint(rep.Correct), fmt.Sprint(rep.Total), fmt.Sprintf("%.1f%%", 100*rep.Accuracy)})
	if err := renderTable(w, acc); err != nil {
		return err
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprint("Universality classes"))
	dist := pterm.TableData{{"Class", "Networks"}}
	for _, c := range class.All {
		dist = append(dist, []string{c.Label(), fmt.Sprint(rep.Summary.ByClass[c])})
	}
	if err := renderTable(w, dist); err != nil {
		return err
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprint("Laws"))
	lawRows := pterm.TableData{{"Law", "Predicate", "Networks"}}
	table := synth.LawTable()
	for _, l := range laws.All {
		lawRows = append(lawRows, []string{l.Name(), table.Predicate(l).String(), fmt.Sprint(rep.Summary.ByLaw[l])})
	}
	if err := renderTable(w, lawRows); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(rep.Mismatches) == 0 {
		fmt.Fprint(w, pterm.Success.Sprintfln("%d/%d networks predicted correctly", rep.Correct, rep.Total))
	} else {
		fmt.Fprint(w, pterm.Warning.Sprintfln("%d/%d networks predicted correctly", rep.Correct, rep.Total))
	}
	return nil
}

func renderThresholds(w io.Writer, synth *synthesis.Synthesizer) error {
	fmt.Fprint(w, pterm.DefaultSection.Sprint("Thresholds"))
	th := synth.Thresholds()
	rows := pterm.TableData{{"Class", "Threshold"}}
	for _, c := range class.All {
		rows = append(rows, []string{c.Label(), fmt.Sprintf("%.3f", th.Lookup(c))})
	}
	return renderTable(w, rows)
}

func renderTable(w io.Writer, data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}

func emergentLabel(b bool) string {
	if b {
		return "emergent"
	}
	return "inert"
}

func matchMark(ok bool) string {
	if ok {
		return "ok"
	}
	return "MISS"
}

// #endregion render
