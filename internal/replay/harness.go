package replay

import (
	"context"

	"github.com/danielpatrickdp/metalaw/internal/eval"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// #region types

// Outcome pairs a network with its prediction.
type Outcome struct {
	Network Network
	Result  synthesis.Result
	Match   bool // prediction agrees with Network.Expected
}

// CategoryReport is accuracy within one category.
type CategoryReport struct {
	Category string
	Total    int
	Correct  int
	Accuracy float64
}

// Report aggregates a replay run.
type Report struct {
	Total      int
	Correct    int
	Accuracy   float64
	Categories []CategoryReport // in order of first appearance
	Mismatches []Outcome
	Summary    eval.Summary
}

// #endregion types

// #region replay

// Replay predicts every network through s and compares against the expected
// flags. Outcomes are returned in fixture order.
func Replay(ctx context.Context, s *synthesis.Synthesizer, networks []Network) ([]Outcome, error) {
	inputs := make([]synthesis.Input, len(networks))
	for i, n := range networks {
		inputs[i] = n.Input()
	}
	results, err := s.PredictBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, len(networks))
	for i, r := range results {
		outcomes[i] = Outcome{
			Network: networks[i],
			Result:  r,
			Match:   r.Emergent == networks[i].Expected,
		}
	}
	return outcomes, nil
}

// CategoryOutcomes holds the outcomes of one category in fixture order.
type CategoryOutcomes struct {
	Category string
	Outcomes []Outcome
}

// GroupByCategory groups outcomes by category, categories in order of first
// appearance, matching Report.Categories.
func GroupByCategory(outcomes []Outcome) []CategoryOutcomes {
	var groups []CategoryOutcomes
	index := make(map[string]int)
	for _, o := range outcomes {
		i, ok := index[o.Network.Category]
		if !ok {
			i = len(groups)
			index[o.Network.Category] = i
			groups = append(groups, CategoryOutcomes{Category: o.Network.Category})
		}
		groups[i].Outcomes = append(groups[i].Outcomes, o)
	}
	return groups
}

// Summarize computes overall and per-category accuracy plus the prediction
// summary.
func Summarize(outcomes []Outcome) (Report, error) {
	rep := Report{Total: len(outcomes)}
	index := make(map[string]int)
	results := make([]synthesis.Result, 0, len(outcomes))

	for _, o := range outcomes {
		results = append(results, o.Result)

		i, ok := index[o.Network.Category]
		if !ok {
			i = len(rep.Categories)
			index[o.Network.Category] = i
			rep.Categories = append(rep.Categories, CategoryReport{Category: o.Network.Category})
		}
		rep.Categories[i].Total++
		if o.Match {
			rep.Correct++
			rep.Categories[i].Correct++
		} else {
			rep.Mismatches = append(rep.Mismatches, o)
		}
	}

	if rep.Total > 0 {
		rep.Accuracy = float64(rep.Correct) / float64(rep.Total)
	}
	for i := range rep.Categories {
		c := &rep.Categories[i]
		c.Accuracy = float64(c.Correct) / float64(c.Total)
	}

	summary, err := eval.Summarize(results)
	if err != nil {
		return Report{}, err
	}
	rep.Summary = summary
	return rep, nil
}

// #endregion replay
