package eval

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

func predictAll(t *testing.T, inputs []synthesis.Input) []synthesis.Result {
	t.Helper()
	results, err := synthesis.New().PredictBatch(context.Background(), inputs)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	return results
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total != 0 || s.Emergent != 0 || s.EmergenceRate != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if s.Capacity != (CapacityStats{}) {
		t.Errorf("expected zero capacity stats, got %+v", s.Capacity)
	}
	if len(s.ByClass) != len(class.All) {
		t.Errorf("expected every class present, got %d", len(s.ByClass))
	}
}

func TestSummarizeCounts(t *testing.T) {
	results := predictAll(t, []synthesis.Input{
		{Name: "human", S: 0.85, D: 0.70, M: 0.60},
		{Name: "gpt3", S: 0.40, D: 0.90, M: 0.20},
		{Name: "twitter", S: 0.90, D: 0.20, M: 0.05},
		{Name: "mlp", S: 0.20, D: 0.30, M: 0.01},
	})

	s, err := Summarize(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total != 4 {
		t.Errorf("expected total 4, got %d", s.Total)
	}
	if s.Emergent != 3 || s.Inert != 1 {
		t.Errorf("expected 3 emergent / 1 inert, got %d / %d", s.Emergent, s.Inert)
	}
	if s.EmergenceRate != 0.75 {
		t.Errorf("expected rate 0.75, got %f", s.EmergenceRate)
	}
	if s.ByClass[class.SlowMemory] != 2 {
		t.Errorf("expected 2 slow_memory, got %d", s.ByClass[class.SlowMemory])
	}
	if s.ByClass[class.GrammarStructural] != 2 {
		t.Errorf("expected 2 grammar_structural, got %d", s.ByClass[class.GrammarStructural])
	}
	if s.ByClass[class.DenseDynamical] != 0 {
		t.Errorf("expected 0 dense_dynamical, got %d", s.ByClass[class.DenseDynamical])
	}
	if s.ByLaw[laws.ObservationIndependence] != 4 {
		t.Errorf("expected observation independence on all 4, got %d", s.ByLaw[laws.ObservationIndependence])
	}
}

func TestSummarizeCapacityStats(t *testing.T) {
	results := []synthesis.Result{
		{Capacity: 0.1},
		{Capacity: 0.2},
		{Capacity: 0.3},
		{Capacity: 0.6},
	}
	s, err := Summarize(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const eps = 1e-9
	if d := s.Capacity.Mean - 0.3; d > eps || d < -eps {
		t.Errorf("expected mean 0.3, got %f", s.Capacity.Mean)
	}
	if d := s.Capacity.Median - 0.25; d > eps || d < -eps {
		t.Errorf("expected median 0.25, got %f", s.Capacity.Median)
	}
	if s.Capacity.Min != 0.1 || s.Capacity.Max != 0.6 {
		t.Errorf("expected min 0.1 max 0.6, got %f %f", s.Capacity.Min, s.Capacity.Max)
	}
	if s.Capacity.StdDev <= 0 {
		t.Errorf("expected positive stddev, got %f", s.Capacity.StdDev)
	}
}
