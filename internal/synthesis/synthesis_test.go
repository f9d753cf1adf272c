package synthesis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/resource"
)

type recordingObserver struct {
	mu       sync.Mutex
	observed []Result
	rejected []error
}

func (o *recordingObserver) Observed(r Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, r)
}

func (o *recordingObserver) Rejected(_ Input, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, err)
}

func TestPredictScenarios(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		capacity  float64
		class     class.Class
		rule      string
		threshold float64
		emergent  bool
	}{
		{
			name:      "human-brain",
			in:        Input{Name: "Human Brain", S: 0.85, D: 0.70, M: 0.60},
			capacity:  0.357,
			class:     class.SlowMemory,
			rule:      "long-memory",
			threshold: 0.007,
			emergent:  true,
		},
		{
			name:      "gpt3",
			in:        Input{Name: "GPT-3", S: 0.40, D: 0.90, M: 0.20},
			capacity:  0.072,
			class:     class.SlowMemory,
			rule:      "long-memory",
			threshold: 0.007,
			emergent:  true,
		},
		{
			name:      "twitter",
			in:        Input{Name: "Twitter Network", S: 0.90, D: 0.20, M: 0.05},
			capacity:  0.009,
			class:     class.GrammarStructural,
			rule:      "high-structure-moderate-density",
			threshold: 0.003,
			emergent:  true,
		},
		{
			name:      "simple-mlp",
			in:        Input{Name: "Simple MLP", S: 0.20, D: 0.30, M: 0.01},
			capacity:  0.0006,
			class:     class.GrammarStructural,
			rule:      class.FallbackRule,
			threshold: 0.003,
			emergent:  false,
		},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.Predict(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in.Name, r.Name)
			assert.InDelta(t, tt.capacity, r.Capacity, 1e-12)
			assert.Equal(t, tt.class, r.UniversalityClass)
			assert.Equal(t, tt.rule, r.Rule)
			assert.Equal(t, tt.threshold, r.Threshold)
			assert.Equal(t, tt.emergent, r.Emergent)
			assert.Equal(t, tt.in.S, r.S)
			assert.Equal(t, tt.in.D, r.D)
			assert.Equal(t, tt.in.M, r.M)
		})
	}
}

func TestPredictRejectsOutOfRange(t *testing.T) {
	obs := &recordingObserver{}
	s := New(WithObserver(obs))

	r, err := s.Predict(Input{Name: "bad", S: 1.2, D: 0.5, M: 0.5})
	require.Error(t, err)
	assert.Equal(t, Result{}, r)

	var rangeErr *resource.InputRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, resource.FieldS, rangeErr.Field)
	assert.Equal(t, 1.2, rangeErr.Value)

	assert.Empty(t, obs.observed)
	require.Len(t, obs.rejected, 1)

	// A rejected call leaves later calls untouched.
	r, err = s.Predict(Input{S: 0.85, D: 0.70, M: 0.60})
	require.NoError(t, err)
	assert.True(t, r.Emergent)
}

func TestPredictInclusiveBoundary(t *testing.T) {
	r, err := New().Predict(Input{S: 1, D: 1, M: 0.005})
	require.NoError(t, err)
	assert.Equal(t, class.FastPropagation, r.UniversalityClass)
	assert.Equal(t, r.Threshold, r.Capacity)
	assert.True(t, r.Emergent)
	assert.Equal(t, 1, r.Phi())
}

func TestPredictPassesMetadataThrough(t *testing.T) {
	meta := map[string]string{"category": "biological", "nodes": "302"}
	r, err := New().Predict(Input{Name: "C. elegans", S: 0.70, D: 0.40, M: 0.30, Metadata: meta})
	require.NoError(t, err)
	assert.Equal(t, meta, r.Metadata)

	meta["category"] = "changed"
	assert.Equal(t, "biological", r.Metadata["category"])
}

func TestPredictActiveLaws(t *testing.T) {
	r, err := New().Predict(Input{S: 0.6, D: 0.5, M: 0.1})
	require.NoError(t, err)
	assert.True(t, r.ActiveLaws.Contains(laws.StructuralDifferentiation))
	assert.True(t, r.ActiveLaws.Contains(laws.CausalTime))
	assert.True(t, r.ActiveLaws.Contains(laws.ObservationIndependence))
}

func TestPredictWithLawTable(t *testing.T) {
	table, err := laws.NewTable(laws.ReferencePredicates())
	require.NoError(t, err)

	r, err := New(WithLawTable(table)).Predict(Input{S: 0.20, D: 0.30, M: 0.01})
	require.NoError(t, err)
	assert.Equal(t, laws.Set{laws.CausalTime}, r.ActiveLaws)
	assert.Equal(t, table, New(WithLawTable(table)).LawTable())
}

func TestPredictDeterministicAndConcurrent(t *testing.T) {
	s := New()
	want, err := s.Predict(Input{Name: "x", S: 0.55, D: 0.45, M: 0.09})
	require.NoError(t, err)
	assert.Equal(t, class.GrammarStructural, want.UniversalityClass)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Predict(Input{Name: "x", S: 0.55, D: 0.45, M: 0.09})
			if err != nil {
				errs <- err
				return
			}
			if got.UniversalityClass != want.UniversalityClass || got.Capacity != want.Capacity || got.Emergent != want.Emergent {
				errs <- fmt.Errorf("mismatch: %+v", got)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestPredictBatchKeepsOrder(t *testing.T) {
	obs := &recordingObserver{}
	s := New(WithWorkers(3), WithObserver(obs))

	var inputs []Input
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		inputs = append(inputs, Input{Name: fmt.Sprintf("n%d", i), S: x, D: 1 - x, M: 0.5})
	}

	results, err := s.PredictBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, inputs[i].Name, r.Name)
		assert.Equal(t, inputs[i].S, r.S)
	}
	require.Len(t, obs.observed, len(inputs))
	for i, r := range obs.observed {
		assert.Equal(t, inputs[i].Name, r.Name)
	}
}

func TestPredictBatchReportsInvalidInput(t *testing.T) {
	inputs := []Input{
		{Name: "ok", S: 0.5, D: 0.5, M: 0.5},
		{Name: "broken", S: 0.5, D: 7, M: 0.5},
	}
	obs := &recordingObserver{}
	results, err := New(WithWorkers(1), WithObserver(obs)).PredictBatch(context.Background(), inputs)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, resource.ErrOutOfRange)
	assert.Contains(t, err.Error(), "input 1 (broken)")

	// The valid input ahead of the broken one is never reported.
	assert.Empty(t, obs.observed)
	assert.Len(t, obs.rejected, 1)
}

func TestPredictBatchHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs := &recordingObserver{}
	_, err := New(WithObserver(obs)).PredictBatch(ctx, []Input{{S: 0.5, D: 0.5, M: 0.5}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, obs.observed)
}

func TestPredictBatchEmpty(t *testing.T) {
	results, err := New().PredictBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAccessors(t *testing.T) {
	s := New()
	assert.Equal(t, class.DefaultThresholds(), s.Thresholds())
	assert.Len(t, s.Rules(), 4)
	assert.Equal(t, laws.DefaultTable(), s.LawTable())
}
