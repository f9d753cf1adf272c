package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

func TestRecorderObservesSynthesizer(t *testing.T) {
	store := tempStore(t)
	s := synthesis.New(synthesis.WithObserver(NewRecorder(store, "replay", nil)))

	_, err := s.PredictBatch(context.Background(), []synthesis.Input{
		{Name: "a", S: 0.85, D: 0.7, M: 0.6},
		{Name: "b", S: 0.2, D: 0.3, M: 0.01},
	})
	require.NoError(t, err)
	_, err = s.Predict(synthesis.Input{Name: "c", S: 0.5, D: -1, M: 0.5})
	require.Error(t, err)

	c, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{Predictions: 2, Emergent: 1, Rejected: 1}, c)
}

func TestRecorderSkipsFailedBatch(t *testing.T) {
	store := tempStore(t)
	s := synthesis.New(
		synthesis.WithWorkers(1),
		synthesis.WithObserver(NewRecorder(store, "batch", nil)),
	)

	results, err := s.PredictBatch(context.Background(), []synthesis.Input{
		{Name: "ok1", S: 0.85, D: 0.7, M: 0.6},
		{Name: "ok2", S: 0.2, D: 0.3, M: 0.01},
		{Name: "bad", S: 1.2, D: 0.5, M: 0.5},
	})
	require.Error(t, err)
	assert.Nil(t, results)

	c, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{Predictions: 0, Emergent: 0, Rejected: 1}, c)

	records, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecorderSurvivesClosedStore(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Close())
	r := NewRecorder(store, "cli", nil)

	assert.NotPanics(t, func() {
		r.Observed(synthesis.Result{Name: "x"})
		r.Rejected(synthesis.Input{Name: "y"}, nil)
	})
}
