package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/logging"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func predict(t *testing.T, in synthesis.Input) synthesis.Result {
	t.Helper()
	r, err := synthesis.New().Predict(in)
	require.NoError(t, err)
	return r
}

func TestSaveAndGet(t *testing.T) {
	s := tempStore(t)
	r := predict(t, synthesis.Input{
		Name:     "Human Brain",
		S:        0.85,
		D:        0.70,
		M:        0.60,
		Metadata: map[string]string{"category": "biological"},
	})

	rec, err := s.Save(r, "cli")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "cli", got.TriggerType)
	assert.Equal(t, r, got.Result)
	assert.Equal(t, class.SlowMemory, got.Result.UniversalityClass)
	assert.True(t, got.Result.Emergent)
}

func TestSaveWritesProvenance(t *testing.T) {
	s := tempStore(t)
	rec, err := s.Save(predict(t, synthesis.Input{Name: "mlp", S: 0.2, D: 0.3, M: 0.01}), "replay")
	require.NoError(t, err)

	entries, err := logging.ListDecisions(s.DB(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rec.ID, entries[0].PredictionID)
	assert.Equal(t, logging.DecisionInert, entries[0].Decision)
	assert.Equal(t, "replay", entries[0].TriggerType)
	assert.Contains(t, entries[0].Reason, "fallback")
	assert.JSONEq(t, `{"name":"mlp","S":0.2,"D":0.3,"M":0.01}`, entries[0].InputJSON)
}

func TestSaveWithoutMetadataOrLaws(t *testing.T) {
	s := tempStore(t)
	r := synthesis.Result{Name: "bare", UniversalityClass: class.GrammarStructural, Rule: class.FallbackRule, Threshold: 0.003}
	rec, err := s.Save(r, "cli")
	require.NoError(t, err)

	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Result.Metadata)
	assert.Nil(t, got.Result.ActiveLaws)
}

func TestGetUnknown(t *testing.T) {
	_, err := tempStore(t).Get("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := tempStore(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Save(predict(t, synthesis.Input{Name: name, S: 0.5, D: 0.5, M: 0.5}), "cli")
		require.NoError(t, err)
	}

	recs, err := s.List(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].Result.Name)
	assert.Equal(t, "b", recs[1].Result.Name)

	all, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	results, err := s.Results()
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, "c", results[2].Name)
}

func TestRejectAndCounts(t *testing.T) {
	s := tempStore(t)
	_, err := s.Save(predict(t, synthesis.Input{S: 0.85, D: 0.7, M: 0.6}), "cli")
	require.NoError(t, err)
	_, err = s.Save(predict(t, synthesis.Input{S: 0.2, D: 0.3, M: 0.01}), "cli")
	require.NoError(t, err)

	_, cause := synthesis.New().Predict(synthesis.Input{Name: "bad", S: 1.2})
	require.Error(t, cause)
	require.NoError(t, s.Reject(synthesis.Input{Name: "bad", S: 1.2}, cause, "http"))

	c, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{Predictions: 2, Emergent: 1, Rejected: 1}, c)

	entries, err := logging.ListDecisions(s.DB(), 1)
	require.NoError(t, err)
	assert.Equal(t, logging.DecisionRejected, entries[0].Decision)
	assert.Empty(t, entries[0].PredictionID)
	assert.Contains(t, entries[0].Reason, "S=1.2")
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	rec, err := s.Save(predict(t, synthesis.Input{Name: "x", S: 0.6, D: 0.5, M: 0.1}), "cli")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Result.ActiveLaws.Contains(laws.StructuralDifferentiation))
}
