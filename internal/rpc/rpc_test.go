package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// #region helpers
func startServer(t *testing.T, synth *synthesis.Synthesizer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := NewServer(synth, nil).Register()
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}
// #endregion helpers

// #region predict-tests
func TestPredictOverGRPC(t *testing.T) {
	client := startServer(t, synthesis.New())

	in := synthesis.Input{
		Name:     "Human Brain",
		S:        0.85,
		D:        0.70,
		M:        0.60,
		Metadata: map[string]string{"category": "biological"},
	}
	got, err := client.Predict(context.Background(), in)
	require.NoError(t, err)

	want, err := synthesis.New().Predict(in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, class.SlowMemory, got.UniversalityClass)
}

func TestPredictOutOfRangeIsInvalidArgument(t *testing.T) {
	client := startServer(t, synthesis.New())

	_, err := client.Predict(context.Background(), synthesis.Input{S: 1.2, D: 0.5, M: 0.5})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, err.Error(), "S=1.2")
}

func TestPredictMissingFieldIsInvalidArgument(t *testing.T) {
	srv := NewServer(synthesis.New(), nil)
	req, err := structpb.NewStruct(map[string]any{"S": 0.5, "D": 0.5})
	require.NoError(t, err)

	_, err = srv.Predict(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, err.Error(), "missing field M")

	req, err = structpb.NewStruct(map[string]any{"S": "high", "D": 0.5, "M": 0.5})
	require.NoError(t, err)
	_, err = srv.Predict(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPredictBatchOverGRPC(t *testing.T) {
	client := startServer(t, synthesis.New(synthesis.WithWorkers(2)))

	inputs := []synthesis.Input{
		{Name: "a", S: 0.85, D: 0.70, M: 0.60},
		{Name: "b", S: 0.90, D: 0.20, M: 0.05},
		{Name: "c", S: 0.20, D: 0.30, M: 0.01},
	}
	results, err := client.PredictBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, class.GrammarStructural, results[1].UniversalityClass)
	assert.False(t, results[2].Emergent)

	_, err = client.PredictBatch(context.Background(), append(inputs, synthesis.Input{Name: "bad", M: 3}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestPredictBatchRequiresList(t *testing.T) {
	srv := NewServer(synthesis.New(), nil)
	req, err := structpb.NewStruct(map[string]any{"inputs": "nope"})
	require.NoError(t, err)
	_, err = srv.PredictBatch(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
// #endregion predict-tests

// #region thresholds-tests
func TestThresholdsOverGRPC(t *testing.T) {
	client := startServer(t, synthesis.New())

	table, rules, err := client.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, class.DefaultThresholds().Map(), table)
	require.Len(t, rules, 5)
	assert.Equal(t, "high-structure-moderate-density", rules[0])
	assert.Equal(t, class.FallbackRule, rules[4])
}
// #endregion thresholds-tests

// #region convert-tests
func TestResultRoundTripThroughMap(t *testing.T) {
	r := synthesis.Result{
		Name:              "x",
		S:                 1,
		D:                 1,
		M:                 0.005,
		Capacity:          0.005,
		UniversalityClass: class.FastPropagation,
		Rule:              "high-structure-short-memory",
		Threshold:         0.005,
		Emergent:          true,
		ActiveLaws:        laws.Set{laws.ObservationIndependence},
	}
	st, err := resultToStruct(r)
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.AsMap()["phi"])

	got, err := resultFromMap(st.AsMap())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestResultFromMapRejectsUnknownClass(t *testing.T) {
	_, err := resultFromMap(map[string]any{
		"S": 0.1, "D": 0.1, "M": 0.1, "capacity": 0.001, "threshold": 0.003,
		"universality_class": "chaotic",
	})
	assert.Error(t, err)
}
// #endregion convert-tests
