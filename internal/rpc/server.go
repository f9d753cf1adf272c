package rpc

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/resource"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// Server serves the Synthesis service from one synthesizer.
type Server struct {
	synth  *synthesis.Synthesizer
	logger *zap.SugaredLogger
}

var _ SynthesisServer = (*Server)(nil)

// NewServer wraps synth.
func NewServer(synth *synthesis.Synthesizer, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{synth: synth, logger: logger}
}

// Register creates a grpc.Server with the Synthesis service registered.
func (s *Server) Register(opts ...grpc.ServerOption) *grpc.Server {
	gs := grpc.NewServer(opts...)
	RegisterSynthesisServer(gs, s)
	return gs
}

// #region predict
// Predict handles one input.
func (s *Server) Predict(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := inputFromMap(req.AsMap())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	r, err := s.synth.Predict(in)
	if err != nil {
		return nil, statusFor(err)
	}
	out, err := resultToStruct(r)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

// PredictBatch handles {"inputs": [...]} and answers {"results": [...]} in
// request order.
func (s *Server) PredictBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	list, ok := req.AsMap()[keyInputs].([]any)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "field inputs must be a list")
	}
	inputs := make([]synthesis.Input, len(list))
	for i, raw := range list {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "inputs[%d] must be an object", i)
		}
		in, err := inputFromMap(obj)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "inputs[%d]: %v", i, err)
		}
		inputs[i] = in
	}

	results, err := s.synth.PredictBatch(ctx, inputs)
	if err != nil {
		return nil, statusFor(err)
	}
	encoded := make([]any, len(results))
	for i, r := range results {
		encoded[i] = resultMap(r)
	}
	out, err := structpb.NewStruct(map[string]any{keyResults: encoded})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode results: %v", err)
	}
	return out, nil
}
// #endregion predict

// #region thresholds
// Thresholds reports the threshold table and the ordered rule names.
func (s *Server) Thresholds(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	th := s.synth.Thresholds()
	table := make(map[string]any, len(class.All))
	for _, c := range class.All {
		table[string(c)] = th.Lookup(c)
	}
	rules := make([]any, 0, len(s.synth.Rules())+1)
	for _, r := range s.synth.Rules() {
		rules = append(rules, r.Name)
	}
	rules = append(rules, class.FallbackRule)

	out, err := structpb.NewStruct(map[string]any{keyThresholds: table, keyRules: rules})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode thresholds: %v", err)
	}
	return out, nil
}
// #endregion thresholds

func statusFor(err error) error {
	switch {
	case errors.Is(err, resource.ErrOutOfRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
