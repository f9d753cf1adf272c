package rpc

import (
	"context"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// #region client-struct
// Client calls a remote Synthesis service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}
// #endregion client-struct

// #region constructor
// NewClient connects to a Synthesis server at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "grpc dial %s", addr)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn uses an existing connection, which the caller closes.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close shuts down a connection opened by NewClient.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion constructor

// #region predict
// Predict sends one input.
func (c *Client) Predict(ctx context.Context, in synthesis.Input) (synthesis.Result, error) {
	req, err := inputToStruct(in)
	if err != nil {
		return synthesis.Result{}, errors.Wrap(err, "encode input")
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodPredict, req, resp); err != nil {
		return synthesis.Result{}, errors.Wrap(err, "predict rpc")
	}
	return resultFromMap(resp.AsMap())
}

// PredictBatch sends inputs in one call; results come back in input order.
func (c *Client) PredictBatch(ctx context.Context, inputs []synthesis.Input) ([]synthesis.Result, error) {
	list := make([]any, len(inputs))
	for i, in := range inputs {
		st, err := inputToStruct(in)
		if err != nil {
			return nil, errors.Wrapf(err, "encode input %d", i)
		}
		list[i] = st.AsMap()
	}
	req, err := structpb.NewStruct(map[string]any{keyInputs: list})
	if err != nil {
		return nil, errors.Wrap(err, "encode batch")
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodPredictBatch, req, resp); err != nil {
		return nil, errors.Wrap(err, "predict batch rpc")
	}

	raw, _ := resp.AsMap()[keyResults].([]any)
	results := make([]synthesis.Result, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Newf("results[%d] is not an object", i)
		}
		if results[i], err = resultFromMap(obj); err != nil {
			return nil, errors.Wrapf(err, "results[%d]", i)
		}
	}
	return results, nil
}
// #endregion predict

// #region thresholds
// Thresholds fetches the server's threshold table and rule names.
func (c *Client) Thresholds(ctx context.Context) (map[class.Class]float64, []string, error) {
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodThresholds, &emptypb.Empty{}, resp); err != nil {
		return nil, nil, errors.Wrap(err, "thresholds rpc")
	}
	m := resp.AsMap()

	table := make(map[class.Class]float64)
	raw, _ := m[keyThresholds].(map[string]any)
	for k, v := range raw {
		cl, err := class.Parse(k)
		if err != nil {
			return nil, nil, err
		}
		x, ok := v.(float64)
		if !ok {
			return nil, nil, errors.Newf("threshold %s is not a number", k)
		}
		table[cl] = x
	}

	var rules []string
	list, _ := m[keyRules].([]any)
	for _, v := range list {
		if s, ok := v.(string); ok {
			rules = append(rules, s)
		}
	}
	return table, rules, nil
}
// #endregion thresholds
