package rpc

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// Struct field names shared by requests and responses.
const (
	keyName       = "name"
	keyS          = "S"
	keyD          = "D"
	keyM          = "M"
	keyMetadata   = "metadata"
	keyCapacity   = "capacity"
	keyClass      = "universality_class"
	keyRule       = "rule"
	keyThreshold  = "threshold"
	keyEmergent   = "emergent"
	keyPhi        = "phi"
	keyActiveLaws = "active_laws"
	keyInputs     = "inputs"
	keyResults    = "results"
	keyThresholds = "thresholds"
	keyRules      = "rules"
)

// #region input
// inputToStruct encodes in as a request message.
func inputToStruct(in synthesis.Input) (*structpb.Struct, error) {
	m := map[string]any{keyS: in.S, keyD: in.D, keyM: in.M}
	if in.Name != "" {
		m[keyName] = in.Name
	}
	if len(in.Metadata) > 0 {
		m[keyMetadata] = stringMap(in.Metadata)
	}
	return structpb.NewStruct(m)
}

// inputFromMap decodes a request. S, D and M are required; a missing
// coordinate is an error, not zero.
func inputFromMap(m map[string]any) (synthesis.Input, error) {
	var in synthesis.Input
	var err error
	if in.Name, err = optionalString(m, keyName); err != nil {
		return synthesis.Input{}, err
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{{keyS, &in.S}, {keyD, &in.D}, {keyM, &in.M}} {
		raw, ok := m[f.key]
		if !ok {
			return synthesis.Input{}, errors.Newf("missing field %s", f.key)
		}
		x, ok := raw.(float64)
		if !ok {
			return synthesis.Input{}, errors.Newf("field %s must be a number", f.key)
		}
		*f.dst = x
	}
	if in.Metadata, err = optionalStringMap(m, keyMetadata); err != nil {
		return synthesis.Input{}, err
	}
	return in, nil
}
// #endregion input

// #region result
func resultMap(r synthesis.Result) map[string]any {
	active := make([]any, len(r.ActiveLaws))
	for i, l := range r.ActiveLaws {
		active[i] = string(l)
	}
	m := map[string]any{
		keyName:       r.Name,
		keyS:          r.S,
		keyD:          r.D,
		keyM:          r.M,
		keyCapacity:   r.Capacity,
		keyClass:      string(r.UniversalityClass),
		keyRule:       r.Rule,
		keyThreshold:  r.Threshold,
		keyEmergent:   r.Emergent,
		keyPhi:        float64(r.Phi()),
		keyActiveLaws: active,
	}
	if len(r.Metadata) > 0 {
		m[keyMetadata] = stringMap(r.Metadata)
	}
	return m
}

func resultToStruct(r synthesis.Result) (*structpb.Struct, error) {
	return structpb.NewStruct(resultMap(r))
}

func resultFromMap(m map[string]any) (synthesis.Result, error) {
	var r synthesis.Result
	var err error
	if r.Name, err = optionalString(m, keyName); err != nil {
		return synthesis.Result{}, err
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{{keyS, &r.S}, {keyD, &r.D}, {keyM, &r.M}, {keyCapacity, &r.Capacity}, {keyThreshold, &r.Threshold}} {
		x, ok := m[f.key].(float64)
		if !ok {
			return synthesis.Result{}, errors.Newf("result field %s must be a number", f.key)
		}
		*f.dst = x
	}
	classStr, _ := m[keyClass].(string)
	if r.UniversalityClass, err = class.Parse(classStr); err != nil {
		return synthesis.Result{}, errors.Wrap(err, "result class")
	}
	r.Rule, _ = m[keyRule].(string)
	r.Emergent, _ = m[keyEmergent].(bool)

	list, _ := m[keyActiveLaws].([]any)
	for _, v := range list {
		s, _ := v.(string)
		l, err := laws.Parse(s)
		if err != nil {
			return synthesis.Result{}, errors.Wrap(err, "result laws")
		}
		r.ActiveLaws = append(r.ActiveLaws, l)
	}
	if r.Metadata, err = optionalStringMap(m, keyMetadata); err != nil {
		return synthesis.Result{}, err
	}
	return r, nil
}
// #endregion result

// #region helpers
func stringMap(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func optionalString(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.Newf("field %s must be a string", key)
	}
	return s, nil
}

func optionalStringMap(m map[string]any, key string) (map[string]string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Newf("field %s must be an object", key)
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf("%s.%s must be a string", key, k)
		}
		out[k] = s
	}
	return out, nil
}
// #endregion helpers
