package gate

import (
	"fmt"

	"github.com/danielpatrickdp/metalaw/internal/class"
)

// #region gate
// Gate decides emergence by comparing capacity to the class threshold.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate looks up the threshold for c and compares it with capacity.
func (g *Gate) Evaluate(capacity float64, c class.Class) GateDecision {
	threshold := g.config.Thresholds.Lookup(c)
	emergent := Emergent(capacity, threshold)

	d := GateDecision{
		Class:     c,
		Capacity:  capacity,
		Threshold: threshold,
		Margin:    capacity - threshold,
		Emergent:  emergent,
	}
	if emergent {
		d.Action = ActionEmergent
		d.Reason = fmt.Sprintf("capacity %.6f >= %s threshold %.3f", capacity, c, threshold)
	} else {
		d.Action = ActionInert
		d.Reason = fmt.Sprintf("capacity %.6f < %s threshold %.3f", capacity, c, threshold)
	}
	return d
}

// Threshold returns the configured threshold for c.
func (g *Gate) Threshold(c class.Class) float64 {
	return g.config.Thresholds.Lookup(c)
}

// Config returns the gate configuration.
func (g *Gate) Config() GateConfig {
	return g.config
}

// #endregion gate

// #region emergent
// Emergent is the inclusive comparison: capacity equal to the threshold counts.
func Emergent(capacity, threshold float64) bool {
	return capacity >= threshold
}

// #endregion emergent
