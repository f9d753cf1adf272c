package gate

import "github.com/danielpatrickdp/metalaw/internal/class"

// #region action
// Action is the gate outcome.
type Action string

const (
	ActionEmergent Action = "emergent" // Φ = 1
	ActionInert    Action = "inert"    // Φ = 0
)

// #endregion action

// #region gate-config
// GateConfig holds the per-class critical capacities.
type GateConfig struct {
	Thresholds class.Thresholds
}

// DefaultGateConfig returns the standard C_critical table.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Thresholds: class.DefaultThresholds(),
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action    Action
	Class     class.Class
	Capacity  float64
	Threshold float64
	Margin    float64 // capacity - threshold; >= 0 when emergent
	Emergent  bool
	Reason    string
}

// Phi is the emergence flag as 0 or 1.
func (d GateDecision) Phi() int {
	if d.Emergent {
		return 1
	}
	return 0
}

// #endregion gate-decision
