package synthesis

import (
	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
)

// #region input
// Input is a candidate measurement plus opaque reporting tags.
type Input struct {
	Name     string            `json:"name,omitempty"`
	S        float64           `json:"S"`
	D        float64           `json:"D"`
	M        float64           `json:"M"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// #endregion input

// #region result
// Result is the complete prediction for one input.
type Result struct {
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	S float64 `json:"S"`
	D float64 `json:"D"`
	M float64 `json:"M"`

	Capacity          float64     `json:"capacity"`
	UniversalityClass class.Class `json:"universality_class"`
	Rule              string      `json:"rule"`
	Threshold         float64     `json:"threshold"`
	Emergent          bool        `json:"emergent"`
	ActiveLaws        laws.Set    `json:"active_laws"`
}

// Phi is the emergence flag as 0 or 1.
func (r Result) Phi() int {
	if r.Emergent {
		return 1
	}
	return 0
}

// #endregion result

// #region observer
// Observer is notified after every prediction. Implementations must be safe
// for concurrent use and must not block for long.
type Observer interface {
	Observed(Result)
	Rejected(Input, error)
}

// #endregion observer
