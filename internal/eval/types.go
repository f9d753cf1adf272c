package eval

import (
	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
)

// #region summary
// Summary aggregates a set of predictions.
type Summary struct {
	Total         int                 `json:"total_networks"`
	Emergent      int                 `json:"cognitive_networks"`
	Inert         int                 `json:"non_cognitive_networks"`
	EmergenceRate float64             `json:"cognitive_rate"`
	ByClass       map[class.Class]int `json:"by_class"`
	ByLaw         map[laws.Law]int    `json:"by_law"`
	Capacity      CapacityStats       `json:"capacity"`
}

// CapacityStats describes the capacity distribution. All zero when the
// summary is empty.
type CapacityStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}
// #endregion summary
