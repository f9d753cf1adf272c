package eval

import (
	"github.com/cockroachdb/errors"
	"github.com/montanaflynn/stats"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// #region summarize
// Summarize counts emergent and inert predictions, the class and law
// distributions, and capacity statistics. Every class and law appears in the
// maps, with zero counts where nothing matched.
func Summarize(results []synthesis.Result) (Summary, error) {
	s := Summary{
		Total:   len(results),
		ByClass: make(map[class.Class]int, len(class.All)),
		ByLaw:   make(map[laws.Law]int, len(laws.All)),
	}
	for _, c := range class.All {
		s.ByClass[c] = 0
	}
	for _, l := range laws.All {
		s.ByLaw[l] = 0
	}

	capacities := make(stats.Float64Data, 0, len(results))
	for _, r := range results {
		if r.Emergent {
			s.Emergent++
		} else {
			s.Inert++
		}
		s.ByClass[r.UniversalityClass]++
		for _, l := range r.ActiveLaws {
			s.ByLaw[l]++
		}
		capacities = append(capacities, r.Capacity)
	}
	if s.Total == 0 {
		return s, nil
	}
	s.EmergenceRate = float64(s.Emergent) / float64(s.Total)

	cs, err := capacityStats(capacities)
	if err != nil {
		return Summary{}, err
	}
	s.Capacity = cs
	return s, nil
}

func capacityStats(data stats.Float64Data) (CapacityStats, error) {
	var cs CapacityStats
	var err error
	if cs.Mean, err = data.Mean(); err != nil {
		return CapacityStats{}, errors.Wrap(err, "capacity mean")
	}
	if cs.Median, err = data.Median(); err != nil {
		return CapacityStats{}, errors.Wrap(err, "capacity median")
	}
	if cs.StdDev, err = data.StandardDeviation(); err != nil {
		return CapacityStats{}, errors.Wrap(err, "capacity stddev")
	}
	if cs.Min, err = data.Min(); err != nil {
		return CapacityStats{}, errors.Wrap(err, "capacity min")
	}
	if cs.Max, err = data.Max(); err != nil {
		return CapacityStats{}, errors.Wrap(err, "capacity max")
	}
	return cs, nil
}

// #endregion summarize
