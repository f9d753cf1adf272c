package class

import "fmt"

// #region class

// Class is one of the four universality classes of cognitive dynamics.
type Class string

const (
	GrammarStructural Class = "grammar_structural" // high S, moderate D (brains)
	FastPropagation   Class = "fast_propagation"   // high S, low M (social graphs)
	SlowMemory        Class = "slow_memory"        // high M (institutions)
	DenseDynamical    Class = "dense_dynamical"    // low S, high D (transformers)
)

// All lists the classes in threshold order.
var All = [...]Class{GrammarStructural, FastPropagation, SlowMemory, DenseDynamical}

// Label returns the display name.
func (c Class) Label() string {
	switch c {
	case GrammarStructural:
		return "Grammar-Structural"
	case FastPropagation:
		return "Fast-Propagation"
	case SlowMemory:
		return "Slow-Memory"
	case DenseDynamical:
		return "Dense-Dynamical"
	}
	return string(c)
}

// Valid reports whether c is one of the four classes.
func (c Class) Valid() bool {
	_, ok := index(c)
	return ok
}

// Parse accepts either the identifier or the display label.
func Parse(s string) (Class, error) {
	for _, c := range All {
		if s == string(c) || s == c.Label() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown universality class %q", s)
}

func index(c Class) (int, bool) {
	for i, k := range All {
		if k == c {
			return i, true
		}
	}
	return 0, false
}

// #endregion

// #region thresholds

// Thresholds maps each class to its critical capacity. It is a value type
// over a fixed array, so copies cannot alter the table they came from.
type Thresholds struct {
	values [len(All)]float64
}

// DefaultThresholds returns the C_critical table.
func DefaultThresholds() Thresholds {
	return Thresholds{values: [len(All)]float64{
		0.003, // grammar_structural
		0.005, // fast_propagation
		0.007, // slow_memory
		0.010, // dense_dynamical
	}}
}

// Lookup returns the threshold for c. Unknown classes panic: the class set
// is closed and every value produced by this package is valid.
func (t Thresholds) Lookup(c Class) float64 {
	i, ok := index(c)
	if !ok {
		panic(fmt.Sprintf("class: no threshold for %q", c))
	}
	return t.values[i]
}

// Map returns a copy of the table keyed by class.
func (t Thresholds) Map() map[Class]float64 {
	out := make(map[Class]float64, len(All))
	for i, c := range All {
		out[c] = t.values[i]
	}
	return out
}

// #endregion
