package laws

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/metalaw/internal/resource"
)

// #region law

// Law is one of the five qualitative cognitive laws.
type Law string

const (
	StructuralMorality        Law = "structural_morality"
	ObservationIndependence   Law = "observation_independence"
	CausalTime                Law = "causal_time"
	MemoryPersistence         Law = "memory_persistence"
	StructuralDifferentiation Law = "structural_differentiation"
)

// All lists the laws in canonical reporting order.
var All = [...]Law{
	StructuralMorality,
	ObservationIndependence,
	CausalTime,
	MemoryPersistence,
	StructuralDifferentiation,
}

// Name returns the display name.
func (l Law) Name() string {
	switch l {
	case StructuralMorality:
		return "Structural Morality"
	case ObservationIndependence:
		return "Observation Independence"
	case CausalTime:
		return "Causal Time"
	case MemoryPersistence:
		return "Memory Persistence Law"
	case StructuralDifferentiation:
		return "Structural Differentiation"
	}
	return string(l)
}

// Description is the one-line statement of the law.
func (l Law) Description() string {
	switch l {
	case StructuralMorality:
		return "Morality emerges from network topology, not external rules"
	case ObservationIndependence:
		return "Emergence is observer-independent"
	case CausalTime:
		return "Time is causal density, not clock ticks"
	case MemoryPersistence:
		return "Memory enables pattern formation and cognition"
	case StructuralDifferentiation:
		return "Hubs, bridges, and clusters enable efficient cognition"
	}
	return ""
}

// Valid reports whether l is one of the five laws.
func (l Law) Valid() bool {
	return ordinal(l) >= 0
}

// Parse accepts the identifier or the display name, ignoring case.
// Configuration keys arrive lowercased.
func Parse(s string) (Law, error) {
	s = strings.TrimSpace(s)
	for _, l := range All {
		if strings.EqualFold(s, string(l)) || strings.EqualFold(s, l.Name()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown law %q", s)
}

func ordinal(l Law) int {
	for i, k := range All {
		if k == l {
			return i
		}
	}
	return -1
}

// #endregion

// #region condition

// Op is a comparison operator.
type Op string

const (
	OpGT Op = ">"
	OpGE Op = ">="
	OpLT Op = "<"
	OpLE Op = "<="
)

// Condition compares one field of a vector against a constant.
type Condition struct {
	Field resource.Field `json:"field" mapstructure:"field"`
	Op    Op             `json:"op" mapstructure:"op"`
	Value float64        `json:"value" mapstructure:"value"`
}

// Holds evaluates the condition against v.
func (c Condition) Holds(v resource.Vector) bool {
	x, ok := v.Get(c.Field)
	if !ok {
		return false
	}
	switch c.Op {
	case OpGT:
		return x > c.Value
	case OpGE:
		return x >= c.Value
	case OpLT:
		return x < c.Value
	case OpLE:
		return x <= c.Value
	}
	return false
}

func (c Condition) validate() error {
	if !c.Field.Valid() {
		return fmt.Errorf("unknown field %q", c.Field)
	}
	switch c.Op {
	case OpGT, OpGE, OpLT, OpLE:
		return nil
	}
	return fmt.Errorf("unknown operator %q", c.Op)
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Field, c.Op, c.Value)
}

// Predicate is a conjunction of conditions. An empty predicate always holds.
type Predicate []Condition

// Holds reports whether every condition holds for v.
func (p Predicate) Holds(v resource.Vector) bool {
	for _, c := range p {
		if !c.Holds(v) {
			return false
		}
	}
	return true
}

func (p Predicate) String() string {
	if len(p) == 0 {
		return "always"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " && ")
}

// #endregion

// #region set

// Set is an ordered set of laws, kept in canonical order.
type Set []Law

// Contains reports whether l is in the set.
func (s Set) Contains(l Law) bool {
	for _, k := range s {
		if k == l {
			return true
		}
	}
	return false
}

// Names returns the display names in set order.
func (s Set) Names() []string {
	out := make([]string, len(s))
	for i, l := range s {
		out[i] = l.Name()
	}
	return out
}

// #endregion
