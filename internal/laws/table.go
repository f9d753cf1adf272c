package laws

import (
	"fmt"

	"github.com/danielpatrickdp/metalaw/internal/resource"
)

// #region presets

const (
	// PresetDocumented follows the qualitative ranges published with the
	// equation. It is the default.
	PresetDocumented = "documented"
	// PresetReference reproduces the predicates of the reference model.
	PresetReference = "reference"
)

// DocumentedPredicates returns the default predicate set.
func DocumentedPredicates() map[Law]Predicate {
	return map[Law]Predicate{
		StructuralDifferentiation: {{Field: resource.FieldS, Op: OpGT, Value: 0.5}},
		StructuralMorality:        {{Field: resource.FieldS, Op: OpGT, Value: 0.5}},
		CausalTime:                {{Field: resource.FieldD, Op: OpGT, Value: 0.3}},
		MemoryPersistence:         {{Field: resource.FieldM, Op: OpGT, Value: 0.05}},
		ObservationIndependence:   {},
	}
}

// ReferencePredicates returns the predicate set of the reference model.
func ReferencePredicates() map[Law]Predicate {
	return map[Law]Predicate{
		StructuralMorality: {
			{Field: resource.FieldS, Op: OpGT, Value: 0.3},
			{Field: resource.FieldD, Op: OpGT, Value: 0.2},
		},
		ObservationIndependence:   {{Field: resource.FieldCapacity, Op: OpGT, Value: 0.001}},
		CausalTime:                {{Field: resource.FieldD, Op: OpGT, Value: 0.15}},
		MemoryPersistence:         {{Field: resource.FieldM, Op: OpGT, Value: 0.02}},
		StructuralDifferentiation: {{Field: resource.FieldS, Op: OpGT, Value: 0.4}},
	}
}

// PresetPredicates returns the predicate set for a named preset.
func PresetPredicates(name string) (map[Law]Predicate, error) {
	switch name {
	case "", PresetDocumented:
		return DocumentedPredicates(), nil
	case PresetReference:
		return ReferencePredicates(), nil
	}
	return nil, fmt.Errorf("unknown law preset %q", name)
}

// #endregion

// #region table

// Table is a validated, immutable predicate per law.
type Table struct {
	predicates [len(All)]Predicate
}

// NewTable validates predicates and copies them. Every law must be present.
func NewTable(predicates map[Law]Predicate) (Table, error) {
	var t Table
	for l := range predicates {
		if !l.Valid() {
			return Table{}, fmt.Errorf("law table: unknown law %q", l)
		}
	}
	for i, l := range All {
		p, ok := predicates[l]
		if !ok {
			return Table{}, fmt.Errorf("law table: missing predicate for %s", l)
		}
		for _, c := range p {
			if err := c.validate(); err != nil {
				return Table{}, fmt.Errorf("law table: %s: %w", l, err)
			}
		}
		cp := make(Predicate, len(p))
		copy(cp, p)
		t.predicates[i] = cp
	}
	return t, nil
}

// DefaultTable returns the documented table.
func DefaultTable() Table {
	t, err := NewTable(DocumentedPredicates())
	if err != nil {
		panic(err)
	}
	return t
}

// Predicate returns a copy of the predicate for l.
func (t Table) Predicate(l Law) Predicate {
	i := ordinal(l)
	if i < 0 {
		return nil
	}
	cp := make(Predicate, len(t.predicates[i]))
	copy(cp, t.predicates[i])
	return cp
}

// Predicates returns a copy of the full table.
func (t Table) Predicates() map[Law]Predicate {
	out := make(map[Law]Predicate, len(All))
	for _, l := range All {
		out[l] = t.Predicate(l)
	}
	return out
}

// #endregion
