package laws

import "github.com/danielpatrickdp/metalaw/internal/resource"

// Activator derives the active laws of a vector from a predicate table.
type Activator struct {
	table Table
}

// NewActivator creates an activator over table.
func NewActivator(table Table) *Activator {
	return &Activator{table: table}
}

// Activate returns the laws whose predicates hold for v, in canonical order.
func (a *Activator) Activate(v resource.Vector) Set {
	active := make(Set, 0, len(All))
	for i, l := range All {
		if a.table.predicates[i].Holds(v) {
			active = append(active, l)
		}
	}
	return active
}

// Table returns the activator's predicate table.
func (a *Activator) Table() Table {
	return a.table
}
