package resource

// #region vector
// Vector is a validated (S, D, M) triple. The zero value is the origin,
// which is in range; all other values come from New.
type Vector struct {
	s, d, m float64
}

// New validates S, D and M in that order and returns the first violation.
func New(s, d, m float64) (Vector, error) {
	for _, c := range []struct {
		field Field
		value float64
	}{
		{FieldS, s},
		{FieldD, d},
		{FieldM, m},
	} {
		if !inUnitInterval(c.value) {
			return Vector{}, &InputRangeError{Field: c.field, Value: c.value}
		}
	}
	return Vector{s: s, d: d, m: m}, nil
}

// MustNew is New for literals known to be in range. It panics otherwise.
func MustNew(s, d, m float64) Vector {
	v, err := New(s, d, m)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Vector) S() float64 { return v.s }
func (v Vector) D() float64 { return v.d }
func (v Vector) M() float64 { return v.m }

// Get returns the coordinate or capacity named by f.
func (v Vector) Get(f Field) (float64, bool) {
	switch f {
	case FieldS:
		return v.s, true
	case FieldD:
		return v.d, true
	case FieldM:
		return v.m, true
	case FieldCapacity:
		return v.Capacity(), true
	}
	return 0, false
}

// #endregion vector

// #region capacity
// Capacity is S×D×M, evaluated left to right.
func (v Vector) Capacity() float64 {
	return v.s * v.d * v.m
}

// Capacity computes the capacity of v.
func Capacity(v Vector) float64 {
	return v.Capacity()
}

// #endregion capacity

// NaN fails both comparisons and is rejected.
func inUnitInterval(x float64) bool {
	return x >= 0 && x <= 1
}
