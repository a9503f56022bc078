package metric

import "encoding/json"

// Value is the scalar a metric carries: either an integer counter or a
// float ratio, distinguished by the Kind's declared ValueType.
type Value struct {
	Int   uint64
	Float float64
	IsInt bool
}

// IntValue builds an integer-typed Value.
func IntValue(v uint64) Value { return Value{Int: v, IsInt: true} }

// FloatValue builds a float-typed Value.
func FloatValue(v float64) Value { return Value{Float: v, IsInt: false} }

// AsFloat returns the value widened to float64, regardless of which arm is set.
func (v Value) AsFloat() float64 {
	if v.IsInt {
		return float64(v.Int)
	}
	return v.Float
}

// MarshalJSON renders the active arm as a bare JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsInt {
		return json.Marshal(v.Int)
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON parses a bare JSON number, preferring the integer arm when
// the value has no fractional part.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f == float64(uint64(f)) && f >= 0 {
		*v = IntValue(uint64(f))
	} else {
		*v = FloatValue(f)
	}
	return nil
}

// Metrics is an insertion-ordered mapping from a comparable key type K to a
// scalar Value. Ordering is semantically meaningful: it drives the display
// order of the terminal formatter and the expansion order of metric groups.
// Duplicate keys are disallowed by construction (Set overwrites in place
// without reordering).
type Metrics[K comparable] struct {
	keys   []K
	values map[K]Value
}

// New creates an empty Metrics container.
func New[K comparable]() *Metrics[K] {
	return &Metrics[K]{values: make(map[K]Value)}
}

// Len returns the number of entries.
func (m *Metrics[K]) Len() int { return len(m.keys) }

// Get returns the value for k and whether it is present.
func (m *Metrics[K]) Get(k K) (Value, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Set inserts k=v, appending k to the order if it is new.
func (m *Metrics[K]) Set(k K, v Value) {
	if _, exists := m.values[k]; !exists {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by callers.
func (m *Metrics[K]) Keys() []K { return m.keys }

// Each calls fn for every entry in insertion order.
func (m *Metrics[K]) Each(fn func(k K, v Value)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Union returns a new Metrics whose order is the receiver's keys first,
// followed by any keys from other not already present. This is the
// "left operand first" ordering invariant from the data model.
func (m *Metrics[K]) Union(other *Metrics[K]) *Metrics[K] {
	out := New[K]()
	if m != nil {
		m.Each(func(k K, v Value) { out.Set(k, v) })
	}
	if other != nil {
		other.Each(func(k K, v Value) {
			if _, exists := out.Get(k); !exists {
				out.Set(k, v)
			}
		})
	}
	return out
}

// Clone returns a shallow, independently-ordered copy.
func (m *Metrics[K]) Clone() *Metrics[K] {
	out := New[K]()
	if m == nil {
		return out
	}
	m.Each(func(k K, v Value) { out.Set(k, v) })
	return out
}
