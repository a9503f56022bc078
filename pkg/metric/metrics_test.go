package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_SetGetOrder(t *testing.T) {
	m := New[EventKind]()
	m.Set(Dr, IntValue(1))
	m.Set(Ir, IntValue(2))
	m.Set(Dr, IntValue(3)) // overwrite, must not duplicate key

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []EventKind{Dr, Ir}, m.Keys())

	v, ok := m.Get(Dr)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), v.Int)
}

func TestMetrics_Union_LeftFirst(t *testing.T) {
	a := New[EventKind]()
	a.Set(Ir, IntValue(1))
	a.Set(Dr, IntValue(2))

	b := New[EventKind]()
	b.Set(Dr, IntValue(99))
	b.Set(Dw, IntValue(3))

	u := a.Union(b)
	assert.Equal(t, []EventKind{Ir, Dr, Dw}, u.Keys())

	v, _ := u.Get(Dr)
	assert.Equal(t, uint64(2), v.Int, "union keeps left operand's value on key collision")
}

func TestMetrics_Clone_Independent(t *testing.T) {
	a := New[EventKind]()
	a.Set(Ir, IntValue(1))

	b := a.Clone()
	b.Set(Dr, IntValue(2))

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, b.Len())
}

func TestValue_AsFloat(t *testing.T) {
	assert.Equal(t, 42.0, IntValue(42).AsFloat())
	assert.Equal(t, 3.5, FloatValue(3.5).AsFloat())
}

func TestValue_JSONRoundTrip(t *testing.T) {
	iv := IntValue(7)
	data, err := iv.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "7", string(data))

	var parsed Value
	assert.NoError(t, parsed.UnmarshalJSON(data))
	assert.True(t, parsed.IsInt)
	assert.Equal(t, uint64(7), parsed.Int)

	fv := FloatValue(92.5)
	data, err = fv.MarshalJSON()
	assert.NoError(t, err)

	var parsedFloat Value
	assert.NoError(t, parsedFloat.UnmarshalJSON(data))
	assert.False(t, parsedFloat.IsInt)
	assert.Equal(t, 92.5, parsedFloat.Float)
}
