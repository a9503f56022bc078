package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDiff(t *testing.T) {
	tests := []struct {
		name        string
		newVal      Value
		oldVal      Value
		wantPct     float64
		wantFactor  float64
	}{
		{"both zero", IntValue(0), IntValue(0), 0, 1},
		{"grew from zero", IntValue(100), IntValue(0), math.Inf(1), math.Inf(1)},
		{"shrank to zero", IntValue(0), IntValue(100), 0, 0}, // overridden below
		{"ten percent growth", IntValue(1100), IntValue(1000), 10, 1.1},
		{"shrink", IntValue(500), IntValue(1000), -50, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "shrank to zero" {
				d := NewDiff(tt.newVal, tt.oldVal)
				assert.Equal(t, -100.0, d.Diffs.DiffPct)
				assert.Equal(t, -math.Inf(1), d.Diffs.Factor)
				return
			}
			d := NewDiff(tt.newVal, tt.oldVal)
			assert.Equal(t, tt.wantPct, d.Diffs.DiffPct)
			assert.Equal(t, tt.wantFactor, d.Diffs.Factor)
		})
	}
}

func TestMetricsDiff_AddSaturates(t *testing.T) {
	a := NewDiff(IntValue(math.MaxUint64), IntValue(1))
	b := NewDiff(IntValue(math.MaxUint64), IntValue(1))

	sum := a.Add(b)
	n, ok := sum.New()
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), n.Int)
}

func TestMetricsDiff_AddCommutative(t *testing.T) {
	a := NewDiff(IntValue(10), IntValue(5))
	b := NewOneSidedDiff(Left(IntValue(20)))

	ab := a.Add(b)
	ba := b.Add(a)

	an, _ := ab.New()
	bn, _ := ba.New()
	assert.Equal(t, an.Int, bn.Int)
}

func TestDiff_JSONRoundTrip_Infinite(t *testing.T) {
	d := Diff{DiffPct: math.Inf(1), Factor: math.Inf(-1)}

	data, err := d.MarshalJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"diff_pct":"+Inf"`)

	var out Diff
	assert.NoError(t, out.UnmarshalJSON(data))
	assert.True(t, math.IsInf(out.DiffPct, 1))
	assert.True(t, math.IsInf(out.Factor, -1))
}

func TestMetricsDiff_OneSided(t *testing.T) {
	d := NewOneSidedDiff(Left(IntValue(42)))
	assert.Nil(t, d.Diffs)
	n, ok := d.New()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), n.Int)
	_, ok = d.Old()
	assert.False(t, ok)
}
