package metric

import (
	"encoding/json"
	"math"
	"strconv"
)

// Diff holds the computed percentage change and factor between a new and
// an old value. It is present on a MetricsDiff iff both sides are present.
type Diff struct {
	DiffPct float64
	Factor  float64
}

// MetricsDiff pairs a possibly one-sided (new, old) value with the derived
// Diff, following the EitherOrBoth shape.
type MetricsDiff struct {
	Values EitherOrBoth[Value] `json:"metrics"`
	Diffs  *Diff               `json:"diffs,omitempty"`
}

// NewDiff computes a MetricsDiff from a new and old Value, both present.
//
//   - diff_pct = (new-old)/old*100
//   - factor   = new/old if new>=old else -(old/new)
//   - old==0 && new==0  -> 0%, 1x
//   - old==0 && new!=0  -> +-inf (sign of new)
func NewDiff(newVal, oldVal Value) MetricsDiff {
	n, o := newVal.AsFloat(), oldVal.AsFloat()

	var d Diff
	switch {
	case o == 0 && n == 0:
		d.DiffPct = 0
		d.Factor = 1
	case o == 0:
		if n > 0 {
			d.DiffPct = math.Inf(1)
			d.Factor = math.Inf(1)
		} else {
			d.DiffPct = math.Inf(-1)
			d.Factor = math.Inf(-1)
		}
	default:
		d.DiffPct = (n - o) / o * 100
		if n >= o {
			d.Factor = n / o
		} else {
			d.Factor = -(o / n)
		}
	}

	return MetricsDiff{Values: Both(newVal, oldVal), Diffs: &d}
}

// NewOneSidedDiff builds a MetricsDiff with only one side present and no
// Diffs (diffs is present iff both sides are present).
func NewOneSidedDiff(v EitherOrBoth[Value]) MetricsDiff {
	return MetricsDiff{Values: v}
}

// New returns the "new" (left) value if present.
func (d MetricsDiff) New() (Value, bool) { return d.Values.LeftValue() }

// Old returns the "old" (right) value if present.
func (d MetricsDiff) Old() (Value, bool) { return d.Values.RightValue() }

// addValue saturating-adds two Values of the same declared type. Integer
// addition saturates at math.MaxUint64 rather than wrapping; float addition
// is ordinary IEEE-754 addition (which already saturates to +/-Inf).
func addValue(a, b Value) Value {
	if a.IsInt && b.IsInt {
		sum := a.Int + b.Int
		if sum < a.Int { // overflow
			sum = math.MaxUint64
		}
		return IntValue(sum)
	}
	return FloatValue(a.AsFloat() + b.AsFloat())
}

// FormatFloatJSON renders f the way the JSON summary writer serializes any
// float that may be infinite: as a string, so that +Inf/-Inf/NaN survive a
// round-trip through a type system that only has a numeric JSON type for
// finite values.
func FormatFloatJSON(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseFloatJSON parses a string produced by FormatFloatJSON back to float64.
func ParseFloatJSON(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

type diffJSON struct {
	DiffPct string `json:"diff_pct"`
	Factor  string `json:"factor"`
}

// MarshalJSON renders DiffPct/Factor as strings per the JSON summary format.
func (d Diff) MarshalJSON() ([]byte, error) {
	return json.Marshal(diffJSON{
		DiffPct: FormatFloatJSON(d.DiffPct),
		Factor:  FormatFloatJSON(d.Factor),
	})
}

// UnmarshalJSON parses the string-encoded form back into Diff.
func (d *Diff) UnmarshalJSON(data []byte) error {
	var raw diffJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pct, err := ParseFloatJSON(raw.DiffPct)
	if err != nil {
		return err
	}
	factor, err := ParseFloatJSON(raw.Factor)
	if err != nil {
		return err
	}
	d.DiffPct = pct
	d.Factor = factor
	return nil
}

// Add composes two MetricsDiffs for the same metric: element-wise
// saturating-add new-to-new and old-to-old, per the EitherOrBoth truth
// table, then recompute Diffs if both sides end up present. Saturating
// addition is commutative by construction and never panics for any input.
func (d MetricsDiff) Add(other MetricsDiff) MetricsDiff {
	combined := Combine(d.Values, other.Values, addValue)
	out := MetricsDiff{Values: combined}
	if combined.IsBoth() {
		n, _ := combined.LeftValue()
		o, _ := combined.RightValue()
		return NewDiff(n, o)
	}
	return out
}
