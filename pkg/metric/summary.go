package metric

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Summary is an ordered mapping from a metric key to its MetricsDiff,
// a per-metric diff summary. Composition is additive: adding two
// summaries unions their key sets, saturating-adding overlapping entries.
type Summary[K comparable] struct {
	order []K
	diffs map[K]MetricsDiff
}

// NewSummary creates an empty Summary.
func NewSummary[K comparable]() *Summary[K] {
	return &Summary[K]{diffs: make(map[K]MetricsDiff)}
}

// SummaryFromMetrics builds a one-sided Summary from a single Metrics
// container, used when only a "new" or only an "old" run is available.
func SummaryFromMetrics[K comparable](m *Metrics[K], isNew bool) *Summary[K] {
	s := NewSummary[K]()
	if m == nil {
		return s
	}
	m.Each(func(k K, v Value) {
		var eob EitherOrBoth[Value]
		if isNew {
			eob = Left(v)
		} else {
			eob = Right(v)
		}
		s.Set(k, NewOneSidedDiff(eob))
	})
	return s
}

// SummaryFromDiff builds a two-sided Summary comparing newM against oldM,
// unioning their keys in newM-first order per the Metrics union invariant.
func SummaryFromDiff[K comparable](newM, oldM *Metrics[K]) *Summary[K] {
	s := NewSummary[K]()
	union := newM.Union(oldM)
	union.Each(func(k K, _ Value) {
		nv, hasNew := newM.Get(k)
		ov, hasOld := oldM.Get(k)
		switch {
		case hasNew && hasOld:
			s.Set(k, NewDiff(nv, ov))
		case hasNew:
			s.Set(k, NewOneSidedDiff(Left(nv)))
		case hasOld:
			s.Set(k, NewOneSidedDiff(Right(ov)))
		}
	})
	return s
}

// Len returns the number of entries.
func (s *Summary[K]) Len() int { return len(s.order) }

// Get returns the diff for key k.
func (s *Summary[K]) Get(k K) (MetricsDiff, bool) {
	v, ok := s.diffs[k]
	return v, ok
}

// Set inserts or overwrites k, appending to the order if new.
func (s *Summary[K]) Set(k K, d MetricsDiff) {
	if _, exists := s.diffs[k]; !exists {
		s.order = append(s.order, k)
	}
	s.diffs[k] = d
}

// Keys returns the keys in insertion order.
func (s *Summary[K]) Keys() []K { return s.order }

// Each iterates entries in insertion order.
func (s *Summary[K]) Each(fn func(k K, d MetricsDiff)) {
	for _, k := range s.order {
		fn(k, s.diffs[k])
	}
}

// Add returns the union of s and other, saturating-adding any metric
// present on both sides. Order is s's keys first, then other's new keys,
// matching the Metrics union ordering invariant.
func (s *Summary[K]) Add(other *Summary[K]) *Summary[K] {
	out := NewSummary[K]()
	if s != nil {
		s.Each(func(k K, d MetricsDiff) { out.Set(k, d) })
	}
	if other != nil {
		other.Each(func(k K, d MetricsDiff) {
			if existing, ok := out.Get(k); ok {
				out.Set(k, existing.Add(d))
			} else {
				out.Set(k, d)
			}
		})
	}
	return out
}

// MarshalJSON renders the summary as a JSON object with keys in insertion
// order, mirroring an ordered-map serialization rather than Go's default
// alphabetically-sorted map encoding.
func (s *Summary[K]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(fmt.Sprint(k))
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(s.diffs[k])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CallgrindKindSummary lifts a Summary[EventKind] (as produced by the
// Callgrind/Cachegrind parsers) into the tagged Summary[Kind] shape a
// ToolSummary carries.
func CallgrindKindSummary(s *Summary[EventKind]) *Summary[Kind] {
	out := NewSummary[Kind]()
	if s != nil {
		s.Each(func(k EventKind, d MetricsDiff) { out.Set(NewCallgrindKind(k), d) })
	}
	return out
}

// CachegrindKindSummary lifts a Summary[CachegrindMetric] into the tagged
// Summary[Kind] shape.
func CachegrindKindSummary(s *Summary[CachegrindMetric]) *Summary[Kind] {
	out := NewSummary[Kind]()
	if s != nil {
		s.Each(func(k CachegrindMetric, d MetricsDiff) { out.Set(NewCachegrindKind(k), d) })
	}
	return out
}

// DhatKindSummary lifts a Summary[DhatMetric] into the tagged Summary[Kind] shape.
func DhatKindSummary(s *Summary[DhatMetric]) *Summary[Kind] {
	out := NewSummary[Kind]()
	if s != nil {
		s.Each(func(k DhatMetric, d MetricsDiff) { out.Set(NewDhatKind(k), d) })
	}
	return out
}

// ErrorKindSummary lifts a Summary[ErrorMetric] into the tagged Summary[Kind] shape.
func ErrorKindSummary(s *Summary[ErrorMetric]) *Summary[Kind] {
	out := NewSummary[Kind]()
	if s != nil {
		s.Each(func(k ErrorMetric, d MetricsDiff) { out.Set(NewErrorKind(k), d) })
	}
	return out
}

// ToolSummary pairs a Summary[Kind] with the Tool that produced it, the
// the tool-tagged metric summary. Addition across mismatched tools is a no-op
// that returns the receiver unchanged.
type ToolSummary struct {
	Tool    Tool
	Summary *Summary[Kind]
}

// NewToolSummary builds a ToolSummary.
func NewToolSummary(tool Tool, s *Summary[Kind]) ToolSummary {
	return ToolSummary{Tool: tool, Summary: s}
}

// Add combines two ToolSummarys for the same tool. Mismatched tools return
// the receiver unchanged.
func (ts ToolSummary) Add(other ToolSummary) ToolSummary {
	if ts.Tool != other.Tool {
		return ts
	}
	return ToolSummary{Tool: ts.Tool, Summary: ts.Summary.Add(other.Summary)}
}
