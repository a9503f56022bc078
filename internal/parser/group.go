// Package parser holds the grouping and zip logic shared by every
// per-tool parser: the pid -> part -> thread hierarchy used to diff a new
// run against an old one leaf by leaf.
package parser

import (
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// Output is one parsed artifact segment: a header plus its native metrics.
type Output[K comparable] struct {
	Header  model.ProfileInfo
	Metrics *metric.Metrics[K]
	Path    string
	Details *string
}

// leafKey identifies one pid/part/thread leaf. The three levels are always
// consumed together to select a single artifact segment, so they flatten
// to one comparable composite key rather than three nested maps.
type leafKey struct {
	pid       int
	part      uint64
	hasPart   bool
	thread    int
	hasThread bool
}

func keyOf(h model.ProfileInfo) leafKey {
	k := leafKey{pid: h.Pid}
	if h.Part != nil {
		k.part, k.hasPart = *h.Part, true
	}
	if h.Thread != nil {
		k.thread, k.hasThread = *h.Thread, true
	}
	return k
}

// Zip groups new and old outputs hierarchically by (pid, part, thread),
// zips the two leaf sequences with EitherOrBoth semantics, and builds one
// ProfilePart per leaf plus the saturating total across every leaf.
func Zip[K comparable](tool metric.Tool, newOutputs, oldOutputs []Output[K], lift func(*metric.Summary[K]) *metric.Summary[metric.Kind]) model.ProfileData {
	newByKey := make(map[leafKey]Output[K], len(newOutputs))
	newKeys := make([]leafKey, 0, len(newOutputs))
	for _, o := range newOutputs {
		k := keyOf(o.Header)
		newByKey[k] = o
		newKeys = append(newKeys, k)
	}

	oldByKey := make(map[leafKey]Output[K], len(oldOutputs))
	oldKeys := make([]leafKey, 0, len(oldOutputs))
	for _, o := range oldOutputs {
		k := keyOf(o.Header)
		oldByKey[k] = o
		oldKeys = append(oldKeys, k)
	}

	zipped := metric.Zip(newKeys, oldKeys)

	var parts []model.ProfilePart
	total := metric.NewToolSummary(tool, metric.NewSummary[metric.Kind]())

	for _, eob := range zipped {
		k, _ := eob.LeftValue()
		if !eob.HasLeft() {
			k, _ = eob.RightValue()
		}

		var details metric.EitherOrBoth[model.ProfileInfo]
		var summary *metric.Summary[K]

		switch {
		case eob.IsBoth():
			n, o := newByKey[k], oldByKey[k]
			details = metric.Both(n.Header, o.Header)
			summary = metric.SummaryFromDiff(n.Metrics, o.Metrics)
		case eob.HasLeft():
			n := newByKey[k]
			details = metric.Left(n.Header)
			summary = metric.SummaryFromMetrics(n.Metrics, true)
		default:
			o := oldByKey[k]
			details = metric.Right(o.Header)
			summary = metric.SummaryFromMetrics(o.Metrics, false)
		}

		ts := metric.NewToolSummary(tool, lift(summary))
		parts = append(parts, model.NewProfilePart(details, ts))
		total = total.Add(ts)
	}

	return model.ProfileData{
		Parts: parts,
		Total: model.ProfileTotal{Summary: total, Regressions: nil},
	}
}
