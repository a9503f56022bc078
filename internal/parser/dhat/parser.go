// Package dhat parses DHAT's JSON heap-summary artifact.
package dhat

import (
	"encoding/json"
	"os"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/internal/parser"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// document mirrors the fields DHAT's JSON artifact declares. Counter
// fields are pointers so an absent field can be told apart from zero; the
// ones listed in mandatory must be present, the other pointer fields are
// optional. pid and cmd are not checked for presence.
type document struct {
	Pid          int    `json:"pid"`
	Cmd          string `json:"cmd"`
	TotalUnits   *uint64 `json:"twSamplingFactor,omitempty"`
	TotalBytes   *uint64 `json:"totalBytes"`
	TotalBlocks  *uint64 `json:"totalBlocks"`
	TotalEvents  *uint64 `json:"totalEvents,omitempty"`
	AtTGmax      *gmax   `json:"atTGmax"`
	AtTEnd       *gmax   `json:"atTEnd"`
	Reads        *uint64 `json:"reads,omitempty"`
	Writes       *uint64 `json:"writes,omitempty"`
	TotalLifetimes *uint64 `json:"totalLifetimesBytes,omitempty"`
	MaxBytes     *uint64 `json:"maxBytes"`
	MaxBlocks    *uint64 `json:"maxBlocks"`
}

type gmax struct {
	Bytes  uint64 `json:"bytes"`
	Blocks uint64 `json:"blocks"`
}

var mandatory = []string{"totalBytes", "totalBlocks", "atTGmax", "atTEnd", "maxBytes", "maxBlocks"}

// Parse reads a DHAT JSON artifact and maps its documented fields into
// Metrics[DhatMetric], validating that the mandatory fields are present.
func Parse(path string) (parser.Output[metric.DhatMetric], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parser.Output[metric.DhatMetric]{}, apperr.Wrap(apperr.CodeIOError, "failed to read dhat output", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return parser.Output[metric.DhatMetric]{}, apperr.Wrap(apperr.CodeParseError, "failed to decode dhat json", err)
	}

	if doc.TotalBytes == nil || doc.TotalBlocks == nil || doc.AtTGmax == nil || doc.AtTEnd == nil || doc.MaxBytes == nil || doc.MaxBlocks == nil {
		return parser.Output[metric.DhatMetric]{}, apperr.New(apperr.CodeParseError, "dhat json missing mandatory fields: "+joinNames(mandatory))
	}

	m := metric.New[metric.DhatMetric]()
	set := func(k metric.DhatMetric, v *uint64) {
		if v != nil {
			m.Set(k, metric.IntValue(*v))
		}
	}
	set(metric.DhatTotalUnits, doc.TotalUnits)
	set(metric.DhatTotalEvents, doc.TotalEvents)
	m.Set(metric.DhatTotalBytes, metric.IntValue(*doc.TotalBytes))
	m.Set(metric.DhatTotalBlocks, metric.IntValue(*doc.TotalBlocks))
	m.Set(metric.DhatAtTGmaxBytes, metric.IntValue(doc.AtTGmax.Bytes))
	m.Set(metric.DhatAtTGmaxBlocks, metric.IntValue(doc.AtTGmax.Blocks))
	m.Set(metric.DhatAtTEndBytes, metric.IntValue(doc.AtTEnd.Bytes))
	m.Set(metric.DhatAtTEndBlocks, metric.IntValue(doc.AtTEnd.Blocks))
	set(metric.DhatReadsBytes, doc.Reads)
	set(metric.DhatWritesBytes, doc.Writes)
	set(metric.DhatTotalLifetimes, doc.TotalLifetimes)
	m.Set(metric.DhatMaximumBytes, metric.IntValue(*doc.MaxBytes))
	m.Set(metric.DhatMaximumBlocks, metric.IntValue(*doc.MaxBlocks))

	info := model.ProfileInfo{Command: doc.Cmd, Pid: doc.Pid, Path: path}
	return parser.Output[metric.DhatMetric]{Header: info, Metrics: m, Path: path}, nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
