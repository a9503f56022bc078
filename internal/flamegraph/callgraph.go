package flamegraph

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
)

// nativeEventNames maps every native (non-derived) EventKind to its
// "events:" line name, the same declared order Callgrind emits.
var nativeEventNames = map[string]metric.EventKind{}

func init() {
	for _, k := range []metric.EventKind{
		metric.Ir, metric.Dr, metric.Dw,
		metric.I1mr, metric.D1mr, metric.D1mw,
		metric.ILmr, metric.DLmr, metric.DLmw,
		metric.SysCount, metric.SysTime, metric.SysCpuTime,
		metric.Ge,
		metric.Bc, metric.Bcm, metric.Bi, metric.Bim,
		metric.ILdmr, metric.DLdmr, metric.DLdmw,
		metric.AcCost1, metric.AcCost2, metric.SpLoss1, metric.SpLoss2,
	} {
		nativeEventNames[k.String()] = k
	}
}

// ParseCallGraph reads a Callgrind output file's call-graph records
// (fn=/cfn=/calls= blocks) and folds them into a Node tree for the
// requested event, rooted at sentinel (or "program" if empty).
//
// Each fn= block's own cost lines are folded as the function's self
// cost; each cfn= call edge's cost line is folded one level deeper, as
// that callee's cost at this call site. This captures direct
// caller/callee cost attribution but does not recursively merge a
// callee's own descendants from its separate fn= record elsewhere in the
// file, so the resulting tree is at most two levels deep below the root.
func ParseCallGraph(path string, event metric.EventKind, sentinel string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeParseError, "failed to open call-graph file "+path, err)
	}
	defer f.Close()

	rootName := sentinel
	if rootName == "" {
		rootName = "program"
	}
	builder := NewNodeBuilder(rootName)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var events []metric.EventKind
	eventIdx := -1
	var currentFn, pendingCallee string
	expectCostAfterCalls := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			pendingCallee = ""
			expectCostAfterCalls = false
		case strings.HasPrefix(line, "events:"):
			events = parseEventList(strings.TrimSpace(strings.TrimPrefix(line, "events:")))
			for i, e := range events {
				if e == event {
					eventIdx = i
					break
				}
			}
		case strings.HasPrefix(line, "fn="):
			currentFn = strings.TrimSpace(strings.TrimPrefix(line, "fn="))
			pendingCallee = ""
			expectCostAfterCalls = false
		case strings.HasPrefix(line, "cfn="):
			pendingCallee = strings.TrimSpace(strings.TrimPrefix(line, "cfn="))
		case strings.HasPrefix(line, "calls="):
			expectCostAfterCalls = pendingCallee != ""
		default:
			if eventIdx < 0 || currentFn == "" {
				continue
			}
			val, ok := parseCostLine(line, eventIdx, len(events))
			if !ok {
				continue
			}
			if expectCostAfterCalls {
				builder.AddStack([]string{currentFn, pendingCallee}, val)
				pendingCallee = ""
				expectCostAfterCalls = false
			} else {
				builder.AddStack([]string{currentFn}, val)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeParseError, "failed reading call-graph file "+path, err)
	}

	return builder.Build(), nil
}

func parseEventList(s string) []metric.EventKind {
	fields := strings.Fields(s)
	out := make([]metric.EventKind, 0, len(fields))
	for _, f := range fields {
		if k, ok := nativeEventNames[f]; ok {
			out = append(out, k)
		} else {
			out = append(out, -1)
		}
	}
	return out
}

// parseCostLine extracts the integer cost for eventIdx from a cost line
// that may carry a leading address/position field before numCost trailing
// numeric fields.
func parseCostLine(line string, eventIdx, numCost int) (int64, bool) {
	fields := strings.Fields(line)
	if len(fields) < numCost || numCost == 0 {
		return 0, false
	}
	costs := fields[len(fields)-numCost:]
	if eventIdx >= len(costs) {
		return 0, false
	}
	v, err := strconv.ParseInt(costs[eventIdx], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
