// Package callgrind parses Callgrind's textual output format: a header
// block followed by body lines accumulating the nine native
// cache-simulation counters (plus whichever optional counters the
// "events:" line declares), gated by an optional sentinel entry point.
package callgrind

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/internal/parser"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// header holds the fields extracted from a callgrind output file's header
// block, read authoritatively rather than trusted from the filename.
type header struct {
	pid       int
	parentPid *int
	thread    *int
	part      *uint64
	command   string
	events    []metric.EventKind
}

var eventNameToKind = map[string]metric.EventKind{
	"Ir": metric.Ir, "Dr": metric.Dr, "Dw": metric.Dw,
	"I1mr": metric.I1mr, "D1mr": metric.D1mr, "D1mw": metric.D1mw,
	"ILmr": metric.ILmr, "DLmr": metric.DLmr, "DLmw": metric.DLmw,
	"sysCount": metric.SysCount, "sysTime": metric.SysTime, "sysCpuTime": metric.SysCpuTime,
	"Ge": metric.Ge,
	"Bc": metric.Bc, "Bcm": metric.Bcm, "Bi": metric.Bi, "Bim": metric.Bim,
	"ILdmr": metric.ILdmr, "DLdmr": metric.DLdmr, "DLdmw": metric.DLdmw,
	"AcCost1": metric.AcCost1, "AcCost2": metric.AcCost2,
	"SpLoss1": metric.SpLoss1, "SpLoss2": metric.SpLoss2,
}

func parseHeaderLine(h *header, line string) {
	key, val, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "pid":
		h.pid, _ = strconv.Atoi(val)
	case "part":
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			h.part = &n
		}
	case "thread":
		if n, err := strconv.Atoi(val); err == nil {
			h.thread = &n
		}
	case "cmd":
		h.command = val
	case "events":
		for _, name := range strings.Fields(val) {
			if k, ok := eventNameToKind[name]; ok {
				h.events = append(h.events, k)
			}
		}
	}
}

// ReadHeader reads only the pid/thread/part header fields of a raw
// callgrind output file, for use by internal/outputpath's sanitization
// pass (which needs authoritative values rather than the unreliable
// filename produced directly by valgrind).
func ReadHeader(path string) (pid *uint32, tid *uint32, part *uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	h := &header{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		parseHeaderLine(h, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, err
	}

	p := uint32(h.pid)
	pid = &p
	if h.thread != nil {
		t := uint32(*h.thread)
		tid = &t
	}
	part = h.part
	return pid, tid, part, nil
}

// Parse reads one callgrind output file. When sentinel is non-empty, only
// body lines within the `fn=<sentinel>` block are accumulated; otherwise
// the final `summary:`/`totals:` line is used. Derived metrics are
// computed after native counters are collected.
func Parse(path string, sentinel string) (parser.Output[metric.EventKind], error) {
	f, err := os.Open(path)
	if err != nil {
		return parser.Output[metric.EventKind]{}, apperr.Wrap(apperr.CodeIOError, "failed to open callgrind output", err)
	}
	defer f.Close()
	return parseReader(f, path, sentinel)
}

func parseReader(r io.Reader, path, sentinel string) (parser.Output[metric.EventKind], error) {
	h := &header{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	// Header block.
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		parseHeaderLine(h, line)
	}
	if len(h.events) == 0 {
		return parser.Output[metric.EventKind]{}, apperr.New(apperr.CodeParseError, "callgrind output missing events: line")
	}

	native := metric.New[metric.EventKind]()
	for _, k := range h.events {
		native.Set(k, metric.IntValue(0))
	}

	inEntryPoint := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if sentinel != "" {
			if strings.HasPrefix(trimmed, "fn=") {
				inEntryPoint = strings.Contains(trimmed, sentinel)
				continue
			}
			if trimmed == "" {
				inEntryPoint = false
				continue
			}
		}

		if sentinel == "" && (strings.HasPrefix(trimmed, "summary:") || strings.HasPrefix(trimmed, "totals:")) {
			_, rest, _ := strings.Cut(trimmed, ":")
			applyCounts(native, h.events, strings.Fields(rest))
			continue
		}

		if inEntryPoint {
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				if _, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
					applyCounts(native, h.events, fields[1:])
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return parser.Output[metric.EventKind]{}, apperr.Wrap(apperr.CodeParseError, "failed scanning callgrind output", err)
	}

	metric.DeriveCallgrindMetrics(native)

	info := model.ProfileInfo{
		Command:   h.command,
		Pid:       h.pid,
		ParentPid: h.parentPid,
		Thread:    h.thread,
		Part:      h.part,
		Path:      path,
	}

	return parser.Output[metric.EventKind]{Header: info, Metrics: native, Path: path}, nil
}

// applyCounts adds each numeric field, in events order, to native. Missing
// trailing counts default to zero.
func applyCounts(native *metric.Metrics[metric.EventKind], events []metric.EventKind, fields []string) {
	for i, k := range events {
		if i >= len(fields) {
			break
		}
		n, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			continue
		}
		cur, _ := native.Get(k)
		native.Set(k, metric.IntValue(cur.Int+n))
	}
}

// ParseSummary is the reduced variant that skips straight to the final
// `summary:`/`totals:` line when only the total is needed.
func ParseSummary(path string) (parser.Output[metric.EventKind], error) {
	return Parse(path, "")
}
