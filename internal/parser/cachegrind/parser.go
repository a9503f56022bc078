// Package cachegrind parses Cachegrind's summary output: a header
// followed by a single totals line over the nine native cache-simulation
// counters, the strict subset of Callgrind's event set that Cachegrind
// ever reports.
package cachegrind

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/internal/parser"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

var eventNameToKind = map[string]metric.CachegrindMetric{
	"Ir": metric.Ir, "Dr": metric.Dr, "Dw": metric.Dw,
	"I1mr": metric.I1mr, "D1mr": metric.D1mr, "D1mw": metric.D1mw,
	"ILmr": metric.ILmr, "DLmr": metric.DLmr, "DLmw": metric.DLmw,
}

// Parse reads a cachegrind output file and returns its totals as native
// cache-simulation counters plus derived metrics.
func Parse(path string) (parser.Output[metric.CachegrindMetric], error) {
	f, err := os.Open(path)
	if err != nil {
		return parser.Output[metric.CachegrindMetric]{}, apperr.Wrap(apperr.CodeIOError, "failed to open cachegrind output", err)
	}
	defer f.Close()

	var pid int
	var command string
	var events []metric.CachegrindMetric

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		switch key {
		case "pid":
			pid, _ = strconv.Atoi(val)
		case "cmd":
			command = val
		case "events":
			for _, name := range strings.Fields(val) {
				if k, ok := eventNameToKind[name]; ok {
					events = append(events, k)
				}
			}
		}
	}
	if len(events) == 0 {
		return parser.Output[metric.CachegrindMetric]{}, apperr.New(apperr.CodeParseError, "cachegrind output missing events: line")
	}

	native := metric.New[metric.CachegrindMetric]()
	for _, k := range events {
		native.Set(k, metric.IntValue(0))
	}

	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(trimmed, "summary:") || strings.HasPrefix(trimmed, "totals:") {
			_, rest, _ := strings.Cut(trimmed, ":")
			fields := strings.Fields(rest)
			for i, k := range events {
				if i >= len(fields) {
					break
				}
				if n, err := strconv.ParseUint(fields[i], 10, 64); err == nil {
					native.Set(k, metric.IntValue(n))
				}
			}
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return parser.Output[metric.CachegrindMetric]{}, apperr.Wrap(apperr.CodeParseError, "failed scanning cachegrind output", err)
	}

	metric.DeriveCallgrindMetrics(native)

	info := model.ProfileInfo{Command: command, Pid: pid, Path: path}
	return parser.Output[metric.CachegrindMetric]{Header: info, Metrics: native, Path: path}, nil
}
