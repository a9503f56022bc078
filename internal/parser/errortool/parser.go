// Package errortool scrapes the textual log of an error-reporting tool
// (Memcheck, Helgrind, DRD) for its "ERROR SUMMARY" line.
package errortool

import (
	"bufio"
	"os"
	"regexp"
	"strconv"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/internal/parser"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// summaryLine matches: "ERROR SUMMARY: N errors from M contexts (suppressed: X from Y)"
var summaryLine = regexp.MustCompile(`ERROR SUMMARY:\s*(\d+)\s+errors?\s+from\s+(\d+)\s+contexts?\s*\(suppressed:\s*(\d+)\s+from\s+(\d+)\)`)

var pidLine = regexp.MustCompile(`^==(\d+)==`)
var cmdLine = regexp.MustCompile(`Command:\s*(.+)$`)

// Parse scrapes path for the ERROR SUMMARY line (plus the pid and command
// from the log prefix), returning the four error counters as
// Metrics[ErrorMetric]. Free-form detail paragraphs are not read here;
// package genericlog extracts those.
func Parse(path string) (parser.Output[metric.ErrorMetric], error) {
	f, err := os.Open(path)
	if err != nil {
		return parser.Output[metric.ErrorMetric]{}, apperr.Wrap(apperr.CodeIOError, "failed to open error-tool log", err)
	}
	defer f.Close()

	var pid int
	var command string
	var found bool
	m := metric.New[metric.ErrorMetric]()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if pm := pidLine.FindStringSubmatch(line); pm != nil && pid == 0 {
			pid, _ = strconv.Atoi(pm[1])
		}
		if cm := cmdLine.FindStringSubmatch(line); cm != nil {
			command = cm[1]
		}
		if sm := summaryLine.FindStringSubmatch(line); sm != nil {
			errs, _ := strconv.ParseUint(sm[1], 10, 64)
			contexts, _ := strconv.ParseUint(sm[2], 10, 64)
			suppErrs, _ := strconv.ParseUint(sm[3], 10, 64)
			suppContexts, _ := strconv.ParseUint(sm[4], 10, 64)
			m.Set(metric.Errors, metric.IntValue(errs))
			m.Set(metric.Contexts, metric.IntValue(contexts))
			m.Set(metric.SuppressedErrors, metric.IntValue(suppErrs))
			m.Set(metric.SuppressedContexts, metric.IntValue(suppContexts))
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return parser.Output[metric.ErrorMetric]{}, apperr.Wrap(apperr.CodeParseError, "failed scanning error-tool log", err)
	}
	if !found {
		return parser.Output[metric.ErrorMetric]{}, apperr.New(apperr.CodeParseError, "error-tool log missing ERROR SUMMARY line")
	}

	info := model.ProfileInfo{Command: command, Pid: pid, Path: path}
	return parser.Output[metric.ErrorMetric]{Header: info, Metrics: m, Path: path}, nil
}
