// Package genericlog extracts free-form detail paragraphs (leak reports,
// error blocks) from a tool's log for display, without attempting to
// derive metrics from them.
package genericlog

import (
	"bufio"
	"os"
	"strings"

	"github.com/vgbench/runner/pkg/collections"
	apperr "github.com/vgbench/runner/pkg/errors"
)

// stripPrefix strips valgrind's "==<pid>== " line prefix, leaving the
// free-form message body; a bare "==<pid>==" line becomes empty.
func stripPrefix(line string) string {
	if !strings.HasPrefix(line, "==") {
		return line
	}
	if idx := strings.Index(line[2:], "=="); idx >= 0 {
		return strings.TrimPrefix(line[idx+4:], " ")
	}
	return line
}

// ExtractDetails reads path and returns the free-form paragraphs suitable
// for attaching to a ProfileInfo's Details field, one paragraph per blank
// line separated run.
func ExtractDetails(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOError, "failed to open log for detail extraction", err)
	}
	defer f.Close()

	var paragraphs []string
	current := collections.GetStringSlice()
	defer collections.PutStringSlice(current)

	flush := func() {
		if len(*current) > 0 {
			paragraphs = append(paragraphs, strings.Join(*current, "\n"))
			*current = (*current)[:0]
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := stripPrefix(scanner.Text())
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "ERROR SUMMARY:") {
			continue
		}
		*current = append(*current, line)
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeParseError, "failed scanning log for detail extraction", err)
	}
	return paragraphs, nil
}

// Join combines extracted paragraphs into a single Details string, or
// returns nil when there is nothing to attach.
func Join(paragraphs []string) *string {
	if len(paragraphs) == 0 {
		return nil
	}
	s := strings.Join(paragraphs, "\n\n")
	return &s
}
