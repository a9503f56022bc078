// Package outputpath manages the canonical on-disk naming, discovery,
// sanitization and baseline rotation of Valgrind tool artifact files.
package outputpath

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// Kind tags which file family a ToolOutputPath addresses.
type Kind int

const (
	KindOut Kind = iota
	KindOldOut
	KindLog
	KindOldLog
	KindBase
	KindBaseLog
)

// Modifiers carries the optional pid/thread/part/bbv components that are
// included in a canonical filename only when more than one value of that
// kind exists within the family.
type Modifiers struct {
	Pid  *uint32
	Tid  *uint32
	Part *uint64
	// BBKind is "bb" or "pc" for exp-bbv artifacts only.
	BBKind string
}

// ToolOutputPath is the typed descriptor for one logical artifact file
// family: never parse a filename back into its parts after construction,
// always carry the typed components and compute the filename.
type ToolOutputPath struct {
	Kind         Kind
	Tool         metric.Tool
	BaselineName model.BaselineName
	Directory    string
	Stem         string
	Modifiers    Modifiers
}

// New builds a ToolOutputPath, validating the baseline name when the kind
// requires one.
func New(dir string, tool metric.Tool, stem string, kind Kind, baselineName string) (*ToolOutputPath, error) {
	top := &ToolOutputPath{Kind: kind, Tool: tool, Directory: dir, Stem: stem}
	if kind == KindBase || kind == KindBaseLog {
		name, err := model.ParseBaselineName(baselineName)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeConfigError, "invalid baseline name", err)
		}
		top.BaselineName = name
	}
	return top, nil
}

// extension returns "out" or "log" for the kind.
func (p *ToolOutputPath) extension() string {
	switch p.Kind {
	case KindLog, KindOldLog, KindBaseLog:
		return "log"
	default:
		return "out"
	}
}

// suffix returns the trailing ".old" or ".base@<name>" segment, or "".
func (p *ToolOutputPath) suffix() string {
	switch p.Kind {
	case KindOldOut, KindOldLog:
		return ".old"
	case KindBase, KindBaseLog:
		return ".base@" + p.BaselineName.String()
	default:
		return ""
	}
}

// Filename renders the canonical filename for p, omitting pid/tid/part
// components that are unique within their family (callers pass widths of
// 0 to omit a component entirely).
func (p *ToolOutputPath) Filename(pidWidth, tidWidth, partWidth int) string {
	var b strings.Builder
	b.WriteString(p.Tool.ID())
	b.WriteByte('.')
	b.WriteString(p.Stem)

	if p.Modifiers.Pid != nil && pidWidth > 0 {
		fmt.Fprintf(&b, ".%0*d", pidWidth, *p.Modifiers.Pid)
	}
	if p.Modifiers.Tid != nil && tidWidth > 0 {
		fmt.Fprintf(&b, ".t%0*d", tidWidth, *p.Modifiers.Tid)
	}
	if p.Modifiers.Part != nil && partWidth > 0 {
		fmt.Fprintf(&b, ".p%0*d", partWidth, *p.Modifiers.Part)
	}
	if p.Modifiers.BBKind != "" {
		b.WriteByte('.')
		b.WriteString(p.Modifiers.BBKind)
	}
	b.WriteByte('.')
	b.WriteString(p.extension())
	b.WriteString(p.suffix())
	return b.String()
}

// Path joins the directory and the rendered filename.
func (p *ToolOutputPath) Path(pidWidth, tidWidth, partWidth int) string {
	return filepath.Join(p.Directory, p.Filename(pidWidth, tidWidth, partWidth))
}

// originalNamePattern returns the regex matching a tool's raw (pre-sanitize)
// output filenames, as produced directly by valgrind before this package
// renames them to the canonical grammar.
func originalNamePattern(tool metric.Tool, stem string) *regexp.Regexp {
	q := regexp.QuoteMeta(stem)
	switch tool {
	case metric.ToolBBV:
		return regexp.MustCompile(`^` + regexp.QuoteMeta(tool.ID()) + `\.` + q + `(\.\d+)?\.(bb|pc)\.(out|log)$`)
	case metric.ToolCallgrind:
		return regexp.MustCompile(`^callgrind\.out(\.\d+)?(-\d+)?$|^` + q + `$`)
	default:
		return regexp.MustCompile(`^` + regexp.QuoteMeta(tool.ID()) + `\.` + q + `(\..+)?\.(out|log)$`)
	}
}

// fileGroup is one (out|log, baseline, pid, tid, part) bucket discovered
// during sanitization.
type fileGroup struct {
	kind Kind
	pid  *uint32
	tid  *uint32
	part *uint64
	path string
}

// CallgrindHeaderReader reads the pid/thread/part header fields out of a
// raw callgrind output file. Implemented in internal/parser/callgrind to
// avoid an import cycle; injected here since sanitization needs
// authoritative header data rather than trusting valgrind's own filenames.
type CallgrindHeaderReader func(path string) (pid *uint32, tid *uint32, part *uint64, err error)

// Sanitize renames every raw file in dir belonging to tool/stem into the
// canonical grammar, grouping callgrind files by header-derived
// (pid,tid,part) rather than filename, as valgrind's own naming is
// unreliable across versions. Returns the canonical paths written.
func Sanitize(dir string, tool metric.Tool, stem string, readHeader CallgrindHeaderReader) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.CodeIOError, "failed to list output directory", err)
	}

	pattern := originalNamePattern(tool, stem)
	var groups []fileGroup

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, ".old") || strings.Contains(name, ".base@") {
			continue
		}
		if !pattern.MatchString(name) {
			continue
		}
		full := filepath.Join(dir, name)
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		kind := KindOut
		if strings.HasSuffix(name, ".log") {
			kind = KindLog
		}

		var pid, tid *uint32
		var part *uint64
		if tool == metric.ToolCallgrind && kind == KindOut && readHeader != nil {
			pid, tid, part, err = readHeader(full)
			if err != nil {
				return nil, apperr.Wrap(apperr.CodeParseError, "failed to read callgrind header for sanitization", err)
			}
		}
		groups = append(groups, fileGroup{kind: kind, pid: pid, tid: tid, part: part, path: full})
	}

	// Canonicalize iteration order: lexicographic
	// on the original filename, so the tie-break is reproducible.
	sort.Slice(groups, func(i, j int) bool { return groups[i].path < groups[j].path })

	pidWidth := decimalWidth(countDistinct(groups, func(g fileGroup) (uint64, bool) {
		if g.pid == nil {
			return 0, false
		}
		return uint64(*g.pid), true
	}))
	tidWidth := decimalWidth(countDistinct(groups, func(g fileGroup) (uint64, bool) {
		if g.tid == nil {
			return 0, false
		}
		return uint64(*g.tid), true
	}))
	partWidth := decimalWidth(countDistinct(groups, func(g fileGroup) (uint64, bool) {
		if g.part == nil {
			return 0, false
		}
		return *g.part, true
	}))

	var written []string
	for _, g := range groups {
		top := &ToolOutputPath{
			Kind:      g.kind,
			Tool:      tool,
			Directory: dir,
			Stem:      stem,
			Modifiers: Modifiers{Pid: g.pid, Tid: g.tid, Part: g.part},
		}
		dest := top.Path(pidWidth, tidWidth, partWidth)
		if dest != g.path {
			if err := os.Rename(g.path, dest); err != nil {
				return nil, apperr.Wrap(apperr.CodeIOError, "failed to rename sanitized output", err)
			}
		}
		written = append(written, dest)
	}
	return written, nil
}

func countDistinct(groups []fileGroup, get func(fileGroup) (uint64, bool)) int {
	seen := map[uint64]struct{}{}
	for _, g := range groups {
		if v, ok := get(g); ok {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// decimalWidth returns 0 if count <= 1 (component omitted, unique in
// family) otherwise the decimal digit width needed for count-1 (the
// largest zero-based index).
func decimalWidth(count int) int {
	if count <= 1 {
		return 0
	}
	return len(strconv.Itoa(count - 1))
}

// RotateBaseline shifts current output files to their old/base-rotated
// form before a new invocation writes into `*.out`. In Old mode, any
// existing `*.old` is cleared first, then current files are renamed to
// add `.old`. In save-baseline mode, any existing `*.base@name` is cleared
// first and current files are left untouched (they become the baseline in
// place).
func RotateBaseline(dir string, tool metric.Tool, stem string, kind model.BaselineKind) error {
	if kind.IsNamed() {
		return clearGlob(dir, tool, stem, "base@"+kind.Name.String())
	}

	if err := clearGlob(dir, tool, stem, "old"); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.CodeIOError, "failed to list output directory", err)
	}
	prefix := tool.ID() + "." + stem
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.Contains(name, ".old") || strings.Contains(name, ".base@") {
			continue
		}
		if !strings.HasSuffix(name, ".out") && !strings.HasSuffix(name, ".log") {
			continue
		}
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, name+".old")); err != nil {
			return apperr.Wrap(apperr.CodeIOError, "failed to rotate baseline", err)
		}
	}
	return nil
}

func clearGlob(dir string, tool metric.Tool, stem, suffix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.CodeIOError, "failed to list output directory", err)
	}
	prefix := tool.ID() + "." + stem
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, "."+suffix) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return apperr.Wrap(apperr.CodeIOError, "failed to clear previous baseline file", err)
			}
		}
	}
	return nil
}

// LogPath derives the .log sibling of an .out path, preserving pid and
// baseline segments.
func LogPath(outPath string) string {
	if strings.HasSuffix(outPath, ".out") {
		return strings.TrimSuffix(outPath, ".out") + ".log"
	}
	if idx := strings.Index(outPath, ".out."); idx >= 0 {
		return outPath[:idx] + ".log" + outPath[idx+len(".out"):]
	}
	return outPath
}

// RealPaths enumerates the concrete files on disk matching kind's pattern
// for (tool, stem) within dir.
func RealPaths(dir string, tool metric.Tool, stem string, kind Kind) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.CodeIOError, "failed to list output directory", err)
	}
	prefix := tool.ID() + "." + stem
	var want string
	switch kind {
	case KindOut:
		want = ".out"
	case KindOldOut:
		want = ".out.old"
	case KindLog:
		want = ".log"
	case KindOldLog:
		want = ".log.old"
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		switch kind {
		case KindOut:
			if strings.HasSuffix(name, ".out") {
				out = append(out, filepath.Join(dir, name))
			}
		case KindLog:
			if strings.HasSuffix(name, ".log") {
				out = append(out, filepath.Join(dir, name))
			}
		default:
			if strings.HasSuffix(name, want) {
				out = append(out, filepath.Join(dir, name))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
