package outputpath

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// allTools lists every tool family whose artifacts baseline management
// scans for, independent of which tool a given bench actually ran.
var allTools = []metric.Tool{
	metric.ToolCallgrind,
	metric.ToolCachegrind,
	metric.ToolDHAT,
	metric.ToolMemcheck,
	metric.ToolHelgrind,
	metric.ToolDRD,
	metric.ToolMassif,
	metric.ToolBBV,
}

// ListBaselineNames scans dir for every named baseline (`*.base@NAME`)
// belonging to stem, across all tools, without re-running valgrind.
func ListBaselineNames(dir, stem string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.CodeIOError, "failed to list output directory", err)
	}

	seen := map[string]struct{}{}
	for _, e := range entries {
		name := e.Name()
		idx := strings.Index(name, ".base@")
		if idx < 0 {
			continue
		}
		if !strings.Contains(name, "."+stem) && stem != "" {
			continue
		}
		seen[name[idx+len(".base@"):]] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// PromoteBaseline renames stem's current (`*.out`/`*.log`) artifacts for
// every tool found in dir into `*.base@name`, replacing any baseline
// already saved under that name. It does not invoke valgrind; it only
// repoints already-produced artifacts.
func PromoteBaseline(dir, stem, name string) error {
	if _, err := model.ParseBaselineName(name); err != nil {
		return apperr.Wrap(apperr.CodeConfigError, "invalid baseline name", err)
	}

	for _, tool := range allTools {
		outPaths, err := RealPaths(dir, tool, stem, KindOut)
		if err != nil {
			return err
		}
		logPaths, err := RealPaths(dir, tool, stem, KindLog)
		if err != nil {
			return err
		}
		if len(outPaths) == 0 && len(logPaths) == 0 {
			continue
		}
		if err := clearGlob(dir, tool, stem, "base@"+name); err != nil {
			return err
		}
		if err := renameToBaseline(outPaths, name); err != nil {
			return err
		}
		if err := renameToBaseline(logPaths, name); err != nil {
			return err
		}
	}
	return nil
}

func renameToBaseline(paths []string, name string) error {
	for _, p := range paths {
		dest := p + ".base@" + name
		if err := os.Rename(p, dest); err != nil {
			return apperr.Wrap(apperr.CodeIOError, "failed to promote baseline artifact", err)
		}
	}
	return nil
}

// RemoveBaseline deletes every `*.base@name` artifact for stem across all
// tools in dir.
func RemoveBaseline(dir, stem, name string) error {
	removed := false
	for _, tool := range allTools {
		matches, err := filepath.Glob(filepath.Join(dir, tool.ID()+"."+stem+"*.base@"+name))
		if err != nil {
			return apperr.Wrap(apperr.CodeIOError, "failed to glob named baseline artifacts", err)
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil {
				return apperr.Wrap(apperr.CodeIOError, "failed to remove baseline artifact", err)
			}
			removed = true
		}
	}
	if !removed {
		return apperr.New(apperr.CodeIOError, "no baseline named "+name+" found for "+stem)
	}
	return nil
}
