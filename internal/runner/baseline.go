package runner

import (
	"path/filepath"
	"sort"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// BaselineOption selects which baseline a run compares against, mirroring
// the runner's `--baseline <name>`/`--save-baseline <name>` CLI surface:
// at most one of the two names is set.
type BaselineOption struct {
	Load *string
	Save *string
}

// Kind resolves the CLI option into the BaselineKind the rest of the
// runner operates on. An absent Load name compares against the usual
// `*.old` rotation; Save takes precedence when both happen to be given,
// since writing a named baseline implies comparing against that same
// name on subsequent runs.
func (o BaselineOption) Kind() (model.BaselineKind, error) {
	name := o.Save
	if name == nil {
		name = o.Load
	}
	if name == nil {
		return model.NewOldBaseline(), nil
	}
	parsed, err := model.ParseBaselineName(*name)
	if err != nil {
		return model.BaselineKind{}, apperr.Wrap(apperr.CodeConfigError, "invalid baseline name", err)
	}
	return model.NewNamedBaseline(parsed), nil
}

// oldArtifactPaths enumerates the old-side files an artifact kind (out or
// log) resolves to for kind: the rotated `*.old` family, or a named
// `*.base@<name>` family which outputpath.RealPaths does not enumerate
// since that family is addressed by name rather than by rotation state.
func oldArtifactPaths(dir string, tool metric.Tool, stem string, kind model.BaselineKind, isLog bool) ([]string, error) {
	ext := "out"
	if isLog {
		ext = "log"
	}
	if !kind.IsNamed() {
		pattern := filepath.Join(dir, tool.ID()+"."+stem+"*."+ext+".old")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeIOError, "failed to glob old baseline artifacts", err)
		}
		sort.Strings(matches)
		return matches, nil
	}

	pattern := filepath.Join(dir, tool.ID()+"."+stem+"*."+ext+".base@"+kind.Name.String())
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIOError, "failed to glob named baseline artifacts", err)
	}
	sort.Strings(matches)
	return matches, nil
}
