package flamegraph

import (
	"context"
	"os"
	"path/filepath"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
	"github.com/vgbench/runner/pkg/parallel"
)

// Generator produces regular/base/differential SVGs from Callgrind
// call-graph output, one EventKind at a time, in parallel.
type Generator struct {
	pool *parallel.WorkerPool[metric.EventKind, genResult]
}

// NewGenerator creates a Generator whose per-event-kind rendering passes
// run across a worker pool sized by parallel.DefaultPoolConfig.
func NewGenerator() *Generator {
	return &Generator{pool: parallel.NewWorkerPool[metric.EventKind, genResult](parallel.DefaultPoolConfig())}
}

type genResult struct {
	summary model.FlamegraphSummary
	err     error
}

// Generate renders, for each cfg.EventKinds entry, the SVGs cfg.Kind
// selects (Regular/Differential/All/None) from newPath's call-graph (and
// oldPath's, when differential output is requested), writing them under
// outDir and returning one FlamegraphSummary per event kind.
func (g *Generator) Generate(ctx context.Context, newPath, oldPath, outDir, sentinel string, cfg Config) ([]model.FlamegraphSummary, error) {
	if cfg.Kind == KindNone || len(cfg.EventKinds) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, apperr.Wrap(apperr.CodeIOError, "failed to create flamegraph output directory", err)
	}

	results := g.pool.ExecuteFunc(ctx, cfg.EventKinds, func(ctx context.Context, event metric.EventKind) (genResult, error) {
		summary, err := g.generateOne(newPath, oldPath, outDir, sentinel, event, cfg)
		return genResult{summary: summary, err: err}, err
	})

	out := make([]model.FlamegraphSummary, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			return nil, r.Error
		}
		out = append(out, r.Result.summary)
	}
	return out, nil
}

func (g *Generator) generateOne(newPath, oldPath, outDir, sentinel string, event metric.EventKind, cfg Config) (model.FlamegraphSummary, error) {
	summary := model.FlamegraphSummary{EventKind: event}

	wantRegular := cfg.Kind == KindRegular || cfg.Kind == KindAll
	wantDiff := cfg.Kind == KindDifferential || cfg.Kind == KindAll

	if wantRegular {
		newRoot, err := ParseCallGraph(newPath, event, sentinel)
		if err != nil {
			return summary, err
		}
		path := filepath.Join(outDir, event.String()+".svg")
		if err := os.WriteFile(path, []byte(RenderRegular(newRoot, cfg)), 0644); err != nil {
			return summary, apperr.Wrap(apperr.CodeIOError, "failed to write regular flamegraph", err)
		}
		summary.RegularPath = &path

		if oldPath != "" {
			oldRoot, err := ParseCallGraph(oldPath, event, sentinel)
			if err == nil {
				basePath := filepath.Join(outDir, event.String()+".base.svg")
				if err := os.WriteFile(basePath, []byte(RenderRegular(oldRoot, cfg)), 0644); err == nil {
					summary.BasePath = &basePath
				}
			}
		}
	}

	if wantDiff && oldPath != "" {
		newRoot, err := ParseCallGraph(newPath, event, sentinel)
		if err != nil {
			return summary, err
		}
		oldRoot, err := ParseCallGraph(oldPath, event, sentinel)
		if err != nil {
			return summary, err
		}
		path := filepath.Join(outDir, event.String()+".diff.svg")
		if err := os.WriteFile(path, []byte(RenderDifferential(newRoot, oldRoot, cfg)), 0644); err != nil {
			return summary, apperr.Wrap(apperr.CodeIOError, "failed to write differential flamegraph", err)
		}
		summary.DiffPath = &path
	}

	return summary, nil
}
