package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/vgbench/runner/internal/flamegraph"
	"github.com/vgbench/runner/internal/formatter"
	"github.com/vgbench/runner/internal/orchestrator"
	"github.com/vgbench/runner/internal/outputpath"
	"github.com/vgbench/runner/internal/parser"
	"github.com/vgbench/runner/internal/parser/cachegrind"
	"github.com/vgbench/runner/internal/parser/callgrind"
	"github.com/vgbench/runner/internal/parser/dhat"
	"github.com/vgbench/runner/internal/parser/errortool"
	"github.com/vgbench/runner/internal/parser/genericlog"
	"github.com/vgbench/runner/internal/regression"
	"github.com/vgbench/runner/internal/sandbox"
	"github.com/vgbench/runner/internal/storage"
	"github.com/vgbench/runner/internal/toolargs"
	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
	"github.com/vgbench/runner/pkg/utils"
)

// RunMeta carries the invocation-level metadata passed alongside a spec
// payload: everything the spec tree itself does not encode, supplied on
// the runner's command line instead.
type RunMeta struct {
	ProjectRoot   string
	PackageDir    string
	BenchmarkFile string
	BenchmarkExe  string
	ModulePath    string
	LibraryName   string
	TargetDir     string
	Baseline      BaselineOption
	RegressionFailFast bool
	DefaultSoftLimitPct float64
	DefaultHardLimit    float64
	ValgrindBin   string
	AllowASLR     bool
	CLIArgs       []string
}

// Driver runs a decoded spec tree's groups and benches to completion,
// producing one BenchmarkSummary per bench and archiving artifacts.
type Driver struct {
	Storage storage.Storage
	Logger  utils.Logger
	Clock   utils.Clock
	Flame   *flamegraph.Generator
}

// NewDriver builds a Driver. store may be nil to disable artifact
// archival.
func NewDriver(store storage.Storage, logger utils.Logger, clock utils.Clock) *Driver {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &Driver{Storage: store, Logger: logger, Clock: clock, Flame: flamegraph.NewGenerator()}
}

// benchJob is the per-bench unit the state machine executes, abstracting
// over the library/binary benchmark distinction: a library bench re-execs
// the benchmark binary itself with a `--iai-run` selector, a binary bench
// launches an arbitrary external command.
type benchJob struct {
	kind         model.BenchmarkKind
	functionName string
	id           *string
	details      *string
	cfg          resolved
	command      func(ctx context.Context) (*exec.Cmd, *orchestrator.Readiness, error)
	// binCommand is the wire Command a binary bench was built from, used
	// to derive its stdio configuration. Nil for library benches, which
	// always inherit the runner's own stdio.
	binCommand *Command
}

// RunLibraryGroups runs every group and bench of a library-benchmark spec
// tree, returning one BenchmarkSummary per bench in declaration order.
func (d *Driver) RunLibraryGroups(ctx context.Context, groups *LibraryBenchmarkGroups, meta RunMeta) ([]*model.BenchmarkSummary, error) {
	var summaries []*model.BenchmarkSummary

	for _, group := range groups.Groups {
		if group.HasSetup {
			if err := d.runLifecycleHook(ctx, meta, group.ID, "setup"); err != nil {
				return summaries, err
			}
		}

		for gi, lib := range group.LibraryBenchmarks {
			for bi, bench := range lib.Benches {
				cfg := mergeConfig(&groups.Config, group.Config, lib.Config, bench.Config)
				job := benchJob{
					kind:         model.BenchmarkKindLibrary,
					functionName: bench.FunctionName,
					id:           bench.ID,
					cfg:          cfg,
				}
				groupIdx, benchIdx := gi, bi
				job.command = func(ctx context.Context) (*exec.Cmd, *orchestrator.Readiness, error) {
					args := []string{"--iai-run", group.ID, fmt.Sprint(groupIdx), fmt.Sprint(benchIdx)}
					cmd := exec.CommandContext(ctx, meta.BenchmarkExe, args...)
					return cmd, nil, nil
				}

				summary, err := d.runBench(ctx, meta, job)
				if err != nil {
					return summaries, err
				}
				summaries = append(summaries, summary)

				if failFastBreach(summary) {
					if group.HasTeardown {
						_ = d.runLifecycleHook(ctx, meta, group.ID, "teardown")
					}
					return summaries, apperr.NewRegressionError("fail-fast regression limit breached", true)
				}
			}
		}

		if group.HasTeardown {
			if err := d.runLifecycleHook(ctx, meta, group.ID, "teardown"); err != nil {
				return summaries, err
			}
		}
	}

	return summaries, nil
}

// RunBinaryGroups runs every group and bench of a binary-benchmark spec
// tree.
func (d *Driver) RunBinaryGroups(ctx context.Context, groups *BinaryBenchmarkGroups, meta RunMeta) ([]*model.BenchmarkSummary, error) {
	var summaries []*model.BenchmarkSummary

	for _, group := range groups.Groups {
		if group.HasSetup {
			if err := d.runLifecycleHook(ctx, meta, group.ID, "setup"); err != nil {
				return summaries, err
			}
		}

		for _, bin := range group.BinaryBenchmarks {
			for _, bench := range bin.Benches {
				cfg := mergeConfig(&groups.Config, group.Config, bin.Config, bench.Config, &bench.Command.Config)
				cmdSpec := bench.Command
				job := benchJob{
					kind:         model.BenchmarkKindBinary,
					functionName: bench.FunctionName,
					id:           bench.ID,
					cfg:          cfg,
					binCommand:   &cmdSpec,
				}
				job.command = func(ctx context.Context) (*exec.Cmd, *orchestrator.Readiness, error) {
					cmd := exec.CommandContext(ctx, cmdSpec.Path, cmdSpec.Args...)
					if cfg.CurrentDir != "" {
						cmd.Dir = cfg.CurrentDir
					}
					readiness := readinessFromDelay(cmdSpec.Delay)
					return cmd, readiness, nil
				}

				summary, err := d.runBench(ctx, meta, job)
				if err != nil {
					return summaries, err
				}
				summaries = append(summaries, summary)

				if failFastBreach(summary) {
					if group.HasTeardown {
						_ = d.runLifecycleHook(ctx, meta, group.ID, "teardown")
					}
					return summaries, apperr.NewRegressionError("fail-fast regression limit breached", true)
				}
			}
		}

		if group.HasTeardown {
			if err := d.runLifecycleHook(ctx, meta, group.ID, "teardown"); err != nil {
				return summaries, err
			}
		}
	}

	return summaries, nil
}

func readinessFromDelay(delay *Delay) *orchestrator.Readiness {
	if delay == nil {
		return nil
	}
	r := &orchestrator.Readiness{
		PollInterval: time.Duration(delay.PollMS) * time.Millisecond,
		Timeout:      time.Duration(delay.TimeoutMS) * time.Millisecond,
	}
	switch delay.Kind {
	case DelayDuration:
		r.Duration = time.Duration(delay.DurationMS) * time.Millisecond
	case DelayTCPConnect:
		r.TCPAddr = delay.Addr
	case DelayUDP:
		r.UDPAddr = delay.Addr
	case DelayPathExists:
		r.PathExists = delay.Path
	}
	return r
}

// applyStdio converts a binary bench's wire stdio configuration onto the
// orchestrator spec, wiring StdioSetup to a fresh setup child process when
// the bench's stdin pipes from one.
func applyStdio(spec *orchestrator.Spec, cmdSpec *Command) {
	if cmdSpec.Stdout != nil {
		spec.Stdout = stdioFromWire(*cmdSpec.Stdout)
	}
	if cmdSpec.Stderr != nil {
		spec.Stderr = stdioFromWire(*cmdSpec.Stderr)
	}
	if cmdSpec.Stdin == nil {
		return
	}
	switch cmdSpec.Stdin.Kind {
	case StdinInherit:
		spec.Stdin = orchestrator.Stdio{Kind: orchestrator.StdioInherit}
	case StdinNull:
		spec.Stdin = orchestrator.Stdio{Kind: orchestrator.StdioNull}
	case StdinFile:
		spec.Stdin = orchestrator.Stdio{Kind: orchestrator.StdioFile, Path: cmdSpec.Stdin.Path}
	case StdinSetup:
		setupArgs := append([]string{}, cmdSpec.Args...)
		setupCmd := exec.Command(cmdSpec.Path, setupArgs...)
		spec.SetupCmd = setupCmd
		stream := orchestrator.SetupStdout
		if cmdSpec.Stdin.Pipe == PipeStderr {
			stream = orchestrator.SetupStderr
		}
		spec.Stdin = orchestrator.Stdio{Kind: orchestrator.StdioSetup, SetupStream: stream}
	}
}

func stdioFromWire(s Stdio) orchestrator.Stdio {
	switch s.Kind {
	case StdioNull:
		return orchestrator.Stdio{Kind: orchestrator.StdioNull}
	case StdioFile:
		return orchestrator.Stdio{Kind: orchestrator.StdioFile, Path: s.Path}
	default:
		return orchestrator.Stdio{Kind: orchestrator.StdioInherit}
	}
}

// runLifecycleHook re-execs the benchmark binary for a group's setup or
// teardown step, outside of Valgrind: these steps establish or tear down
// shared fixtures and are never themselves measured.
func (d *Driver) runLifecycleHook(ctx context.Context, meta RunMeta, groupID, step string) error {
	cmd := exec.CommandContext(ctx, meta.BenchmarkExe, "--iai-run", groupID, step)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return apperr.Wrap(apperr.CodeBenchLaunchError, fmt.Sprintf("group %s %s failed", groupID, step), err)
	}
	return nil
}

func failFastBreach(s *model.BenchmarkSummary) bool {
	return s != nil && s.HasRegressions()
}

// benchStem renders the on-disk stem a bench's artifacts share: the
// function name, with its declared id appended when present so that
// #[benches] cases sharing one function name don't collide on disk.
func benchStem(functionName string, id *string) string {
	if id != nil && *id != "" {
		return functionName + "." + *id
	}
	return functionName
}

// runBench drives one bench through sandbox setup, every configured
// tool's launch/sanitize/parse/compare/regression/render cycle, and
// sandbox teardown, producing its BenchmarkSummary.
func (d *Driver) runBench(ctx context.Context, meta RunMeta, job benchJob) (*model.BenchmarkSummary, error) {
	stem := benchStem(job.functionName, job.id)
	summary := model.NewBenchmarkSummary(job.kind, meta.ModulePath, job.functionName)
	summary.ID = job.id
	summary.Details = job.details
	summary.ProjectRoot = meta.ProjectRoot
	summary.PackageDir = meta.PackageDir
	summary.BenchmarkFile = meta.BenchmarkFile
	summary.BenchmarkExe = meta.BenchmarkExe

	var sb *sandbox.Sandbox
	if job.cfg.Sandbox != nil && (job.cfg.Sandbox.Enabled == nil || *job.cfg.Sandbox.Enabled) {
		fixtures := make([]sandbox.Fixture, 0, len(job.cfg.Sandbox.Fixtures))
		follow := job.cfg.Sandbox.FollowSymlinks != nil && *job.cfg.Sandbox.FollowSymlinks
		for _, f := range job.cfg.Sandbox.Fixtures {
			fixtures = append(fixtures, sandbox.Fixture{Source: f, Dest: f, FollowSymlinks: follow})
		}
		var err error
		sb, err = sandbox.Setup(meta.ProjectRoot, fixtures, d.Logger)
		if err != nil {
			return summary, err
		}
		defer func() {
			if rerr := sb.Reset(); rerr != nil {
				d.Logger.Warn("sandbox reset failed for %s: %v", stem, rerr)
			}
		}()
	}

	baselineKind, err := meta.Baseline.Kind()
	if err != nil {
		return summary, err
	}

	for _, tc := range job.cfg.Tools {
		profile, regressions, err := d.runTool(ctx, meta, job, stem, tc, baselineKind)
		if err != nil {
			return summary, err
		}
		profile.Summaries.Total.Regressions = regressions
		summary.Profiles = append(summary.Profiles, profile)

		if summary.Details == nil {
			summary.Details = detailsFromLogs(profile.LogPaths)
		}
	}

	if err := formatter.WriteSummary(os.Stdout, summary, d.formatOptions(job.cfg)); err != nil {
		d.Logger.Warn("failed to render summary for %s: %v", stem, err)
	}
	if summary.SummaryOutput != nil {
		if err := formatter.WriteJSONSummary(summary); err != nil {
			d.Logger.Warn("failed to write json summary for %s: %v", stem, err)
		}
	}

	d.archive(ctx, meta, summary)

	return summary, nil
}

func (d *Driver) formatOptions(cfg resolved) formatter.Options {
	opts := formatter.DefaultOptions()
	opts.Grid = cfg.ShowGrid
	opts.DescriptionBytes = cfg.TruncateBytes
	opts.ToleranceOverride = cfg.Tolerance
	return opts
}

// runTool executes one tool's full cycle for a bench: argument assembly,
// launch under Valgrind, output sanitization, parsing of the new and old
// artifact sides, regression evaluation, and flamegraph generation.
func (d *Driver) runTool(ctx context.Context, meta RunMeta, job benchJob, stem string, tc ToolConfig, baselineKind model.BaselineKind) (model.Profile, []model.ToolRegression, error) {
	tool := tc.Kind.AsMetricTool()
	dir := meta.TargetDir

	saving := meta.Baseline.Save != nil
	if saving {
		if err := outputpath.RotateBaseline(dir, tool, stem, model.NewNamedBaseline(mustBaselineName(*meta.Baseline.Save))); err != nil {
			return model.Profile{}, nil, err
		}
	} else if !baselineKind.IsNamed() {
		if err := outputpath.RotateBaseline(dir, tool, stem, model.NewOldBaseline()); err != nil {
			return model.Profile{}, nil, err
		}
	}

	outPath, err := outputpath.New(dir, tool, stem, outputpath.KindOut, "")
	if err != nil {
		return model.Profile{}, nil, err
	}
	rawOut := outPath.Path(0, 0, 0)

	entryPoint := resolveEntryPoint(tc.EntryPoint)
	assembler := toolargs.Assembler{
		Tool:           tool,
		BenchArgs:      tc.RawArgs,
		GlobalArgs:     job.cfg.ValgrindArgs,
		OutputFilePath: rawOut,
		EntryPoint:     entryPoint,
		Sentinel:       meta.LibraryName,
		Logger:         d.Logger,
	}
	toolArgs := assembler.Assemble()
	parseSentinel := entryPointSentinel(entryPoint, meta.LibraryName)

	cmd, readiness, err := job.command(ctx)
	if err != nil {
		return model.Profile{}, nil, err
	}
	if len(job.cfg.Envs) > 0 {
		cmd.Env = append(os.Environ(), buildEnv(job.cfg.Envs)...)
	}

	spec := &orchestrator.Spec{
		Tool:        tool.ID(),
		ToolArgs:    toolArgs,
		Executable:  cmd.Path,
		UserArgs:    cmd.Args[1:],
		Env:         cmd.Env,
		Dir:         cmd.Dir,
		ValgrindBin: meta.ValgrindBin,
		AllowASLR:   meta.AllowASLR,
		ExitWith:    orchestratorExitWith(job.cfg.ExitWith),
	}
	if readiness != nil {
		spec.Readiness = *readiness
	}
	if job.binCommand != nil {
		applyStdio(spec, job.binCommand)
	}

	if _, err := orchestrator.Run(ctx, spec, d.Logger); err != nil {
		return model.Profile{}, nil, err
	}

	writtenOut, err := outputpath.Sanitize(dir, tool, stem, callgrind.ReadHeader)
	if err != nil {
		return model.Profile{}, nil, err
	}
	writtenLog, err := outputpath.RealPaths(dir, tool, stem, outputpath.KindLog)
	if err != nil {
		return model.Profile{}, nil, err
	}

	var oldOut []string
	if !saving {
		oldOut, err = oldArtifactPaths(dir, tool, stem, baselineKind, false)
		if err != nil {
			return model.Profile{}, nil, err
		}
	}

	profileData, err := d.parseAndZip(tool, writtenOut, oldOut, parseSentinel)
	if err != nil {
		return model.Profile{}, nil, err
	}

	limits := regression.NewLimits(meta.RegressionFailFast)
	applyDefaultLimits(&limits, meta)
	applyRegressionConfig(&limits, tc.RegressionConfig)
	regressions := regression.Evaluate(profileData.Total.Summary.Summary, limits)

	var flamegraphs []model.FlamegraphSummary
	if needsFlamegraph(tc, tool) && len(writtenOut) > 0 {
		flamegraphs, err = d.renderFlamegraphs(writtenOut, oldOut, dir, meta.LibraryName, tc.FlamegraphConfig)
		if err != nil {
			d.Logger.Warn("flamegraph generation failed for %s/%s: %v", tool.ID(), stem, err)
		}
	}

	if saving {
		if err := promoteToBaseline(dir, tool, stem, *meta.Baseline.Save, writtenOut, writtenLog); err != nil {
			return model.Profile{}, nil, err
		}
	}

	return model.Profile{
		Tool:        tool,
		LogPaths:    writtenLog,
		OutPaths:    writtenOut,
		Flamegraphs: flamegraphs,
		Summaries:   profileData,
	}, regressions, nil
}

func mustBaselineName(s string) model.BaselineName {
	n, err := model.ParseBaselineName(s)
	if err != nil {
		return model.BaselineName(s)
	}
	return n
}

// promoteToBaseline renames a just-produced run's canonical output/log
// files into their `*.base@<name>` form so a later `--baseline=<name>`
// run can find them.
func promoteToBaseline(dir string, tool metric.Tool, stem, name string, outPaths, logPaths []string) error {
	rename := func(paths []string, kind outputpath.Kind) error {
		for _, p := range paths {
			dest := p + ".base@" + name
			if err := os.Rename(p, dest); err != nil {
				return apperr.Wrap(apperr.CodeIOError, "failed to promote baseline artifact", err)
			}
		}
		return nil
	}
	if err := rename(outPaths, outputpath.KindBase); err != nil {
		return err
	}
	return rename(logPaths, outputpath.KindBaseLog)
}

func resolveEntryPoint(ep *EntryPoint) toolargs.EntryPoint {
	if ep == nil {
		return toolargs.EntryPoint{Variant: toolargs.EntryPointDefault}
	}
	switch ep.Kind {
	case EntryPointKindNone:
		return toolargs.EntryPoint{Variant: toolargs.EntryPointNone}
	case EntryPointKindCustom:
		return toolargs.EntryPoint{Variant: toolargs.EntryPointCustom, Pattern: ep.Pattern}
	default:
		return toolargs.EntryPoint{Variant: toolargs.EntryPointDefault}
	}
}

// entryPointSentinel returns the frame name the Callgrind parser should
// gate on, matching whatever pattern the assembler passed to
// --toggle-collect: empty for EntryPointNone (whole-process totals), the
// macro-provided sentinel for EntryPointDefault, or the custom pattern.
func entryPointSentinel(ep toolargs.EntryPoint, librarySentinel string) string {
	switch ep.Variant {
	case toolargs.EntryPointNone:
		return ""
	case toolargs.EntryPointCustom:
		return ep.Pattern
	default:
		return librarySentinel
	}
}

func orchestratorExitWith(e ExitWith) orchestrator.ExitWith {
	switch e.Kind {
	case ExitWithFailure:
		return orchestrator.ExitWith{Variant: orchestrator.ExitFailure}
	case ExitWithCode:
		return orchestrator.ExitWith{Variant: orchestrator.ExitCode, Code: e.Code}
	default:
		return orchestrator.ExitWith{Variant: orchestrator.ExitSuccess}
	}
}

func needsFlamegraph(tc ToolConfig, tool metric.Tool) bool {
	if tc.FlamegraphConfig == nil {
		return false
	}
	if tool != metric.ToolCallgrind && tool != metric.ToolCachegrind {
		return false
	}
	if tc.FlamegraphConfig.Kind != nil && *tc.FlamegraphConfig.Kind == FlamegraphNone {
		return false
	}
	return true
}

func applyDefaultLimits(limits *regression.Limits, meta RunMeta) {
	// Default limits apply to the primary cycle estimate only; a tool's
	// own regression_config can still add or override per-metric limits.
	if meta.DefaultSoftLimitPct != 0 {
		limits.Soft.Set(metric.NewCallgrindKind(metric.EstimatedCycles), metric.FloatValue(meta.DefaultSoftLimitPct))
	}
	if meta.DefaultHardLimit != 0 {
		limits.Hard.Set(metric.NewCallgrindKind(metric.EstimatedCycles), metric.FloatValue(meta.DefaultHardLimit))
	}
}

// applyRegressionConfig layers a tool's own regression_config on top of the
// defaults, in the order its soft/hard limits were declared on the wire
// (RegressionConfig.SoftLimits/HardLimits are ordered slices, not maps, for
// exactly this reason).
func applyRegressionConfig(limits *regression.Limits, rc *RegressionConfig) {
	if rc == nil {
		return
	}
	if rc.FailFast != nil {
		limits.FailFast = *rc.FailFast
	}
	for _, sl := range rc.SoftLimits {
		if k, ok := metricKindByName(sl.Metric); ok {
			limits.Soft.Set(k, metric.FloatValue(sl.Limit))
		}
	}
	for _, hl := range rc.HardLimits {
		if k, ok := metricKindByName(hl.Metric); ok {
			limits.Hard.Set(k, metric.FloatValue(hl.Limit.AsFloat()))
		}
	}
}

// metricKindByName resolves a regression config's metric name (as given
// in the spec tree) to the tagged Kind it constrains. Only the metrics a
// regression config can plausibly name are covered; unknown names are
// ignored rather than rejected, since a future tool version may add
// fields this runner doesn't yet recognize.
func metricKindByName(name string) (metric.Kind, bool) {
	for _, e := range metric.NativeCacheEvents {
		if e.String() == name {
			return metric.NewCallgrindKind(e), true
		}
	}
	for _, e := range []metric.EventKind{metric.ILdmr, metric.DLdmr, metric.DLdmw} {
		if e.String() == name {
			return metric.NewCallgrindKind(e), true
		}
	}
	derived := []metric.EventKind{
		metric.L1hits, metric.LLhits, metric.RamHits, metric.TotalRW, metric.EstimatedCycles,
		metric.L1HitRate, metric.LLHitRate, metric.RamHitRate,
		metric.I1MissRate, metric.LLiMissRate, metric.D1MissRate, metric.LLdMissRate, metric.LLMissRate,
	}
	for _, e := range derived {
		if e.String() == name {
			return metric.NewCallgrindKind(e), true
		}
	}
	for _, m := range []metric.DhatMetric{
		metric.DhatTotalUnits, metric.DhatTotalEvents, metric.DhatTotalBytes, metric.DhatTotalBlocks,
		metric.DhatAtTGmaxBytes, metric.DhatAtTGmaxBlocks, metric.DhatAtTEndBytes, metric.DhatAtTEndBlocks,
		metric.DhatReadsBytes, metric.DhatWritesBytes, metric.DhatTotalLifetimes,
		metric.DhatMaximumBytes, metric.DhatMaximumBlocks,
	} {
		if m.String() == name {
			return metric.NewDhatKind(m), true
		}
	}
	return metric.Kind{}, false
}

// parseAndZip dispatches to the tool-appropriate parser for every new and
// old artifact path, then folds the results together via parser.Zip.
func (d *Driver) parseAndZip(tool metric.Tool, newPaths, oldPaths []string, sentinel string) (model.ProfileData, error) {
	switch tool {
	case metric.ToolCallgrind:
		return zipWith(tool, newPaths, oldPaths, func(p string) (parser.Output[metric.EventKind], error) {
			return callgrind.Parse(p, sentinel)
		}, metric.CallgrindKindSummary)
	case metric.ToolCachegrind:
		return zipWith(tool, newPaths, oldPaths, cachegrind.Parse, metric.CachegrindKindSummary)
	case metric.ToolDHAT:
		return zipWith(tool, newPaths, oldPaths, dhat.Parse, metric.DhatKindSummary)
	case metric.ToolMemcheck, metric.ToolHelgrind, metric.ToolDRD:
		return zipWith(tool, newPaths, oldPaths, errortool.Parse, metric.ErrorKindSummary)
	default:
		// Massif and BBV artifacts are archived as raw files; this runner
		// does not parse their metric model, so they never contribute to
		// summary/regression data.
		return model.ProfileData{}, nil
	}
}

func zipWith[K comparable](tool metric.Tool, newPaths, oldPaths []string, parse func(string) (parser.Output[K], error), lift func(*metric.Summary[K]) *metric.Summary[metric.Kind]) (model.ProfileData, error) {
	newOutputs, err := parseAll(newPaths, parse)
	if err != nil {
		return model.ProfileData{}, err
	}
	oldOutputs, err := parseAll(oldPaths, parse)
	if err != nil {
		return model.ProfileData{}, err
	}
	return parser.Zip(tool, newOutputs, oldOutputs, lift), nil
}

func parseAll[K comparable](paths []string, parse func(string) (parser.Output[K], error)) ([]parser.Output[K], error) {
	out := make([]parser.Output[K], 0, len(paths))
	for _, p := range paths {
		o, err := parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (d *Driver) renderFlamegraphs(newOut, oldOut []string, dir, sentinel string, cfg *FlamegraphConfig) ([]model.FlamegraphSummary, error) {
	if len(newOut) == 0 {
		return nil, nil
	}
	newPath := newOut[0]
	oldPath := ""
	if len(oldOut) > 0 {
		oldPath = oldOut[0]
	}
	return d.Flame.Generate(context.Background(), newPath, oldPath, dir, sentinel, flamegraphConfig(cfg))
}

func flamegraphConfig(cfg *FlamegraphConfig) flamegraph.Config {
	out := flamegraph.DefaultConfig()
	if cfg == nil {
		return out
	}
	if cfg.Direction != nil && *cfg.Direction == DirectionBottomToTop {
		out.Direction = flamegraph.DirectionBottomToTop
	}
	if cfg.Kind != nil {
		switch *cfg.Kind {
		case FlamegraphRegular:
			out.Kind = flamegraph.KindRegular
		case FlamegraphDifferential:
			out.Kind = flamegraph.KindDifferential
		case FlamegraphAll:
			out.Kind = flamegraph.KindAll
		case FlamegraphNone:
			out.Kind = flamegraph.KindNone
		}
	}
	if cfg.MinWidth != nil {
		out.MinWidthPct = *cfg.MinWidth
	}
	if cfg.NegateDifferential != nil {
		out.NegateDifferential = *cfg.NegateDifferential
	}
	if cfg.NormalizeDifferential != nil {
		out.NormalizeDifferential = *cfg.NormalizeDifferential
	}
	if cfg.Subtitle != nil {
		out.Subtitle = *cfg.Subtitle
	}
	if cfg.Title != nil {
		out.Title = *cfg.Title
	}
	return out
}

// archive best-effort uploads the JSON summary and every tool's out/log
// files to the configured artifact store. Archival failures are logged,
// never fatal: losing a copy of already-rendered artifacts shouldn't fail
// a benchmark run that otherwise completed and reported correctly.
func (d *Driver) archive(ctx context.Context, meta RunMeta, summary *model.BenchmarkSummary) {
	if d.Storage == nil {
		return
	}
	runID := fmt.Sprintf("%d", d.Clock.Now().UnixNano())
	upload := func(path string) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()
		key := storage.ArtifactKey(meta.ModulePath, summary.FunctionName, runID, filepath.Base(path))
		if err := d.Storage.Upload(ctx, key, f); err != nil {
			d.Logger.Warn("artifact archival failed for %s: %v", path, err)
		}
	}
	for _, p := range summary.Profiles {
		for _, path := range p.OutPaths {
			upload(path)
		}
		for _, path := range p.LogPaths {
			upload(path)
		}
	}
	if summary.SummaryOutput != nil {
		upload(summary.SummaryOutput.Path)
	}
}

// detailsFromLogs extracts a bench's free-form description paragraphs
// from the first available tool log, the same text a human reads when
// running the tool directly rather than under this runner.
func detailsFromLogs(logPaths []string) *string {
	for _, p := range logPaths {
		paragraphs, err := genericlog.ExtractDetails(p)
		if err != nil {
			continue
		}
		if joined := genericlog.Join(paragraphs); joined != nil {
			return joined
		}
	}
	return nil
}
