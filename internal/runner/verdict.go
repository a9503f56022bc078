package runner

import "github.com/vgbench/runner/pkg/model"

// Verdict aggregates a run's outcome across every bench summary it
// produced, for the CLI entrypoint to translate into a process exit code.
type Verdict struct {
	BenchCount       int
	RegressionCount  int
	RegressedBenches []string
}

// Summarize folds a batch of bench summaries into a Verdict. Nil entries
// (a bench that failed before producing a summary) are skipped; the
// caller is responsible for surfacing the error that produced them.
func Summarize(summaries []*model.BenchmarkSummary) Verdict {
	v := Verdict{}
	for _, s := range summaries {
		if s == nil {
			continue
		}
		v.BenchCount++
		if s.HasRegressions() {
			v.RegressionCount++
			v.RegressedBenches = append(v.RegressedBenches, s.FunctionName)
		}
	}
	return v
}

// ExitCode maps a Verdict onto the runner's process exit status: 0 when
// every bench ran clean, 1 when at least one recorded a regression.
func (v Verdict) ExitCode() int {
	if v.RegressionCount > 0 {
		return 1
	}
	return 0
}
