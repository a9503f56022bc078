package model

// BenchmarkKind distinguishes a library benchmark (macro-annotated Rust
// function) from a binary benchmark (an external command under test).
type BenchmarkKind string

const (
	BenchmarkKindLibrary BenchmarkKind = "LibraryBenchmark"
	BenchmarkKindBinary  BenchmarkKind = "BinaryBenchmark"
)

// SummaryFormat selects how a BenchmarkSummary is rendered to its output
// file.
type SummaryFormat string

const (
	SummaryFormatJSON       SummaryFormat = "Json"
	SummaryFormatPrettyJSON SummaryFormat = "PrettyJson"
)

// SummaryOutput names the destination and format of a written summary
// file.
type SummaryOutput struct {
	Format SummaryFormat `json:"format"`
	Path   string        `json:"path"`
}

// BenchmarkVersion is the current BenchmarkSummary JSON schema version.
// Bumped only on backwards-incompatible changes.
const BenchmarkVersion = "3"

// BenchmarkSummary is the version-tagged, per-bench record written to
// disk: identity, paths, baselines, and every tool's Profile.
type BenchmarkSummary struct {
	Version       string         `json:"version"`
	Kind          BenchmarkKind  `json:"kind"`
	SummaryOutput *SummaryOutput `json:"summary_output,omitempty"`
	ProjectRoot   string         `json:"project_root"`
	PackageDir    string         `json:"package_dir"`
	BenchmarkFile string         `json:"benchmark_file"`
	BenchmarkExe  string         `json:"benchmark_exe"`
	FunctionName  string         `json:"function_name"`
	ModulePath    string         `json:"module_path"`
	ID            *string        `json:"id,omitempty"`
	Details       *string        `json:"details,omitempty"`

	// Baselines holds (new-side label, old-side label); an absent first
	// label means new output was produced this run, an absent second
	// label means the usual "*.old" rotation was used rather than a
	// named baseline.
	Baselines [2]*string `json:"baselines"`

	Profiles []Profile `json:"profiles"`
}

// NewBenchmarkSummary builds an empty BenchmarkSummary for one bench,
// stamped with the current schema version.
func NewBenchmarkSummary(kind BenchmarkKind, modulePath, functionName string) *BenchmarkSummary {
	return &BenchmarkSummary{
		Version:      BenchmarkVersion,
		Kind:         kind,
		ModulePath:   modulePath,
		FunctionName: functionName,
		Profiles:     []Profile{},
	}
}

// HasRegressions reports whether any tool's total recorded a regression.
func (b *BenchmarkSummary) HasRegressions() bool {
	for _, p := range b.Profiles {
		if len(p.Summaries.Total.Regressions) > 0 {
			return true
		}
	}
	return false
}
