package formatter

import (
	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/model"
	"github.com/vgbench/runner/pkg/writer"
)

// WriteJSONSummary writes summary to summary.SummaryOutput.Path as the
// version-tagged BenchmarkSummary JSON format, per the configured
// SummaryOutput format. A nil SummaryOutput is a no-op.
func WriteJSONSummary(summary *model.BenchmarkSummary) error {
	if summary.SummaryOutput == nil {
		return nil
	}
	var w writer.JSONWriter[*model.BenchmarkSummary]
	switch summary.SummaryOutput.Format {
	case model.SummaryFormatPrettyJSON:
		w = *writer.NewPrettyJSONWriter[*model.BenchmarkSummary]()
	default:
		w = *writer.NewJSONWriter[*model.BenchmarkSummary]()
	}
	if err := w.WriteToFile(summary, summary.SummaryOutput.Path); err != nil {
		return apperr.Wrap(apperr.CodeIOError, "failed to write benchmark summary", err)
	}
	return nil
}
