package formatter

import (
	"fmt"
	"io"

	"github.com/vgbench/runner/pkg/model"
)

// CompareByID renders a side-by-side block for every bench ID shared by
// two or more of the given summaries. Intended to run once a function
// group finishes, across every bench in the group that declared the
// same ID.
func CompareByID(w io.Writer, summaries []*model.BenchmarkSummary, opts Options) error {
	byID := map[string][]*model.BenchmarkSummary{}
	var order []string
	for _, s := range summaries {
		if s.ID == nil {
			continue
		}
		if _, seen := byID[*s.ID]; !seen {
			order = append(order, *s.ID)
		}
		byID[*s.ID] = append(byID[*s.ID], s)
	}

	for _, id := range order {
		group := byID[id]
		if len(group) < 2 {
			continue
		}
		if _, err := fmt.Fprintf(w, "compare_by_id: %s\n", id); err != nil {
			return err
		}
		for _, s := range group {
			if err := WriteSummary(w, s, opts); err != nil {
				return err
			}
		}
	}
	return nil
}
