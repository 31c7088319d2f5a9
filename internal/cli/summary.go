package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/migratool/internal/merge"
	"github.com/dmitrijs2005/migratool/internal/transform"
)

// renderSummary prints the per-entity counters of a finished run.
func renderSummary(w io.Writer, result *merge.Result) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tPROCESSED\tINSERTED\tUPDATED\tSKIPPED")
	writeSection(tw, "users", result.Users)
	writeSection(tw, "images", result.Images)
	_ = tw.Flush()
}

func writeSection(w io.Writer, name string, stats transform.SectionResult) {
	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", name, stats.Processed, stats.Inserted, stats.Updated, stats.Skipped)
}
