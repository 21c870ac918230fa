package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBuildSummary writes the end-of-build counts. JSON output stays machine readable;
// every other mode gets a two-column table.
func PrintBuildSummary(w io.Writer, s schema.BuildSummary, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, s)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})

	rows := [][]string{
		{"Run ID", s.RunID},
		{"Input entities", strconv.Itoa(s.TotalInput)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Skipped (invalid)", strconv.Itoa(s.SkippedInvalid)},
		{"Skipped (duplicate)", strconv.Itoa(s.SkippedDuplicate)},
		{"Filtered", strconv.Itoa(s.Filtered)},
		{"Health cache hits", strconv.Itoa(s.CacheHits)},
		{"Health recomputed", strconv.Itoa(s.Recomputed)},
		{"Bundles with missing signals", strconv.Itoa(s.SignalsMissing)},
		{"Overrides dropped", strconv.Itoa(s.OverridesDropped)},
		{"Shards", strconv.Itoa(s.Shards)},
		{"New since last run", strconv.Itoa(s.NewSinceLastRun)},
	}
	if len(s.SectionsSkipped) > 0 {
		rows = append(rows, []string{"Sections skipped", strings.Join(s.SectionsSkipped, ", ")})
	}
	rows = append(rows, []string{"Duration", s.Duration.Round(time.Millisecond).String()})

	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	return nil
}
