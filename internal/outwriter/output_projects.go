package outwriter

import (
	"encoding/csv"
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

// PrintProjects outputs the ranked projects, dispatching based on the output format configured.
func PrintProjects(projects []schema.RankedProject, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, projects)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectsCSV(w, projects, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectsTable(w, projects, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// displayName prefers the full name of an entity.
func displayName(p schema.Project) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Name
}

func healthLabelOf(p schema.Project) schema.HealthLabel {
	if p.Signals == nil {
		return ""
	}
	return p.Signals.HealthLabel
}

// writeProjectsTable generates and writes the human-readable table.
func writeProjectsTable(w io.Writer, projects []schema.RankedProject, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Project", "Source", "Score", "Pop", "Health", "People", "Status", "Momentum"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, p := range projects {
		health := string(healthLabelOf(p.Project))
		momentum := string(p.Momentum.Label)
		if cfg.UseColors {
			health = contract.GetHealthColorLabel(healthLabelOf(p.Project))
			momentum = contract.GetMomentumColorLabel(p.Momentum.Label)
		}
		data = append(data, []string{
			strconv.Itoa(p.Rank),
			contract.TruncateText(displayName(p.Project), nameWidth),
			string(p.Source),
			fmtFloat(p.Score),
			fmtFloat(p.Popularity),
			fmtFloat(p.Health),
			fmtFloat(p.People),
			health,
			momentum,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d projects. Build completed in %v\n", len(projects), duration.Round(time.Millisecond)); err != nil {
		return err
	}
	return nil
}

// writeProjectsCSV writes the ranked projects in CSV format.
func writeProjectsCSV(w io.Writer, projects []schema.RankedProject, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank", "key", "source", "name", "score", "popularity_score", "health_score", "people_score",
		"health_label", "momentum_label", "momentum_label_legacy", "stars", "forks", "downloads", "likes", "tags",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range projects {
			rec := []string{
				strconv.Itoa(p.Rank),
				p.Key,
				string(p.Source),
				displayName(p.Project),
				fmtFloat(p.Score),
				fmtFloat(p.Popularity),
				fmtFloat(p.Health),
				fmtFloat(p.People),
				string(healthLabelOf(p.Project)),
				string(p.Momentum.Label),
				string(p.Momentum.LegacyLabel),
				fmt.Sprintf(intFmt, p.Stars),
				fmt.Sprintf(intFmt, p.Forks),
				fmt.Sprintf(intFmt, p.Downloads),
				fmt.Sprintf(intFmt, p.Likes),
				strings.Join(p.Tags, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
