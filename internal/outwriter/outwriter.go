// Package outwriter has artifact writers and terminal output logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for terminal output.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteProjects prints the ranked projects using the configured output format.
func (ow *OutWriter) WriteProjects(projects []schema.Project, cfg *contract.Config, duration time.Duration) error {
	return PrintProjects(schema.EnrichProjects(projects), cfg, duration)
}

// WriteSummary prints the build summary as a table on stderr-friendly writers.
func (ow *OutWriter) WriteSummary(summary schema.BuildSummary, cfg *contract.Config) error {
	return PrintBuildSummary(os.Stderr, summary, cfg)
}

// GetMaxTableNameWidth calculates the maximum width for project names in table output
// based on terminal width.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank, source, four scores, two labels, plus borders and padding
	const fixedWidth = 95

	available := termWidth - fixedWidth
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}
