package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/internal/parquet"
)

// ExecuteRunsExport writes the run history of the store to two Parquet files
// named after outputFile.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is not enabled. Set --runs-backend")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get runs status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total project score records: %d\n", status.TableSizes[projectScoresTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	scores, err := store.GetAllProjectScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve project scores: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetScores := parquet.ConvertProjectScoreRecords(scores)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	scoresFile := outputFile + ".project_scores.parquet"
	if err := parquet.WriteProjectScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write project scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d project score records to: %s\n", len(parquetScores), scoresFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read by DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
