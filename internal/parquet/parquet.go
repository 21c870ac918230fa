// Package parquet provides data structures and functions for exporting repodex
// index and run-history data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/repodex/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single build run with metadata.
// This struct maps to the repodex_runs database table.
type Run struct {
	// RunID is the UUID of this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the build began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the build completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalProjects is the number of projects scored in this run
	TotalProjects int32 `parquet:"total_projects,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ProjectScore is the score row of one project in one run.
// This struct maps to the repodex_project_scores database table.
type ProjectScore struct {
	RunID            string    `parquet:"run_id,snappy"`
	ProjectKey       string    `parquet:"project_key,snappy"`
	Source           string    `parquet:"source,snappy,dict"`
	AnalysisTime     time.Time `parquet:"analysis_time,snappy"`
	Stars            int64     `parquet:"stars,snappy"`
	Downloads        int64     `parquet:"downloads,snappy"`
	PopularityScore  float64   `parquet:"popularity_score,snappy"`
	HealthScore      float64   `parquet:"health_score,snappy"`
	PeopleScore      float64   `parquet:"people_score,snappy"`
	Score            float64   `parquet:"score,snappy"`
	HealthLabel      string    `parquet:"health_label,snappy,dict"`
	MomentumLabel    string    `parquet:"momentum_label,snappy,dict"`
	NormalizedGrowth float64   `parquet:"normalized_growth,snappy"`
}

// IndexRow is the flat columnar form of an index item written as index.parquet.
type IndexRow struct {
	Key              string  `parquet:"key,snappy"`
	Slug             string  `parquet:"slug,snappy"`
	Source           string  `parquet:"source,snappy,dict"`
	Name             string  `parquet:"name,snappy"`
	Description      string  `parquet:"description,snappy"`
	Tags             string  `parquet:"tags,snappy"` // comma separated
	Stars            int64   `parquet:"stars,snappy"`
	Forks            int64   `parquet:"forks,snappy"`
	Downloads        int64   `parquet:"downloads,snappy"`
	Likes            int64   `parquet:"likes,snappy"`
	PopularityScore  float64 `parquet:"popularity_score,snappy"`
	HealthScore      float64 `parquet:"health_score,snappy"`
	PeopleScore      float64 `parquet:"people_score,snappy"`
	Score            float64 `parquet:"score,snappy"`
	HealthLabel      string  `parquet:"health_label,snappy,dict"`
	MomentumLabel    string  `parquet:"momentum_label,snappy,dict"`
	NormalizedGrowth float64 `parquet:"normalized_growth,snappy"`
	DaysSinceUpdate  int32   `parquet:"days_since_update,snappy"`
}

// writeRows writes a slice of rows to a Parquet file with a schema inferred from T.
func writeRows[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the struct tags
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes run records to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteProjectScoresParquet writes project score records to a Parquet file.
func WriteProjectScoresParquet(data []ProjectScore, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteIndexParquet writes the index items of one build to a Parquet file.
func WriteIndexParquet(items []schema.IndexItem, outputPath string) error {
	return writeRows(ConvertIndexItems(items), outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalProjects: record.TotalProjects,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertProjectScoreRecords converts schema.ProjectScoreRecord to ProjectScore for Parquet export.
func ConvertProjectScoreRecords(records []schema.ProjectScoreRecord) []ProjectScore {
	result := make([]ProjectScore, len(records))
	for i, r := range records {
		result[i] = ProjectScore{
			RunID:            r.RunID,
			ProjectKey:       r.ProjectKey,
			Source:           r.Source,
			AnalysisTime:     r.AnalysisTime,
			Stars:            r.Stars,
			Downloads:        r.Downloads,
			PopularityScore:  r.PopularityScore,
			HealthScore:      r.HealthScore,
			PeopleScore:      r.PeopleScore,
			Score:            r.Score,
			HealthLabel:      r.HealthLabel,
			MomentumLabel:    r.MomentumLabel,
			NormalizedGrowth: r.NormalizedGrowth,
		}
	}
	return result
}

// ConvertIndexItems flattens index items into Parquet rows.
func ConvertIndexItems(items []schema.IndexItem) []IndexRow {
	result := make([]IndexRow, len(items))
	for i, it := range items {
		result[i] = IndexRow{
			Key:              it.Key,
			Slug:             it.Slug,
			Source:           string(it.Source),
			Name:             it.Name,
			Description:      it.Description,
			Tags:             strings.Join(it.Tags, ","),
			Stars:            int64(it.Stars),
			Forks:            int64(it.Forks),
			Downloads:        int64(it.Downloads),
			Likes:            int64(it.Likes),
			PopularityScore:  it.PopularityScore,
			HealthScore:      it.HealthScore,
			PeopleScore:      it.PeopleScore,
			Score:            it.Score,
			HealthLabel:      string(it.HealthLabel),
			MomentumLabel:    string(it.MomentumLabel),
			NormalizedGrowth: it.NormalizedGrowth,
			DaysSinceUpdate:  int32(it.DaysSinceUpdate),
		}
	}
	return result
}
