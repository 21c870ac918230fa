package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
)

// Table names for run tracking.
const (
	runsTable          = "repodex_runs"
	projectScoresTable = "repodex_project_scores"
)

// storedTimeLayout is a fixed-width UTC layout so that stored times sort lexically on every backend.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend and migrates it to the latest schema.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	db, _, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// placeholders returns n parameter placeholders for the backend.
func (rs *RunStoreImpl) placeholders(n int) []any {
	out := make([]any, n)
	for i := range out {
		if rs.backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(storedTimeLayout, s)
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	runID := uuid.NewString()

	// Skip for NoneBackend
	if rs.disabled() {
		return runID, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	p := rs.placeholders(3)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (%s, %s, %s)`,
		quoteTableName(runsTable, rs.backend), p[0], p[1], p[2])
	if _, err := rs.db.Exec(query, runID, formatTime(startTime), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, totalProjects int) error {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	// First, get the start_time to calculate duration
	p := rs.placeholders(1)
	var startStr string
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, p[0])
	if err := rs.db.QueryRow(query, runID).Scan(&startStr); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := parseTime(startStr)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	p = rs.placeholders(4)
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_projects = %s WHERE run_id = %s`,
		quotedTableName, p[0], p[1], p[2], p[3])
	if _, err := rs.db.Exec(update, formatTime(endTime), durationMs, totalProjects, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordProjectScores stores the final scores of one project.
func (rs *RunStoreImpl) RecordProjectScores(runID string, r schema.ProjectScoreRecord) error {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil
	}

	p := rs.placeholders(13)
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, project_key, source, analysis_time, stars, downloads,
		                popularity_score, health_score, people_score, score,
		                health_label, momentum_label, normalized_growth)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, append([]any{quoteTableName(projectScoresTable, rs.backend)}, p...)...)

	_, err := rs.db.Exec(query,
		runID, r.ProjectKey, r.Source, formatTime(r.AnalysisTime), r.Stars, r.Downloads,
		r.PopularityScore, r.HealthScore, r.PeopleScore, r.Score,
		r.HealthLabel, r.MomentumLabel, r.NormalizedGrowth,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project scores for %s: %w", r.ProjectKey, err)
	}
	return nil
}

// GetAllRuns retrieves all runs from the store ordered by start time.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_projects, config_params FROM %s ORDER BY start_time, run_id",
		quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var startStr string
		var endStr *string
		if err := rows.Scan(&record.RunID, &startStr, &endStr, &record.RunDurationMs, &record.TotalProjects, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if record.StartTime, err = parseTime(startStr); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endStr != nil {
			endTime, err := parseTime(*endStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllProjectScores retrieves all project score rows from the store.
func (rs *RunStoreImpl) GetAllProjectScores() ([]schema.ProjectScoreRecord, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, project_key, source, analysis_time, stars, downloads,
		popularity_score, health_score, people_score, score, health_label, momentum_label, normalized_growth
		FROM %s ORDER BY run_id, project_key`, quoteTableName(projectScoresTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query project scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ProjectScoreRecord
	for rows.Next() {
		var r schema.ProjectScoreRecord
		var analysisStr string
		if err := rows.Scan(&r.RunID, &r.ProjectKey, &r.Source, &analysisStr, &r.Stars, &r.Downloads,
			&r.PopularityScore, &r.HealthScore, &r.PeopleScore, &r.Score,
			&r.HealthLabel, &r.MomentumLabel, &r.NormalizedGrowth); err != nil {
			return nil, fmt.Errorf("failed to scan project scores: %w", err)
		}
		if r.AnalysisTime, err = parseTime(analysisStr); err != nil {
			return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project scores: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunsStatus, error) {
	status := schema.RunsStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	runs := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastStr, oldestStr string
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", runs)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &lastStr); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runs)
		if err := rs.db.QueryRow(oldestQuery).Scan(&oldestStr); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		var err error
		if status.LastRunTime, err = parseTime(lastStr); err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		if status.OldestRunTime, err = parseTime(oldestStr); err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}

		projectsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_projects), 0) FROM %s", runs)
		if err := rs.db.QueryRow(projectsQuery).Scan(&status.TotalProjects); err != nil {
			return status, fmt.Errorf("failed to get total projects: %w", err)
		}
	}

	for _, table := range []string{runsTable, projectScoresTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
