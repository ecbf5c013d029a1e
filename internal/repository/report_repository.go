package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/openlum/landreport-backend-go/internal/models"
)

// ReportRepository handles database operations for report runs and values
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateRun inserts a new report run
func (r *ReportRepository) CreateRun(run *models.ReportRun) error {
	query := `
		INSERT INTO report_runs (id, scenario, report, level, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, run.ID, run.Scenario, run.Report, run.Level, run.Status, run.Message, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// CompleteRun marks a run as completed or failed
func (r *ReportRepository) CompleteRun(id, status, message, exportPath string) error {
	query := `
		UPDATE report_runs
		SET status = ?, message = ?, export_path = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, status, message, exportPath, id)
	if err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// InsertValues stores report values for a run
func (r *ReportRepository) InsertValues(runID string, values []models.ReportValue) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO report_values (run_id, variable, unit, cell, year, value)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.Exec(runID, v.Variable, v.Unit, v.Cell, v.Year, v.Value); err != nil {
			return fmt.Errorf("failed to insert report value: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListRuns retrieves report runs with filtering
func (r *ReportRepository) ListRuns(filter models.RunFilter) ([]models.ReportRun, error) {
	query := `
		SELECT id, scenario, report, level, status, message, export_path, created_at, completed_at
		FROM report_runs
	`

	var conditions []string
	var args []interface{}

	if filter.Scenario != "" {
		conditions = append(conditions, "scenario = ?")
		args = append(args, filter.Scenario)
	}
	if filter.Report != "" {
		conditions = append(conditions, "report = ?")
		args = append(args, filter.Report)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ReportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a single report run by id
func (r *ReportRepository) GetRun(id string) (*models.ReportRun, error) {
	query := `
		SELECT id, scenario, report, level, status, message, export_path, created_at, completed_at
		FROM report_runs
		WHERE id = ?
	`

	row := r.db.QueryRow(query, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetValues retrieves the report values of a run
func (r *ReportRepository) GetValues(runID string) ([]models.ReportValue, error) {
	query := `
		SELECT run_id, variable, unit, cell, year, value
		FROM report_values
		WHERE run_id = ?
		ORDER BY variable, cell, year
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report values: %w", err)
	}
	defer rows.Close()

	var values []models.ReportValue
	for rows.Next() {
		var v models.ReportValue
		if err := rows.Scan(&v.RunID, &v.Variable, &v.Unit, &v.Cell, &v.Year, &v.Value); err != nil {
			return nil, fmt.Errorf("failed to scan report value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.ReportRun, error) {
	var run models.ReportRun
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.Scenario, &run.Report, &run.Level,
		&run.Status, &run.Message, &run.ExportPath,
		&run.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report run: %w", err)
	}

	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
