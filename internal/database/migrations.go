package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of schema migrations. They are embedded in
// the binary rather than read from a directory so the server can run from a
// single artifact.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "init_schema",
		SQL: `
			CREATE TABLE IF NOT EXISTS model_output (
				scenario    TEXT NOT NULL,
				variable    TEXT NOT NULL,
				cell        TEXT NOT NULL,
				category    TEXT NOT NULL,
				subcategory TEXT NOT NULL DEFAULT 'total',
				year        INTEGER NOT NULL,
				value       REAL NOT NULL,
				PRIMARY KEY (scenario, variable, cell, category, subcategory, year)
			);

			CREATE INDEX IF NOT EXISTS idx_model_output_variable
				ON model_output(scenario, variable);

			CREATE TABLE IF NOT EXISTS spatial_mapping (
				output_dir TEXT NOT NULL,
				cell       TEXT NOT NULL,
				cluster    TEXT NOT NULL,
				region     TEXT NOT NULL,
				country    TEXT NOT NULL DEFAULT '',
				weight     REAL NOT NULL DEFAULT 0,
				PRIMARY KEY (output_dir, cell)
			);

			CREATE INDEX IF NOT EXISTS idx_spatial_mapping_cluster
				ON spatial_mapping(output_dir, cluster);

			CREATE TABLE IF NOT EXISTS report_runs (
				id           TEXT PRIMARY KEY,
				scenario     TEXT NOT NULL,
				report       TEXT NOT NULL,
				level        TEXT NOT NULL,
				status       TEXT NOT NULL,
				message      TEXT NOT NULL DEFAULT '',
				export_path  TEXT NOT NULL DEFAULT '',
				created_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				completed_at TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS report_values (
				run_id   TEXT NOT NULL,
				variable TEXT NOT NULL,
				unit     TEXT NOT NULL,
				cell     TEXT NOT NULL,
				year     INTEGER NOT NULL,
				value    REAL NOT NULL,
				FOREIGN KEY (run_id) REFERENCES report_runs(id)
			);

			CREATE INDEX IF NOT EXISTS idx_report_values_run
				ON report_values(run_id);
		`,
	},
}

// Migrate applies all pending migrations to the given database
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := db.Exec(
			"INSERT INTO migrations (version, name) VALUES (?, ?)",
			m.Version, m.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		log.Printf("[Migrations] Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

// initMigrationsTable creates the migrations tracking table
func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedMigrations returns the set of applied migration versions
func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
