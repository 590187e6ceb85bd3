// Package store persists diagnostic sessions in a local SQLite database so
// technicians can review and prune past runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SessionRecord represents a stored diagnostic session row.
type SessionRecord struct {
	ID           string
	Technician   string
	Workbench    string
	Hostname     string
	CollectedAt  time.Time
	CreatedAt    time.Time
	SnapshotJSON string
	ResultsJSON  string
	ReportPath   string
	TotalTests   int
	PassedTests  int
}

// ListFilter holds optional query parameters for listing sessions.
type ListFilter struct {
	Technician    string
	Workbench     string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	PageSize      int
	Page          int
}

// Store provides CRUD operations for session records.
type Store struct {
	db *sql.DB
}

// New opens the SQLite database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a session record and returns its assigned ID and created_at
// time. A blank ID gets a fresh UUID.
func (s *Store) Insert(ctx context.Context, rec *SessionRecord) (string, time.Time, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, technician, workbench, hostname, collected_at, created_at,
		                       snapshot_json, results_json, report_path, total_tests, passed_tests)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.Technician,
		rec.Workbench,
		rec.Hostname,
		rec.CollectedAt.UTC().Format(time.RFC3339),
		createdAt.Format(time.RFC3339),
		rec.SnapshotJSON,
		rec.ResultsJSON,
		rec.ReportPath,
		rec.TotalTests,
		rec.PassedTests,
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("insert session: %w", err)
	}

	return id, createdAt, nil
}

// Get retrieves a session record by ID.
func (s *Store) Get(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, technician, workbench, hostname, collected_at, created_at,
		        snapshot_json, results_json, report_path, total_tests, passed_tests
		 FROM sessions WHERE id = ?`, id)

	return scanRecord(row)
}

// Delete removes a session record by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// List returns session summaries matching the given filter. The summary rows
// omit the snapshot and results JSON blobs.
func (s *Store) List(ctx context.Context, f ListFilter) ([]SessionRecord, int, error) {
	where, args := buildWhere(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM sessions" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := `SELECT id, technician, workbench, hostname, collected_at, created_at,
		'', '', report_path, total_tests, passed_tests
		FROM sessions` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		rec, err := scanRecordFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}

	return records, total, rows.Err()
}

// Purge deletes session records older than the given duration and returns
// the number of rows removed.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return result.RowsAffected()
}

func buildWhere(f ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Technician != "" {
		conditions = append(conditions, "technician = ?")
		args = append(args, f.Technician)
	}
	if f.Workbench != "" {
		conditions = append(conditions, "workbench = ?")
		args = append(args, f.Workbench)
	}
	if f.CreatedAfter != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.CreatedAfter.UTC().Format(time.RFC3339))
	}
	if f.CreatedBefore != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, f.CreatedBefore.UTC().Format(time.RFC3339))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	where := " WHERE "
	for i, c := range conditions {
		if i > 0 {
			where += " AND "
		}
		where += c
	}
	return where, args
}

func scanRecord(row *sql.Row) (*SessionRecord, error) {
	var rec SessionRecord
	var collectedAt, createdAt string
	err := row.Scan(&rec.ID, &rec.Technician, &rec.Workbench, &rec.Hostname,
		&collectedAt, &createdAt, &rec.SnapshotJSON, &rec.ResultsJSON,
		&rec.ReportPath, &rec.TotalTests, &rec.PassedTests)
	if err != nil {
		return nil, err
	}

	rec.CollectedAt, _ = time.Parse(time.RFC3339, collectedAt)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &rec, nil
}

func scanRecordFromRows(rows *sql.Rows) (*SessionRecord, error) {
	var rec SessionRecord
	var collectedAt, createdAt string
	err := rows.Scan(&rec.ID, &rec.Technician, &rec.Workbench, &rec.Hostname,
		&collectedAt, &createdAt, &rec.SnapshotJSON, &rec.ResultsJSON,
		&rec.ReportPath, &rec.TotalTests, &rec.PassedTests)
	if err != nil {
		return nil, err
	}

	rec.CollectedAt, _ = time.Parse(time.RFC3339, collectedAt)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &rec, nil
}
