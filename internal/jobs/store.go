package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"orgscan/internal/config"
)

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const jobColumns = "id, filename, status, company_name, org_profile_json, members_json, error_message, task_id, created_at, updated_at"

// Create inserts a new pending job with a freshly minted identifier.
func (s *Store) Create(ctx context.Context, filename string) (*Job, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.New("create job: filename required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (id, filename, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		filename,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. A missing job yields (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update applies a mutation to a job inside a single transaction so a
// concurrent reader never observes a partially changed record. A missing job
// yields (nil, nil); the mutation is not invoked in that case.
func (s *Store) Update(ctx context.Context, id string, mutate func(*Job) error) (*Job, error) {
	ctx = ensureContext(ctx)

	var updated *Job
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin update tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			updated = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("load job for update: %w", err)
		}

		if err := mutate(job); err != nil {
			return err
		}
		if err := job.validate(); err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		job.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(
			ctx,
			`UPDATE jobs SET filename = ?, status = ?, company_name = ?, org_profile_json = ?,
                members_json = ?, error_message = ?, task_id = ?, updated_at = ?
             WHERE id = ?`,
			job.Filename,
			job.Status,
			job.CompanyName,
			job.OrgProfileJSON,
			job.MembersJSON,
			job.ErrorMessage,
			job.TaskID,
			job.UpdatedAt.Format(time.RFC3339Nano),
			job.ID,
		)
		if err != nil {
			return fmt.Errorf("write job: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit update: %w", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// List returns all jobs ordered by creation time, newest first.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return result, nil
}

// RequeueStuckProcessing moves jobs abandoned mid-pipeline back to pending.
// Invoked by an operator, never automatically.
func (s *Store) RequeueStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, error_message = '', task_id = '', updated_at = ? WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("requeue stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// CountByStatus aggregates job counts per lifecycle state.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job       Job
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.Filename,
		&job.Status,
		&job.CompanyName,
		&job.OrgProfileJSON,
		&job.MembersJSON,
		&job.ErrorMessage,
		&job.TaskID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if job.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &job, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
