// Package postgres stores finalized job reports.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

var ErrReportNotFound = errors.New("job report not found")

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS dawrench_job_reports (
	job_id           TEXT PRIMARY KEY,
	document         TEXT NOT NULL,
	kind             TEXT NOT NULL,
	status           TEXT NOT NULL,
	outcomes         JSONB NOT NULL,
	failed_count     INTEGER NOT NULL,
	artifact_path    TEXT,
	artifact_sha256  TEXT,
	artifact_size    BIGINT NOT NULL DEFAULT 0,
	fatal_error      TEXT,
	started_at       TIMESTAMPTZ NOT NULL,
	finished_at      TIMESTAMPTZ NOT NULL
)`

const insertReportSQL = `INSERT INTO dawrench_job_reports (
		job_id,
		document,
		kind,
		status,
		outcomes,
		failed_count,
		artifact_path,
		artifact_sha256,
		artifact_size,
		fatal_error,
		started_at,
		finished_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	ON CONFLICT (job_id) DO NOTHING`

const selectReportSQL = `SELECT
		job_id,
		document,
		kind,
		outcomes,
		artifact_path,
		artifact_sha256,
		artifact_size,
		fatal_error,
		started_at,
		finished_at
	FROM dawrench_job_reports
	WHERE job_id = $1`

// ReportStore is a report exporter backed by Postgres. Reports are
// write-once: exporting the same job twice keeps the first row.
type ReportStore struct {
	db DB
}

func NewReportStore(db DB) *ReportStore {
	if db == nil {
		return nil
	}
	return &ReportStore{db: db}
}

func (s *ReportStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("report store not initialized")
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *ReportStore) Export(ctx context.Context, report domain.JobReport) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("report store not initialized")
	}
	args, err := insertArgs(report)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertReportSQL, args...); err != nil {
		return fmt.Errorf("insert job report: %w", err)
	}
	return nil
}

func (s *ReportStore) Get(ctx context.Context, jobID string) (domain.JobReport, error) {
	if s == nil || s.db == nil {
		return domain.JobReport{}, fmt.Errorf("report store not initialized")
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return domain.JobReport{}, errors.New("job id is required")
	}

	var (
		report         domain.JobReport
		kind           string
		outcomesJSON   []byte
		artifactPath   sql.NullString
		artifactSHA256 sql.NullString
		fatalError     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, selectReportSQL, jobID).Scan(
		&report.JobID,
		&report.Document,
		&kind,
		&outcomesJSON,
		&artifactPath,
		&artifactSHA256,
		&report.ArtifactSize,
		&fatalError,
		&report.StartedAt,
		&report.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.JobReport{}, ErrReportNotFound
		}
		return domain.JobReport{}, err
	}
	outcomes, err := decodeOutcomes(outcomesJSON)
	if err != nil {
		return domain.JobReport{}, fmt.Errorf("decode outcomes: %w", err)
	}
	report.Kind = domain.DocumentKind(kind)
	report.Outcomes = outcomes
	report.ArtifactPath = artifactPath.String
	report.ArtifactSHA256 = artifactSHA256.String
	report.FatalError = fatalError.String
	report.StartedAt = report.StartedAt.UTC()
	report.FinishedAt = report.FinishedAt.UTC()
	return report, nil
}

func insertArgs(report domain.JobReport) ([]any, error) {
	jobID := strings.TrimSpace(report.JobID)
	if jobID == "" {
		return nil, errors.New("job id is required")
	}
	outcomesJSON, err := encodeOutcomes(report.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("encode outcomes: %w", err)
	}
	return []any{
		jobID,
		report.Document,
		string(report.Kind),
		string(report.Status()),
		outcomesJSON,
		report.FailedCount(),
		nullIfEmpty(report.ArtifactPath),
		nullIfEmpty(report.ArtifactSHA256),
		report.ArtifactSize,
		nullIfEmpty(report.FatalError),
		normalizeTime(report.StartedAt),
		normalizeTime(report.FinishedAt),
	}, nil
}

func encodeOutcomes(outcomes []domain.ParameterOutcome) ([]byte, error) {
	if outcomes == nil {
		outcomes = []domain.ParameterOutcome{}
	}
	return json.Marshal(outcomes)
}

func decodeOutcomes(raw []byte) ([]domain.ParameterOutcome, error) {
	out := []domain.ParameterOutcome{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ParameterOutcome{}
	}
	return out, nil
}

func nullIfEmpty(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
