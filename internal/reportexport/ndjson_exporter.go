package reportexport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

// NDJSONExporter writes reports as newline-delimited JSON.
type NDJSONExporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewNDJSONExporter(w io.Writer) *NDJSONExporter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONExporter{enc: enc}
}

// Open returns an exporter for cfg.Path. The closer is a no-op for stdout.
func Open(cfg Config) (*NDJSONExporter, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.Path == "-" {
		return NewNDJSONExporter(os.Stdout), nopCloser{}, nil
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open report file: %w", err)
	}
	return NewNDJSONExporter(f), f, nil
}

func (e *NDJSONExporter) Export(ctx context.Context, report domain.JobReport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(exportReportFromDomain(report))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type exportReport struct {
	JobID          string                    `json:"job_id"`
	Document       string                    `json:"document,omitempty"`
	Kind           string                    `json:"kind"`
	Status         string                    `json:"status"`
	Outcomes       []domain.ParameterOutcome `json:"outcomes"`
	ArtifactPath   string                    `json:"artifact_path,omitempty"`
	ArtifactSHA256 string                    `json:"artifact_sha256,omitempty"`
	ArtifactSize   int64                     `json:"artifact_size,omitempty"`
	FatalError     string                    `json:"fatal_error,omitempty"`
	StartedAt      string                    `json:"started_at"`
	FinishedAt     string                    `json:"finished_at"`
}

func exportReportFromDomain(report domain.JobReport) exportReport {
	outcomes := report.Outcomes
	if outcomes == nil {
		outcomes = []domain.ParameterOutcome{}
	}
	return exportReport{
		JobID:          report.JobID,
		Document:       report.Document,
		Kind:           string(report.Kind),
		Status:         string(report.Status()),
		Outcomes:       outcomes,
		ArtifactPath:   report.ArtifactPath,
		ArtifactSHA256: report.ArtifactSHA256,
		ArtifactSize:   report.ArtifactSize,
		FatalError:     report.FatalError,
		StartedAt:      report.StartedAt.UTC().Format(time.RFC3339Nano),
		FinishedAt:     report.FinishedAt.UTC().Format(time.RFC3339Nano),
	}
}
