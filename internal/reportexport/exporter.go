// Package reportexport hands finalized job reports to external sinks.
package reportexport

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

// Exporter receives every finalized job report.
type Exporter interface {
	Export(ctx context.Context, report domain.JobReport) error
}

// NoopExporter drops reports.
type NoopExporter struct{}

func (NoopExporter) Export(ctx context.Context, report domain.JobReport) error {
	return nil
}

// LogExporter writes a one-line summary of each report.
type LogExporter struct {
	Logger zerolog.Logger
}

func (e LogExporter) Export(ctx context.Context, report domain.JobReport) error {
	event := e.Logger.Trace()
	if report.Status() == domain.JobStatusFailed {
		event = e.Logger.Error()
	}
	event.
		Str("job_id", report.JobID).
		Str("kind", string(report.Kind)).
		Str("status", string(report.Status())).
		Int("parameters", len(report.Outcomes)).
		Int("failed_parameters", report.FailedCount()).
		Str("artifact", report.ArtifactPath).
		Str("fatal_error", report.FatalError).
		Msg("job report")
	return nil
}

// Multi fans a report out to several exporters and joins their errors.
type Multi []Exporter

func (m Multi) Export(ctx context.Context, report domain.JobReport) error {
	var errs []error
	for _, exp := range m {
		if exp == nil {
			continue
		}
		if err := exp.Export(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
