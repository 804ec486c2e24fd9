// Package plugin is the entry surface a design-automation host calls into.
package plugin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
	"github.com/dawrench-labs/dawrench-go/internal/job"
)

// Automation exposes the two host entry points.
type Automation struct {
	logger zerolog.Logger
	runner *job.Runner
}

func NewAutomation(logger zerolog.Logger, runner *job.Runner) *Automation {
	return &Automation{logger: logger, runner: runner}
}

// Run is called by hosts that pass no arguments. It only records the call.
func (a *Automation) Run(doc document.Document) {
	a.logger.Trace().Str("document", doc.DisplayName()).Msgf("run called with %s", doc.DisplayName())
}

// RunWithArguments runs the batch parameter update job on doc.
func (a *Automation) RunWithArguments(ctx context.Context, doc document.Document, args job.Arguments) domain.JobReport {
	return a.runner.Run(ctx, doc, args)
}
