// Package job runs a batch parameter update against one host document:
// classify the document, load the parameter file, apply every parameter,
// save and package the result, then finalize a report.
package job

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
	"github.com/dawrench-labs/dawrench-go/internal/execution/update"
	"github.com/dawrench-labs/dawrench-go/internal/heartbeat"
	"github.com/dawrench-labs/dawrench-go/internal/packaging"
	"github.com/dawrench-labs/dawrench-go/internal/params"
	"github.com/dawrench-labs/dawrench-go/internal/reportexport"
)

// State is a step of the job state machine.
type State string

const (
	StateStart      State = "start"
	StateClassify   State = "classify"
	StateNoOp       State = "noop"
	StateProcessing State = "processing"
	StateDone       State = "done"
)

// Arguments are the named values the host passes with a job. Positional
// arguments use the keys "_1", "_2", and so on.
type Arguments map[string]string

// ParamFileArgument is the positional argument that names the parameter file.
const ParamFileArgument = "_1"

// Positional returns the n-th positional argument (1-based).
func (a Arguments) Positional(n int) (string, bool) {
	v, ok := a["_"+strconv.Itoa(n)]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// ParameterLoader reads a parameter file.
type ParameterLoader func(path string) (domain.ParameterSet, error)

type Options struct {
	Logger       zerolog.Logger
	Liveness     heartbeat.Signal
	Exporter     reportexport.Exporter
	ArtifactName string
	Loader       ParameterLoader
}

// Runner executes jobs one at a time. It holds no per-job state.
type Runner struct {
	logger       zerolog.Logger
	load         ParameterLoader
	executor     *update.Executor
	persister    *packaging.Persister
	liveness     heartbeat.Signal
	exporter     reportexport.Exporter
	artifactName string
	newID        func() string
	now          func() time.Time
}

func NewRunner(opts Options) *Runner {
	liveness := opts.Liveness
	if liveness == nil {
		liveness = heartbeat.Nop{}
	}
	exporter := opts.Exporter
	if exporter == nil {
		exporter = reportexport.NoopExporter{}
	}
	artifactName := strings.TrimSpace(opts.ArtifactName)
	if artifactName == "" {
		artifactName = packaging.DefaultArtifactName
	}
	load := opts.Loader
	if load == nil {
		load = params.Load
	}
	return &Runner{
		logger:       opts.Logger,
		load:         load,
		executor:     update.NewExecutor(opts.Logger),
		persister:    packaging.NewPersister(opts.Logger, liveness),
		liveness:     liveness,
		exporter:     exporter,
		artifactName: artifactName,
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// Run drives one job to StateDone and returns its finalized report. It never
// fails: job-level errors end up in the report's FatalError. ctx only scopes
// report export; a started job is not cancelled.
func (r *Runner) Run(ctx context.Context, doc document.Document, args Arguments) domain.JobReport {
	report := domain.JobReport{
		JobID:     r.newID(),
		Document:  doc.Path(),
		Outcomes:  []domain.ParameterOutcome{},
		StartedAt: r.now().UTC(),
	}
	logger := r.logger.With().Str("job_id", report.JobID).Logger()

	state := StateStart
	for state != StateDone {
		next := r.step(logger, state, doc, args, &report)
		logger.Trace().Str("from", string(state)).Str("to", string(next)).Msg("job state")
		state = next
	}

	report.FinishedAt = r.now().UTC()
	final := report.Clone()
	if err := r.exporter.Export(ctx, final); err != nil {
		logger.Error().Err(err).Msg("export job report failed")
	}
	return final
}

func (r *Runner) step(logger zerolog.Logger, state State, doc document.Document, args Arguments, report *domain.JobReport) State {
	switch state {
	case StateStart:
		logger.Trace().Str("document", doc.Path()).Msgf("processing %s", doc.Path())
		return StateClassify
	case StateClassify:
		report.Kind = doc.Kind()
		switch report.Kind {
		case domain.DocumentKindAssembly:
			logger.Trace().Msg("we have an assembly file")
			return StateProcessing
		case domain.DocumentKindPart:
			logger.Trace().Msg("part documents are not yet supported")
			return StateNoOp
		default:
			report.Kind = domain.DocumentKindOther
			return StateNoOp
		}
	case StateProcessing:
		if err := r.process(logger, doc, args, report); err != nil {
			logger.Error().Err(err).Msg("processing failed")
			report.FatalError = err.Error()
			report.ArtifactPath = ""
		}
		return StateDone
	default:
		return StateDone
	}
}

func (r *Runner) process(logger zerolog.Logger, doc document.Document, args Arguments, report *domain.JobReport) error {
	outcomes, err := r.applyParameters(logger, doc, args)
	if err != nil {
		return err
	}
	report.Outcomes = outcomes

	outputDir := filepath.Dir(doc.Path())
	artifact, err := r.persister.Persist(doc, outputDir, r.artifactName)
	if err != nil {
		return err
	}
	report.ArtifactPath = artifact.Path
	report.ArtifactSHA256 = artifact.SHA256
	report.ArtifactSize = artifact.Size
	return nil
}

func (r *Runner) applyParameters(logger zerolog.Logger, doc document.Document, args Arguments) ([]domain.ParameterOutcome, error) {
	stop := r.liveness.Start("apply-parameters")
	defer stop()

	path, ok := args.Positional(1)
	if !ok {
		return nil, fmt.Errorf("%w: missing positional argument %s", domain.ErrParameterFile, ParamFileArgument)
	}
	logger.Trace().Str("param_file", path).Msgf("reading param file %s", path)
	set, err := r.load(path)
	if err != nil {
		return nil, err
	}
	return r.executor.Apply(doc, set), nil
}
