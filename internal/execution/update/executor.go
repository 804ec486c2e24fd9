package update

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

// Executor applies a parameter set to a document. A failing parameter is
// recorded and never stops the batch.
type Executor struct {
	logger zerolog.Logger
}

func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Apply attempts every entry of set exactly once, in set order, and returns one
// outcome per entry. Successful writes stay on the document even when later
// entries fail.
func (e *Executor) Apply(doc document.Document, set domain.ParameterSet) []domain.ParameterOutcome {
	outcomes := make([]domain.ParameterOutcome, 0, set.Len())
	for _, entry := range set.Entries() {
		e.logger.Trace().Str("parameter", entry.Name).Str("value", entry.Value).
			Msgf("setting %s to %s", entry.Name, entry.Value)

		if err := e.applyOne(doc, entry); err != nil {
			e.logger.Error().Err(err).Str("parameter", entry.Name).
				Msgf("cannot update '%s' parameter", entry.Name)
			outcomes = append(outcomes, domain.FailedOutcome(entry.Name, err))
			continue
		}
		outcomes = append(outcomes, domain.AppliedOutcome(entry.Name))
	}
	return outcomes
}

func (e *Executor) applyOne(doc document.Document, entry domain.Parameter) (err error) {
	// Host bindings may panic on bad input; that is still a per-parameter failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("set %s: %v", entry.Name, r)
		}
	}()

	param, ok := doc.Parameter(entry.Name)
	if !ok || param == nil {
		return domain.ErrParameterNotFound
	}
	return param.SetExpression(entry.Value)
}
