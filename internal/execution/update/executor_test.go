package update

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/document/documenttest"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

func mustSet(t *testing.T, entries ...domain.Parameter) domain.ParameterSet {
	t.Helper()
	set, err := domain.NewParameterSet(entries)
	if err != nil {
		t.Fatalf("NewParameterSet() err=%v", err)
	}
	return set
}

func TestApplySetsExistingParameters(t *testing.T) {
	doc := documenttest.New("/work/Wrench/Wrench.iam", map[string]string{"Length": "100 mm", "Width": "50 mm"})
	set := mustSet(t, domain.Parameter{Name: "Length", Value: "10 mm"})

	outcomes := NewExecutor(zerolog.Nop()).Apply(doc, set)

	want := []domain.ParameterOutcome{{Name: "Length", Applied: true}}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Expressions()["Length"]; got != "10 mm" {
		t.Fatalf("Length=%q, want 10 mm", got)
	}
	if got := doc.Expressions()["Width"]; got != "50 mm" {
		t.Fatalf("Width=%q, want unchanged", got)
	}
}

func TestApplyIsolatesFailures(t *testing.T) {
	doc := documenttest.New("/work/Wrench/Wrench.iam", map[string]string{
		"Length": "100 mm",
		"Width":  "50 mm",
		"Angle":  "30 deg",
		"Height": "5 mm",
	})
	doc.FailOn("Width", fmt.Errorf("%w: unit mismatch", domain.ErrExpression))
	doc.PanicOn("Angle")

	set := mustSet(t,
		domain.Parameter{Name: "Length", Value: "10 mm"},
		domain.Parameter{Name: "Bogus", Value: "1"},
		domain.Parameter{Name: "Width", Value: "5 kg"},
		domain.Parameter{Name: "Angle", Value: "45 deg"},
		domain.Parameter{Name: "Height", Value: "7 mm"},
	)

	outcomes := NewExecutor(zerolog.Nop()).Apply(doc, set)

	want := []domain.ParameterOutcome{
		{Name: "Length", Applied: true},
		{Name: "Bogus", ErrorDetail: "parameter not found"},
		{Name: "Width", ErrorDetail: "invalid expression: unit mismatch"},
		{Name: "Angle", ErrorDetail: "set Angle: host rejected Angle"},
		{Name: "Height", Applied: true},
	}
	if diff := cmp.Diff(want, outcomes); diff != "" {
		t.Fatalf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if len(outcomes) != set.Len() {
		t.Fatalf("len(outcomes)=%d, want %d", len(outcomes), set.Len())
	}
	if got := doc.Expressions()["Height"]; got != "7 mm" {
		t.Fatalf("Height=%q, want 7 mm", got)
	}
	if got := doc.Expressions()["Width"]; got != "50 mm" {
		t.Fatalf("Width=%q, want unchanged", got)
	}
}

func TestApplyAttemptsEachParameterOnce(t *testing.T) {
	doc := documenttest.New("/work/a/a.iam", map[string]string{"A": "1", "B": "2"})
	doc.FailOn("A", domain.ErrExpression)
	set := mustSet(t, domain.Parameter{Name: "A", Value: "x"}, domain.Parameter{Name: "B", Value: "y"})

	NewExecutor(zerolog.Nop()).Apply(doc, set)

	if diff := cmp.Diff([]string{"A", "B"}, doc.SetCalls); diff != "" {
		t.Fatalf("set calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEmptySet(t *testing.T) {
	doc := documenttest.New("/work/a/a.iam", nil)
	outcomes := NewExecutor(zerolog.Nop()).Apply(doc, domain.ParameterSet{})
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %v", outcomes)
	}
}

func TestApplyLogsTraceAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	doc := documenttest.New("/work/a/a.iam", map[string]string{"A": "1"})
	set := mustSet(t, domain.Parameter{Name: "A", Value: "2"}, domain.Parameter{Name: "Missing", Value: "3"})

	NewExecutor(logger).Apply(doc, set)

	logged := buf.String()
	if !strings.Contains(logged, "setting A to 2") {
		t.Fatalf("expected trace entry, got %s", logged)
	}
	if !strings.Contains(logged, `"level":"error"`) || !strings.Contains(logged, "cannot update 'Missing' parameter") {
		t.Fatalf("expected error entry, got %s", logged)
	}
}
