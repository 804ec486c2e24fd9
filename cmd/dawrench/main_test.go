package main

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/document/documenttest"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
	repopg "github.com/dawrench-labs/dawrench-go/internal/repo/postgres"
	"github.com/dawrench-labs/dawrench-go/internal/repo/postgres/sqltest"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DAWRENCH_LOG_LEVEL", "error")
	t.Setenv("DAWRENCH_REPORT_PATH", "")
	t.Setenv("DAWRENCH_DATABASE_URL", "")
}

func writeProject(t *testing.T, params string) string {
	t.Helper()
	project := t.TempDir()
	inputs := filepath.Join(project, "inputFiles")
	require.NoError(t, os.MkdirAll(inputs, 0o755))
	doc := "parameters:\n  - name: Length\n    expression: 100 mm\n"
	require.NoError(t, os.WriteFile(filepath.Join(inputs, "Wrench.iam"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inputs, "params.json"), []byte(params), 0o644))
	return project
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRunCommandPrintsReport(t *testing.T) {
	isolateEnv(t)
	project := writeProject(t, `{"Length":"120 mm"}`)

	out, err := execute(t, "run", "--project", project)
	require.NoError(t, err)

	var report domain.JobReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.JobStatusSucceeded, report.Status())
	assert.Equal(t, filepath.Join(project, "result.zip"), report.ArtifactPath)
	assert.FileExists(t, report.ArtifactPath)
}

func TestRunCommandFailsOnFatalReport(t *testing.T) {
	isolateEnv(t)
	project := writeProject(t, `{"Length":"120 mm"}`)

	out, err := execute(t, "run", "--project", project, "--params", filepath.Join(project, "missing.json"))
	require.Error(t, err)

	var report domain.JobReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Contains(t, report.FatalError, "parameter file unavailable")
	assert.NoFileExists(t, filepath.Join(project, "result.zip"))
}

func TestRunCommandArgOverride(t *testing.T) {
	isolateEnv(t)
	project := writeProject(t, `{"Length":"bad"}`)
	override := filepath.Join(project, "other.json")
	require.NoError(t, os.WriteFile(override, []byte(`{"Length":"90 mm"}`), 0o644))

	out, err := execute(t, "run", "--project", project, "--arg", "_1="+override)
	require.NoError(t, err)
	assert.Contains(t, out, `"applied": true`)

	_, err = execute(t, "run", "--project", project, "--arg", "nope")
	assert.Error(t, err)
}

func TestActivityCommand(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "activity", "--owner", "acme")
	require.NoError(t, err)

	var got struct {
		AppBundle struct {
			ID     string `json:"id"`
			Engine string `json:"engine"`
		} `json:"appBundle"`
		Activity struct {
			AppBundles []string `json:"appbundles"`
		} `json:"activity"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "DaWrenchConfig", got.AppBundle.ID)
	assert.Equal(t, "Autodesk.Inventor+24", got.AppBundle.Engine)
	assert.Equal(t, []string{"acme.DaWrenchConfig+alpha"}, got.Activity.AppBundles)
}

func TestWorkItemCommandRequiresFlags(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "workitem", "--bucket", "b")
	assert.Error(t, err)
}

func TestRunCommandLogsDocumentCloseError(t *testing.T) {
	isolateEnv(t)
	project := writeProject(t, `{"Length":"120 mm"}`)
	fake := documenttest.New(filepath.Join(project, "inputFiles", "Wrench.iam"), map[string]string{"Length": "100 mm"})
	fake.CloseErr = errors.New("host refused close")

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.openDocument = func(string) (document.Document, error) { return fake, nil }
	cmd := newAppRootCmd(a)
	cmd.SetArgs([]string{"run", "--project", project})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 2, fake.Closes)
	assert.Equal(t, 2, strings.Count(stderr.String(), "host refused close"), stderr.String())
}

func TestReportCommandRequiresDatabase(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "report", "job-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAWRENCH_DATABASE_URL")

	_, err = execute(t, "report")
	assert.Error(t, err)
}

func TestPrintStoredReport(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	db, _ := sqltest.Open(
		sqltest.Result{
			Columns: []string{"job_id", "document", "kind", "outcomes", "artifact_path", "artifact_sha256", "artifact_size", "fatal_error", "started_at", "finished_at"},
			Rows: [][]driver.Value{{
				"job-1", "/work/Wrench/Wrench.iam", "assembly", []byte(`[{"name":"Length","applied":true}]`),
				"/work/result.zip", "abc", int64(42), nil, at, at,
			}},
		},
		sqltest.Result{Columns: []string{"job_id"}},
	)
	defer db.Close()

	var stdout bytes.Buffer
	a := newApp(&stdout, &bytes.Buffer{})
	store := repopg.NewReportStore(db)

	require.NoError(t, a.printStoredReport(context.Background(), store, "job-1"))
	var report domain.JobReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, "job-1", report.JobID)
	assert.Equal(t, domain.JobStatusSucceeded, report.Status())
	assert.Equal(t, "/work/result.zip", report.ArtifactPath)

	err := a.printStoredReport(context.Background(), store, "job-9")
	assert.ErrorIs(t, err, repopg.ErrReportNotFound)
}
