package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawrench-labs/dawrench-go/internal/document/documenttest"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

type recordingSignal struct {
	started []string
	stopped []string
}

func (r *recordingSignal) Start(scope string) func() {
	r.started = append(r.started, scope)
	return func() { r.stopped = append(r.stopped, scope) }
}

// workspace lays out <tmp>/work/Wrench with a document and a nested folder.
func workspace(t *testing.T) (string, *documenttest.Fake) {
	t.Helper()
	docDir := filepath.Join(t.TempDir(), "work", "Wrench")
	require.NoError(t, os.MkdirAll(filepath.Join(docDir, "Parts"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(docDir, "Empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "Wrench.iam"), []byte("assembly"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "Parts", "Jaw.ipt"), []byte("jaw part"), 0o644))
	doc := documenttest.New(filepath.Join(docDir, "Wrench.iam"), map[string]string{"Length": "100 mm"})
	return docDir, doc
}

func zipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	out := make(map[string]string)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			out[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(data)
	}
	return out
}

func TestPersistWritesArtifactNextToOutputDir(t *testing.T) {
	docDir, doc := workspace(t)
	signal := &recordingSignal{}

	artifact, err := NewPersister(zerolog.Nop(), signal).Persist(doc, docDir, DefaultArtifactName)
	require.NoError(t, err)

	wantPath := filepath.Join(filepath.Dir(docDir), "result.zip")
	assert.Equal(t, wantPath, artifact.Path)
	assert.Equal(t, 1, doc.Saves)
	assert.Equal(t, 1, doc.Closes)
	assert.Equal(t, []string{"package"}, signal.started)
	assert.Equal(t, []string{"package"}, signal.stopped)

	entries := zipEntries(t, artifact.Path)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"Empty/", "Parts/", "Parts/Jaw.ipt", "Wrench.iam"}, names)
	assert.Equal(t, "jaw part", entries["Parts/Jaw.ipt"])

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), artifact.SHA256)
	assert.Equal(t, int64(len(data)), artifact.Size)
}

func TestPersistOverwritesStaleArtifact(t *testing.T) {
	docDir, doc := workspace(t)
	stale := filepath.Join(filepath.Dir(docDir), "result.zip")
	require.NoError(t, os.WriteFile(stale, []byte("not a zip"), 0o644))

	artifact, err := NewPersister(zerolog.Nop(), nil).Persist(doc, docDir, DefaultArtifactName)
	require.NoError(t, err)
	assert.Contains(t, zipEntries(t, artifact.Path), "Wrench.iam")

	second := documenttest.New(doc.Path(), nil)
	again, err := NewPersister(zerolog.Nop(), nil).Persist(second, docDir, DefaultArtifactName)
	require.NoError(t, err)
	assert.Equal(t, artifact.Path, again.Path)
	assert.NotEmpty(t, again.SHA256)
	assert.Contains(t, zipEntries(t, again.Path), "Parts/Jaw.ipt")
}

func TestPersistSaveFailureIsFatalAndClosesDocument(t *testing.T) {
	docDir, doc := workspace(t)
	doc.SaveErr = errors.New("disk locked")
	signal := &recordingSignal{}

	_, err := NewPersister(zerolog.Nop(), signal).Persist(doc, docDir, DefaultArtifactName)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.Equal(t, 1, doc.Closes)
	assert.Empty(t, signal.started)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(docDir), "result.zip"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPersistPackagingFailure(t *testing.T) {
	docDir, doc := workspace(t)
	// A non-empty directory at the artifact path cannot be replaced.
	blocker := filepath.Join(filepath.Dir(docDir), "result.zip")
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "keep"), 0o755))

	_, err := NewPersister(zerolog.Nop(), nil).Persist(doc, docDir, DefaultArtifactName)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPackaging)
	assert.Equal(t, 1, doc.Saves)
	assert.Equal(t, 1, doc.Closes)
}

func TestPersistMissingOutputDir(t *testing.T) {
	base := t.TempDir()
	doc := documenttest.New(filepath.Join(base, "gone", "a.iam"), nil)

	_, err := NewPersister(zerolog.Nop(), nil).Persist(doc, filepath.Join(base, "gone"), DefaultArtifactName)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPackaging)
	_, statErr := os.Stat(filepath.Join(base, "result.zip"))
	assert.True(t, os.IsNotExist(statErr), "partial artifact left behind")
}

func TestPersistCloseErrorIsNotFatal(t *testing.T) {
	docDir, doc := workspace(t)
	doc.CloseErr = errors.New("handle busy")

	_, err := NewPersister(zerolog.Nop(), nil).Persist(doc, docDir, DefaultArtifactName)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Closes)
}

func TestArtifactPath(t *testing.T) {
	got, err := ArtifactPath(filepath.Join("work", "Wrench")+string(filepath.Separator), "result.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("work", "result.zip"), got)

	for _, name := range []string{"", "..", "a/b.zip", `a\b.zip`} {
		_, err := ArtifactPath("work/Wrench", name)
		assert.Error(t, err, "name %q", name)
	}
	_, err = ArtifactPath("", "result.zip")
	assert.Error(t, err)
	_, err = ArtifactPath(string(filepath.Separator), "result.zip")
	assert.Error(t, err)
}
