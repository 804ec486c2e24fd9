// Package packaging saves a job's document and archives its directory into a
// single result artifact.
package packaging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
	"github.com/dawrench-labs/dawrench-go/internal/heartbeat"
)

const DefaultArtifactName = "result.zip"

// Persister recomputes and saves a document, releases it, then zips the
// output directory next to itself.
type Persister struct {
	logger   zerolog.Logger
	liveness heartbeat.Signal
}

func NewPersister(logger zerolog.Logger, liveness heartbeat.Signal) *Persister {
	if liveness == nil {
		liveness = heartbeat.Nop{}
	}
	return &Persister{logger: logger, liveness: liveness}
}

// Persist saves doc, closes it on every path, and writes the archive of
// outputDir to <parent of outputDir>/<artifactName>, replacing any previous
// artifact there. Save failures wrap domain.ErrPersist; archive failures wrap
// domain.ErrPackaging.
func (p *Persister) Persist(doc document.Document, outputDir, artifactName string) (Artifact, error) {
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		p.logger.Trace().Str("document", doc.Path()).Msg("closing document")
		if err := doc.Close(); err != nil {
			p.logger.Error().Err(err).Str("document", doc.Path()).Msg("close document failed")
		}
	}
	defer release()

	p.logger.Trace().Str("document", doc.Path()).Msg("saving updated document")
	if err := doc.RecomputeAndSave(); err != nil {
		p.logger.Error().Err(err).Str("document", doc.Path()).Msg("save document failed")
		return Artifact{}, fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	// Release before archiving so the host no longer holds the files.
	release()

	artifactPath, err := ArtifactPath(outputDir, artifactName)
	if err != nil {
		p.logger.Error().Err(err).Str("output_dir", outputDir).Msg("resolve artifact path failed")
		return Artifact{}, fmt.Errorf("%w: %w", domain.ErrPackaging, err)
	}

	p.logger.Trace().Str("artifact", artifactPath).Msgf("zipping up %s", artifactPath)
	if err := removeStale(artifactPath); err != nil {
		p.logger.Error().Err(err).Str("artifact", artifactPath).Msg("remove previous artifact failed")
		return Artifact{}, fmt.Errorf("%w: %w", domain.ErrPackaging, err)
	}

	stop := p.liveness.Start("package")
	artifact, err := Archive(outputDir, artifactPath)
	stop()
	if err != nil {
		p.logger.Error().Err(err).Str("artifact", artifactPath).Msg("archive output directory failed")
		return Artifact{}, fmt.Errorf("%w: %w", domain.ErrPackaging, err)
	}

	p.logger.Trace().
		Str("artifact", artifact.Path).
		Int64("size", artifact.Size).
		Str("sha256", artifact.SHA256).
		Msgf("saved as %s", artifact.Path)
	return artifact, nil
}

func removeStale(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
