package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
)

// Artifact describes a written result archive.
type Artifact struct {
	Path   string
	SHA256 string
	Size   int64
}

// ArtifactPath resolves <parent of outputDir>/<name>. The name must be a
// plain file name.
func ArtifactPath(outputDir, name string) (string, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return "", errors.New("output directory is required")
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	dir := filepath.Clean(outputDir)
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("output directory %s has no parent", dir)
	}
	return filepath.Join(parent, name), nil
}

// Archive zips the tree under srcDir into dest. Entry names are relative to
// srcDir, so the directory itself is not part of the archive. Files are
// deflated at the fastest level.
func Archive(srcDir, dest string) (Artifact, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return Artifact{}, err
	}
	if !info.IsDir() {
		return Artifact{}, fmt.Errorf("%s is not a directory", srcDir)
	}

	f, err := os.Create(dest)
	if err != nil {
		return Artifact{}, err
	}
	sum := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(f, sum)}

	if err := writeZip(counter, srcDir, dest); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return Artifact{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return Artifact{}, err
	}
	return Artifact{Path: dest, SHA256: hexSum(sum), Size: counter.n}, nil
}

func writeZip(w io.Writer, srcDir, dest string) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	root := filepath.Clean(srcDir)
	destAbs, _ := filepath.Abs(dest)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == destAbs {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			header := &zip.FileHeader{Name: name + "/", Method: zip.Store}
			header.Modified = info.ModTime()
			header.SetMode(info.Mode())
			_, err := zw.CreateHeader(header)
			return err
		case info.Mode().IsRegular():
			return addFile(zw, path, name, info)
		default:
			return nil
		}
	})
	if walkErr != nil {
		_ = zw.Close()
		return walkErr
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(entry, src)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
