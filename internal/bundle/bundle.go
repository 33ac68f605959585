// Package bundle parses and extracts the project archive supplied at
// submission: two JSON manifests plus namespaced image and voiceover entries.
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"reelforge/internal/domain"
	"reelforge/internal/pkg/errors"
)

const (
	projectManifest = "project.json"
	scenesManifest  = "scenes.json"
	imagesPrefix    = "images/"
	voiceoverPrefix = "voiceovers/"
)

// Bundle is a parsed submission archive. Parse validates the manifests;
// ExtractTo materializes the media entries into a workspace.
type Bundle struct {
	Meta   domain.ProjectMeta
	Scenes []domain.Scene

	zr *zip.Reader
}

// Parse opens the archive and decodes both required manifests. Any missing
// or malformed manifest is an INVALID_BUNDLE error; synthesis must not start
// on a bundle that fails here.
func Parse(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidBundle, "bundle.parse", "not a readable archive")
	}

	b := &Bundle{zr: zr}

	if err := readJSON(zr, projectManifest, &b.Meta); err != nil {
		return nil, err
	}
	if err := readJSON(zr, scenesManifest, &b.Scenes); err != nil {
		return nil, err
	}
	if err := domain.ValidateScenes(b.Scenes); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidBundle, "bundle.parse", "invalid scene list")
	}

	return b, nil
}

// ExtractTo writes every images/ entry into imagesDir and every voiceovers/
// entry into voiceoverDir, preserving base filenames. Nothing is written
// outside the two directories. Two entries that collapse to the same base
// filename would overwrite each other, so that is rejected as an invalid
// bundle.
func (b *Bundle) ExtractTo(imagesDir, voiceoverDir string) error {
	for _, dir := range []string{imagesDir, voiceoverDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "bundle.extract", "create extraction directory")
		}
	}

	written := make(map[string]string, len(b.zr.File))
	for _, f := range b.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := path.Clean(f.Name)
		var dst string
		switch {
		case strings.HasPrefix(name, imagesPrefix):
			dst = imagesDir
		case strings.HasPrefix(name, voiceoverPrefix):
			dst = voiceoverDir
		default:
			continue
		}

		base := sanitizeFilename(path.Base(name))
		if base == "" {
			continue
		}

		target := filepath.Join(dst, base)
		if prev, ok := written[target]; ok {
			return errors.InvalidBundlef("duplicate filename %s: %s collides with %s", base, name, prev)
		}
		written[target] = name

		if err := extractFile(f, target); err != nil {
			return errors.Wrapf(err, "bundle.extract", "extract %s", name)
		}
	}

	return nil
}

func readJSON(zr *zip.Reader, name string, into any) error {
	f, err := zr.Open(name)
	if err != nil {
		return errors.InvalidBundlef("missing manifest: %s", name)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(into); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidBundle, "bundle.parse", "malformed manifest: "+name)
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// sanitizeFilename strips path-escape characters from an archive entry name.
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
