// Package pipeline drives a render job from submitted bundle to final video:
// ingestion, per-scene segment synthesis, concatenation, and publication.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"reelforge/internal/pkg/logger"
)

// Workspace is the directory owned exclusively by one job for its lifetime.
// It holds the extracted media, intermediate segments, the concat list and
// the final output, and is removed on every terminal transition.
type Workspace struct {
	root string
}

// NewWorkspace creates the job's directory tree under baseRoot, named
// deterministically from the job id.
func NewWorkspace(baseRoot, jobID string) (*Workspace, error) {
	ws := &Workspace{root: filepath.Join(baseRoot, jobID)}

	for _, dir := range []string{ws.ImagesDir(), ws.VoiceoversDir(), ws.SegmentsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace: %w", err)
		}
	}
	return ws, nil
}

func (w *Workspace) Root() string          { return w.root }
func (w *Workspace) ImagesDir() string     { return filepath.Join(w.root, "images") }
func (w *Workspace) VoiceoversDir() string { return filepath.Join(w.root, "voiceovers") }
func (w *Workspace) SegmentsDir() string   { return filepath.Join(w.root, "segments") }

// SegmentPath returns the output path for the nth produced segment.
func (w *Workspace) SegmentPath(n int) string {
	return filepath.Join(w.SegmentsDir(), fmt.Sprintf("segment-%04d.mp4", n))
}

func (w *Workspace) ConcatListPath() string {
	return filepath.Join(w.root, "segments.txt")
}

func (w *Workspace) OutputPath() string {
	return filepath.Join(w.root, "output.mp4")
}

// Remove deletes the workspace recursively. It runs on both success and
// failure paths; a deletion error is logged, never propagated.
func (w *Workspace) Remove(log *logger.Logger) {
	if err := os.RemoveAll(w.root); err != nil {
		log.Warn("workspace removal failed",
			"workspace", w.root,
			"error", err.Error(),
		)
	}
}
