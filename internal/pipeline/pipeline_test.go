package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"reelforge/internal/domain"
	"reelforge/internal/ffmpeg"
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/errors"
	"reelforge/internal/pkg/logger"
)

// fakeEncoder records render calls and writes placeholder output files so
// downstream stages can consume them.
type fakeEncoder struct {
	mu          sync.Mutex
	specs       []ffmpeg.SegmentSpec
	concatLists []string
	failRender  bool
	failConcat  bool
}

func (f *fakeEncoder) RenderSegment(_ context.Context, spec ffmpeg.SegmentSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRender {
		return errors.EncodingFailure(fmt.Errorf("exit status 1"), "ffmpeg.segment", "segment render failed")
	}
	f.specs = append(f.specs, spec)
	return os.WriteFile(spec.OutputPath, []byte("segment"), 0o644)
}

func (f *fakeEncoder) Concat(_ context.Context, listPath, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failConcat {
		return errors.EncodingFailure(fmt.Errorf("exit status 1"), "ffmpeg.concat", "concatenation failed")
	}
	f.concatLists = append(f.concatLists, listPath)
	return os.WriteFile(outputPath, []byte("final-video"), 0o644)
}

// fakeProber returns durations keyed by audio file base name.
type fakeProber struct {
	durations map[string]float64
	err       error
}

func (f *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if d, ok := f.durations[baseName(path)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("no duration for %s", path)
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

// newWorkspaceWith builds a workspace populated with the given image and
// voiceover file names.
func newWorkspaceWith(t *testing.T, images, voiceovers []string) *Workspace {
	t.Helper()

	ws, err := NewWorkspace(t.TempDir(), "job-test")
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	for _, name := range images {
		mustWrite(t, ws.ImagesDir()+"/"+name)
	}
	for _, name := range voiceovers {
		mustWrite(t, ws.VoiceoversDir()+"/"+name)
	}
	return ws
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// buildBundle assembles a submission archive from name -> content pairs.
func buildBundle(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// recordingStore captures the progress values written through it.
type recordingStore struct {
	jobstore.Store
	mu       sync.Mutex
	progress []int
}

func (r *recordingStore) Update(ctx context.Context, id string, upd domain.JobUpdate) error {
	r.mu.Lock()
	if upd.Progress != nil {
		r.progress = append(r.progress, *upd.Progress)
	}
	r.mu.Unlock()
	return r.Store.Update(ctx, id, upd)
}

func (r *recordingStore) recorded() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.progress))
	copy(out, r.progress)
	return out
}
