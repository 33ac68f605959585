package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWorkspaceLayout(t *testing.T) {
	base := t.TempDir()
	ws, err := NewWorkspace(base, "job-1")
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	if ws.Root() != filepath.Join(base, "job-1") {
		t.Errorf("unexpected root: %s", ws.Root())
	}
	for _, dir := range []string{ws.ImagesDir(), ws.VoiceoversDir(), ws.SegmentsDir()} {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}
	if ws.SegmentPath(3) != filepath.Join(ws.SegmentsDir(), "segment-0003.mp4") {
		t.Errorf("unexpected segment path: %s", ws.SegmentPath(3))
	}
}

func TestWorkspaceRemove(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), "job-2")
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	ws.Remove(testLogger())

	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Errorf("workspace still present after removal: %v", err)
	}
}
