package jobstore

import (
	"context"
	"testing"
	"time"

	"reelforge/internal/domain"
	"reelforge/internal/pkg/errors"
)

// contract runs the Store contract against an implementation.
func contract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	job := domain.NewJob("job-1", now)
	if err := s.Create(ctx, job); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.Create(ctx, job); !errors.IsCode(err, errors.CodeAlreadyExists) {
		t.Errorf("expected ALREADY_EXISTS on duplicate create, got %v", err)
	}

	got, err := s.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.JobStatusPending || got.Progress != 0 {
		t.Errorf("unexpected fresh job: %+v", got)
	}

	status := domain.JobStatusProcessing
	progress := 50
	if err := s.Update(ctx, "job-1", domain.JobUpdate{Status: &status, Progress: &progress}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err = s.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if got.Status != domain.JobStatusProcessing || got.Progress != 50 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.ResultRef != "" || got.Error != "" {
		t.Errorf("untouched fields changed: %+v", got)
	}

	// partial update keeps prior fields
	ref := "renders/job-1.mp4"
	done := domain.JobStatusCompleted
	hundred := 100
	if err := s.Update(ctx, "job-1", domain.JobUpdate{Status: &done, Progress: &hundred, ResultRef: &ref}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	got, _ = s.Get(ctx, "job-1")
	if got.ResultRef != ref || got.Status != domain.JobStatusCompleted || got.Progress != 100 {
		t.Errorf("terminal update not applied: %+v", got)
	}

	if err := s.Update(ctx, "nope", domain.JobUpdate{Progress: &progress}); !errors.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND updating unknown id, got %v", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND getting unknown id, got %v", err)
	}
}

func TestMemoryContract(t *testing.T) {
	contract(t, NewMemory())
}

func TestSnapshotContract(t *testing.T) {
	contract(t, NewSnapshot(t.TempDir()))
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	first := NewSnapshot(root)
	if err := first.Create(ctx, domain.NewJob("job-1", time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second := NewSnapshot(root)
	if _, err := second.Get(ctx, "job-1"); err != nil {
		t.Errorf("expected snapshot to be readable by a fresh store, got %v", err)
	}
}
