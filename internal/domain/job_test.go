package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewJob(t *testing.T) {
	now := time.Now().UTC()
	job := NewJob("job-1", now)

	if job.Status != JobStatusPending {
		t.Errorf("expected status=%s, got %s", JobStatusPending, job.Status)
	}
	if job.Progress != 0 {
		t.Errorf("expected progress=0, got %d", job.Progress)
	}
	if !job.CreatedAt.Equal(now) || !job.UpdatedAt.Equal(now) {
		t.Error("expected created_at and updated_at to be set")
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{JobStatusPending, false},
		{JobStatusProcessing, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
	}

	for _, tt := range tests {
		if got := (Job{Status: tt.status}).Terminal(); got != tt.want {
			t.Errorf("Terminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestJobUpdateApply(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	job := NewJob("job-1", created)

	status := JobStatusProcessing
	progress := 25
	later := created.Add(time.Minute)

	JobUpdate{Status: &status, Progress: &progress}.Apply(&job, later)

	if job.Status != JobStatusProcessing {
		t.Errorf("expected status updated, got %s", job.Status)
	}
	if job.Progress != 25 {
		t.Errorf("expected progress updated, got %d", job.Progress)
	}
	if !job.UpdatedAt.Equal(later) {
		t.Error("expected updated_at bumped")
	}
	if !job.CreatedAt.Equal(created) {
		t.Error("expected created_at untouched")
	}

	// nil fields leave values alone
	errMsg := "boom"
	JobUpdate{Error: &errMsg}.Apply(&job, later.Add(time.Minute))
	if job.Status != JobStatusProcessing || job.Progress != 25 {
		t.Error("expected nil update fields to be ignored")
	}
	if job.Error != "boom" {
		t.Errorf("expected error set, got %q", job.Error)
	}
}

func TestSceneUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Scene
	}{
		{
			name: "numeric id",
			in:   `{"id": 3, "narration": "a quiet morning"}`,
			want: Scene{ID: "3", Narration: "a quiet morning"},
		},
		{
			name: "string id",
			in:   `{"id": "intro"}`,
			want: Scene{ID: "intro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Scene
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateScenes(t *testing.T) {
	tests := []struct {
		name    string
		scenes  []Scene
		wantErr bool
	}{
		{"valid", []Scene{{ID: "1"}, {ID: "2"}}, false},
		{"empty list", nil, true},
		{"blank id", []Scene{{ID: " "}}, true},
		{"duplicate id", []Scene{{ID: "1"}, {ID: "1"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScenes(tt.scenes)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScenes() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
