// Package domain holds the core types of the render pipeline: jobs,
// manifests, and their lifecycle rules.
package domain

import "time"

// Render job statuses. A job moves pending -> processing -> completed|failed;
// the terminal states are final and a failed job requires a fresh submission.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Job is the durable record of one render request.
//
// Exactly one of ResultRef/Error is set once the job is terminal. Progress is
// monotonically non-decreasing and reads 100 once completed.
type Job struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	ResultRef     string    `json:"result_ref,omitempty"`
	Error         string    `json:"error,omitempty"`
	SkippedScenes int       `json:"skipped_scenes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewJob returns a fresh pending job record.
func NewJob(id string, now time.Time) Job {
	return Job{
		ID:        id,
		Status:    JobStatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the job has reached a final state.
func (j Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// JobUpdate is a partial update of a job record. Nil fields are left
// untouched by Store.Update.
type JobUpdate struct {
	Status        *string
	Progress      *int
	ResultRef     *string
	Error         *string
	SkippedScenes *int
}

// Apply merges the update into the job, bumping UpdatedAt.
func (u JobUpdate) Apply(j *Job, now time.Time) {
	if u.Status != nil {
		j.Status = *u.Status
	}
	if u.Progress != nil {
		j.Progress = *u.Progress
	}
	if u.ResultRef != nil {
		j.ResultRef = *u.ResultRef
	}
	if u.Error != nil {
		j.Error = *u.Error
	}
	if u.SkippedScenes != nil {
		j.SkippedScenes = *u.SkippedScenes
	}
	j.UpdatedAt = now
}
