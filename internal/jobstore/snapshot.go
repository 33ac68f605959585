package jobstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"reelforge/internal/domain"
	"reelforge/internal/pkg/errors"
)

// Snapshot is the process-local Store backend: one small JSON file per job,
// written alongside the workspaces. It keeps the status-read path working
// when the shared store is briefly unreachable.
type Snapshot struct {
	root string
}

func NewSnapshot(root string) *Snapshot {
	return &Snapshot{root: root}
}

func (s *Snapshot) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

func (s *Snapshot) Create(_ context.Context, job domain.Job) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return errors.Wrap(err, "jobstore.snapshot", "create snapshot root")
	}

	f, err := os.OpenFile(s.path(job.ID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.AlreadyExists("job", job.ID)
		}
		return errors.Wrap(err, "jobstore.snapshot", "create snapshot")
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(job)
}

func (s *Snapshot) Update(ctx context.Context, id string, upd domain.JobUpdate) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	upd.Apply(&job, time.Now().UTC())
	return s.write(job)
}

func (s *Snapshot) Get(_ context.Context, id string) (domain.Job, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Job{}, errors.NotFound("job", id)
		}
		return domain.Job{}, errors.Wrap(err, "jobstore.snapshot", "read snapshot")
	}

	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.Job{}, errors.Wrap(err, "jobstore.snapshot", "decode snapshot")
	}
	return job, nil
}

// write replaces the snapshot atomically so pollers never observe a torn
// file.
func (s *Snapshot) write(job domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "jobstore.snapshot", "marshal job")
	}

	tmp := s.path(job.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "jobstore.snapshot", "write snapshot")
	}
	if err := os.Rename(tmp, s.path(job.ID)); err != nil {
		return errors.Wrap(err, "jobstore.snapshot", "replace snapshot")
	}
	return nil
}
