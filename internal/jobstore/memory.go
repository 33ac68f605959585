package jobstore

import (
	"context"
	"sync"
	"time"

	"reelforge/internal/domain"
	"reelforge/internal/pkg/errors"
)

// Memory is an in-process Store used by tests.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]domain.Job)}
}

func (s *Memory) Create(_ context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return errors.AlreadyExists("job", job.ID)
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *Memory) Update(_ context.Context, id string, upd domain.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return errors.NotFound("job", id)
	}
	upd.Apply(&job, time.Now().UTC())
	s.jobs[id] = job
	return nil
}

func (s *Memory) Get(_ context.Context, id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, errors.NotFound("job", id)
	}
	return job, nil
}
