// Package jobstore persists render job records.
//
// The service writes every update through two backends: a shared store
// reachable from any process (Redis by default, Postgres optional) and a
// process-local per-job snapshot file. Reads prefer the local snapshot when
// one exists, falling back to the shared store. See Dual.
package jobstore

import (
	"context"

	"reelforge/internal/domain"
)

// Store is the job record contract. Implementations return errors carrying
// errors.CodeAlreadyExists on duplicate Create and errors.CodeNotFound on
// unknown ids.
type Store interface {
	Create(ctx context.Context, job domain.Job) error
	Update(ctx context.Context, id string, upd domain.JobUpdate) error
	Get(ctx context.Context, id string) (domain.Job, error)
}

// Pinger is implemented by backends that can report connectivity, used by
// the deep health check.
type Pinger interface {
	Ping(ctx context.Context) error
}
