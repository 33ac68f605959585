package jobstore

import (
	"context"

	"reelforge/internal/domain"
	"reelforge/internal/pkg/errors"
	"reelforge/internal/pkg/logger"
)

// Dual composes the shared backend with the local snapshot backend.
//
// Writes go to both; one backend failing logs a warning and the call still
// succeeds as long as the other took the write. Reads prefer the snapshot
// when present (it is at least as fresh as the shared copy, since the single
// writer updates both), falling back to the shared store, else NotFound.
// This is an availability trade-off: the status endpoint keeps answering
// while either backend is up.
type Dual struct {
	shared   Store
	snapshot Store
	log      *logger.Logger
}

func NewDual(shared, snapshot Store, log *logger.Logger) *Dual {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Dual{
		shared:   shared,
		snapshot: snapshot,
		log:      log.WithComponent("jobstore"),
	}
}

func (d *Dual) Create(ctx context.Context, job domain.Job) error {
	sharedErr := d.shared.Create(ctx, job)
	if errors.IsCode(sharedErr, errors.CodeAlreadyExists) {
		return sharedErr
	}

	snapErr := d.snapshot.Create(ctx, job)

	return d.settle(job.ID, "create", sharedErr, snapErr)
}

func (d *Dual) Update(ctx context.Context, id string, upd domain.JobUpdate) error {
	sharedErr := d.shared.Update(ctx, id, upd)
	snapErr := d.snapshot.Update(ctx, id, upd)

	if errors.IsNotFound(sharedErr) && errors.IsNotFound(snapErr) {
		return errors.NotFound("job", id)
	}

	return d.settle(id, "update", sharedErr, snapErr)
}

func (d *Dual) Get(ctx context.Context, id string) (domain.Job, error) {
	job, err := d.snapshot.Get(ctx, id)
	if err == nil {
		return job, nil
	}
	if !errors.IsNotFound(err) {
		d.log.Warn("snapshot read failed, falling back to shared store",
			"job_id", id,
			"error", err.Error(),
		)
	}
	return d.shared.Get(ctx, id)
}

// settle applies the one-backend-may-fail policy for a write.
func (d *Dual) settle(id, op string, sharedErr, snapErr error) error {
	if sharedErr != nil && snapErr != nil {
		return errors.Wrapf(sharedErr, "jobstore.dual", "%s failed on both backends (snapshot: %v)", op, snapErr)
	}
	if sharedErr != nil {
		d.log.Warn("shared store write failed, snapshot took the write",
			"job_id", id, "op", op, "error", sharedErr.Error(),
		)
	}
	if snapErr != nil {
		d.log.Warn("snapshot write failed, shared store took the write",
			"job_id", id, "op", op, "error", snapErr.Error(),
		)
	}
	return nil
}

// Ping reports shared-backend connectivity when the backend supports it.
func (d *Dual) Ping(ctx context.Context) error {
	if p, ok := d.shared.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
