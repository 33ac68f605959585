package jobstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reelforge/internal/domain"
	"reelforge/internal/httpkit"
	"reelforge/internal/pkg/errors"
)

// Postgres is the alternative shared Store backend, for deployments that
// already run a database and prefer it over Redis.
//
// Schema:
//
//	CREATE TABLE render_jobs (
//	    id             TEXT PRIMARY KEY,
//	    status         TEXT NOT NULL,
//	    progress       INT NOT NULL DEFAULT 0,
//	    result_ref     TEXT NOT NULL DEFAULT '',
//	    error_text     TEXT NOT NULL DEFAULT '',
//	    skipped_scenes INT NOT NULL DEFAULT 0,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, job domain.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO render_jobs (id, status, progress, result_ref, error_text, skipped_scenes, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		job.ID, job.Status, job.Progress, job.ResultRef, job.Error, job.SkippedScenes, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.AlreadyExists("job", job.ID)
		}
		return errors.Wrap(err, "jobstore.postgres", "create job")
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, id string, upd domain.JobUpdate) error {
	sets := []string{"updated_at=$2"}
	args := []any{id, time.Now().UTC()}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}

	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Progress != nil {
		add("progress", *upd.Progress)
	}
	if upd.ResultRef != nil {
		add("result_ref", *upd.ResultRef)
	}
	if upd.Error != nil {
		add("error_text", *upd.Error)
	}
	if upd.SkippedScenes != nil {
		add("skipped_scenes", *upd.SkippedScenes)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE render_jobs SET `+strings.Join(sets, ", ")+` WHERE id=$1`,
		args...,
	)
	if err != nil {
		return errors.Wrap(err, "jobstore.postgres", "update job")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("job", id)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id string) (domain.Job, error) {
	var job domain.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, progress, result_ref, error_text, skipped_scenes, created_at, updated_at
		 FROM render_jobs WHERE id=$1`, id,
	).Scan(&job.ID, &job.Status, &job.Progress, &job.ResultRef, &job.Error, &job.SkippedScenes, &job.CreatedAt, &job.UpdatedAt)
	if err == pgx.ErrNoRows {
		return domain.Job{}, errors.NotFound("job", id)
	}
	if err != nil {
		return domain.Job{}, errors.Wrap(err, "jobstore.postgres", "get job")
	}
	return job, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
