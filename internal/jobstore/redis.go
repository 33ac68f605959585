package jobstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"reelforge/internal/domain"
	"reelforge/internal/pkg/errors"
)

const redisKeyPrefix = "reelforge:job:"

// Redis is the default shared Store backend. Each job is one JSON value
// keyed by id; a single controller writes a given job so read-modify-write
// on Update needs no cross-process locking.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) Create(ctx context.Context, job domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "jobstore.redis", "marshal job")
	}

	ok, err := s.rdb.SetNX(ctx, redisKeyPrefix+job.ID, data, 0).Result()
	if err != nil {
		return errors.Wrap(err, "jobstore.redis", "create job")
	}
	if !ok {
		return errors.AlreadyExists("job", job.ID)
	}
	return nil
}

func (s *Redis) Update(ctx context.Context, id string, upd domain.JobUpdate) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	upd.Apply(&job, time.Now().UTC())

	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "jobstore.redis", "marshal job")
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, data, 0).Err(); err != nil {
		return errors.Wrap(err, "jobstore.redis", "update job")
	}
	return nil
}

func (s *Redis) Get(ctx context.Context, id string) (domain.Job, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return domain.Job{}, errors.NotFound("job", id)
	}
	if err != nil {
		return domain.Job{}, errors.Wrap(err, "jobstore.redis", "get job")
	}

	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.Job{}, errors.Wrap(err, "jobstore.redis", "unmarshal job")
	}
	return job, nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
