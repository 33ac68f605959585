package jobstore

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// NewSharedStore builds the shared backend selected by JOBSTORE_BACKEND
// (redis default, postgres optional) and returns it with a close function.
func NewSharedStore(ctx context.Context) (Store, func(), error) {
	backend := os.Getenv("JOBSTORE_BACKEND")
	if backend == "" {
		backend = "redis"
	}

	switch backend {
	case "redis":
		addr := mustEnv("REDIS_ADDR")
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(rdb), func() { _ = rdb.Close() }, nil

	case "postgres":
		dsn := mustEnv("DATABASE_URL")
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return NewPostgres(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown jobstore backend: %s", backend)
	}
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
