package resultstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the suppression list as a Redis list and run records in a hash keyed by run ID.
type RedisStore struct {
	redis     *redis.Client
	namespace string
}

// NewRedisStore parses a redis:// URL. No connection is made until the store is used.
func NewRedisStore(location, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(stripQuery(location, "namespace"))
	if err != nil {
		return nil, err
	}
	return &RedisStore{redis: redis.NewClient(opts), namespace: namespace}, nil
}

func (r *RedisStore) suppressionsKey() string { return r.namespace + ":suppressions" }
func (r *RedisStore) runsKey() string         { return r.namespace + ":runs" }

func (r *RedisStore) LoadSuppressions(ctx context.Context) ([]string, error) {
	lines, err := r.redis.LRange(ctx, r.suppressionsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return cleanSuppressions(lines), nil
}

func (r *RedisStore) RecordRun(ctx context.Context, run RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.suppressionsKey())
		if len(run.Failures) != 0 {
			values := make([]interface{}, 0, len(run.Failures))
			for _, id := range run.Failures {
				values = append(values, id)
			}
			pipe.RPush(ctx, r.suppressionsKey(), values...)
		}
		pipe.HSet(ctx, r.runsKey(), run.ID, string(data))
		return nil
	})
	return err
}

func (r *RedisStore) Close() error {
	return r.redis.Close()
}
