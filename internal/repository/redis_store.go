package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
)

// RedisConfig holds connection settings for the redis-backed job store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Retention time.Duration
	MaxStored int
}

// RedisJobStore keeps jobs in redis so results survive process restarts.
// Each job lives under <prefix>:<id> with the retention window as its TTL,
// and a sorted set at <prefix>:index orders jobs by insertion time for
// listing and capacity eviction.
type RedisJobStore struct {
	cli       *redis.Client
	prefix    string
	retention time.Duration
	maxStored int
	mu        sync.Mutex // serializes read-modify-write in Update
}

// NewRedisJobStore creates a redis job store and verifies connectivity.
func NewRedisJobStore(cfg RedisConfig) (*RedisJobStore, error) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "trendpulse:jobs"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.MaxStored <= 0 {
		cfg.MaxStored = 1000
	}

	cli := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisJobStore{
		cli:       cli,
		prefix:    cfg.KeyPrefix,
		retention: cfg.Retention,
		maxStored: cfg.MaxStored,
	}, nil
}

func (s *RedisJobStore) key(id string) string { return s.prefix + ":" + id }
func (s *RedisJobStore) indexKey() string     { return s.prefix + ":index" }

// Put inserts a job and trims the index down to capacity, oldest first.
func (s *RedisJobStore) Put(ctx context.Context, job *models.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	pipe := s.cli.TxPipeline()
	pipe.Set(ctx, s.key(job.ID), b, s.retention)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(time.Now().UnixNano()), Member: job.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store job: %w", err)
	}

	n, err := s.cli.ZCard(ctx, s.indexKey()).Result()
	if err != nil || n <= int64(s.maxStored) {
		return nil
	}
	victims, err := s.cli.ZRange(ctx, s.indexKey(), 0, n-int64(s.maxStored)-1).Result()
	if err != nil || len(victims) == 0 {
		return nil
	}
	keys := make([]string, 0, len(victims))
	members := make([]interface{}, 0, len(victims))
	for _, id := range victims {
		keys = append(keys, s.key(id))
		members = append(members, id)
	}
	pipe = s.cli.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, s.indexKey(), members...)
	_, _ = pipe.Exec(ctx)
	return nil
}

func (s *RedisJobStore) get(ctx context.Context, id string) (*models.Job, error) {
	b, err := s.cli.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			_ = s.cli.ZRem(ctx, s.indexKey(), id).Err()
			return nil, domainrepo.ErrJobNotFound
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	var job models.Job
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Get returns the job or ErrJobNotFound once redis has expired the key.
func (s *RedisJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	return s.get(ctx, id)
}

// Update applies fn to the stored job. Terminal jobs are frozen.
func (s *RedisJobStore) Update(ctx context.Context, id string, fn func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}
	fn(job)

	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.cli.Set(ctx, s.key(id), b, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

// Delete removes a job. Unknown ids return ErrJobNotFound.
func (s *RedisJobStore) Delete(ctx context.Context, id string) error {
	n, err := s.cli.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	_ = s.cli.ZRem(ctx, s.indexKey(), id).Err()
	if n == 0 {
		return domainrepo.ErrJobNotFound
	}
	return nil
}

// List returns up to limit job summaries, newest first.
func (s *RedisJobStore) List(ctx context.Context, limit int) ([]models.Summary, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.cli.ZRevRange(ctx, s.indexKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]models.Summary, 0, len(ids))
	for _, id := range ids {
		job, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, domainrepo.ErrJobNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, job.Summarize())
	}
	return out, nil
}

// EvictExpired drops index entries whose job keys redis already expired.
func (s *RedisJobStore) EvictExpired(ctx context.Context) int {
	ids, err := s.cli.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return 0
	}
	removed := 0
	for _, id := range ids {
		exists, err := s.cli.Exists(ctx, s.key(id)).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			if s.cli.ZRem(ctx, s.indexKey(), id).Val() > 0 {
				removed++
			}
		}
	}
	return removed
}

// Len returns the number of indexed jobs.
func (s *RedisJobStore) Len(ctx context.Context) int {
	n, err := s.cli.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Close releases the redis connection.
func (s *RedisJobStore) Close() error {
	return s.cli.Close()
}
