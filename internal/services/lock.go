package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
)

var ErrAnalysisInProgress = errors.New("an analysis for this resume and job description is already in progress")

// RunLocker serialises pipelines for the same (user, resume, job description).
// Acquire fails with ErrAnalysisInProgress when the key is already held.
type RunLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was re-taken is never released by the old owner.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.Logger) RunLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisLocker{client: client, ttl: ttl, log: logger.OrNop(log)}
}

// Acquire implements RunLocker.
func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrAnalysisInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn("failed to release run lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker returns a RunLocker scoped to this process.
func NewLocalLocker() RunLocker {
	return &localLocker{held: make(map[string]struct{})}
}

// Acquire implements RunLocker.
func (l *localLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, ErrAnalysisInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
