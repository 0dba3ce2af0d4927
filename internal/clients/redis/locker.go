package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	rsgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

const defaultLockTTL = 10 * time.Second

// Locker is the cross-replica advisory lock used by aggregate writes.
type Locker struct {
	log *logger.Logger
	rs  *redsync.Redsync
	ttl time.Duration
}

var _ aggregates.Locker = (*Locker)(nil)

func NewLocker(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{
		log: log.With("client", "RedisLocker"),
		rs:  redsync.New(rsgoredis.NewPool(rdb)),
		ttl: ttl,
	}
}

// WithLock runs fn while holding the mutex for key. Failing to acquire the mutex is
// reported as retryable so callers can surface 503 instead of blocking.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex("lock:"+key, redsync.WithExpiry(l.ttl), redsync.WithTries(16))
	if err := mutex.LockContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return aggregates.RetryableError(fmt.Sprintf("acquire lock %s: %v", key, err))
	}
	defer func() {
		// the lock may already have expired; redsync reports that as an error
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil || !ok {
			l.log.Warn("release lock failed", "key", key, "error", err)
		}
	}()
	return fn(ctx)
}
