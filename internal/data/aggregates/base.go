package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/platform/dbctx"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	// Locker serializes writers across replicas. Nil means the row lock alone.
	Locker Locker
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Locker == nil {
		d.Locker = noopLocker{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return executeLockedWrite(ctx, deps, op, "", fn)
}

// executeLockedWrite holds the advisory lock for lockKey around one transaction.
// An empty lockKey skips the lock.
func executeLockedWrite(ctx context.Context, deps BaseDeps, op, lockKey string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.write"
	}

	run := func(ctx context.Context) error { return deps.Runner.InTx(ctx, fn) }
	var err error
	if lockKey = strings.TrimSpace(lockKey); lockKey != "" {
		err = deps.Locker.WithLock(ctx, lockKey, run)
	} else {
		err = run(ctx)
	}
	mapped := MapError(op, err)

	status := aggregateErrorStatus(mapped)
	switch domainagg.CodeOf(mapped) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	case domainagg.CodeInternal:
		deps.Log.Error("aggregate write failed", "op", op, "error", mapped)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// aggregateErrorStatus is the "status" label for ObserveOperation.
func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(MapError("aggregate.status", err)); code != "" {
		return string(code)
	}
	return "failure"
}
