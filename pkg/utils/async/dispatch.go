package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler on its own goroutine, detached from the caller's
// cancellation but keeping its logger. Used for fire-and-forget work such as
// clearing persisted state: the caller stops waiting, the work runs to
// completion. Panics are recovered and logged, errors are logged.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := detach(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()),
				)
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
		}
	}()
}

// detach returns a background context carrying the logger of ctx, so the
// handler outlives the request that spawned it without losing log context.
func detach(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
