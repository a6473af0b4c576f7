package audit

import (
	"context"
	"sync/atomic"
)

type suppressKey struct{}

type guard struct {
	active atomic.Bool
}

// Suppress returns a context in which storage commands are not captured,
// and a release func that ends the suppression. The guard travels only with
// the returned context and its descendants; other call chains are unaffected.
// After release the guard stops suppressing even if the context is reused.
// Release is idempotent.
func Suppress(ctx context.Context) (context.Context, func()) {
	g := &guard{}
	g.active.Store(true)
	return context.WithValue(ctx, suppressKey{}, g), func() { g.active.Store(false) }
}

// IsSuppressed reports whether ctx carries an active suppression guard.
func IsSuppressed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	g, ok := ctx.Value(suppressKey{}).(*guard)
	return ok && g.active.Load()
}
