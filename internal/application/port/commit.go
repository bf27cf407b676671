package port

import (
	"context"
	"sync"
)

type commitHooksKey struct{}

type commitHooks struct {
	base context.Context
	mu   sync.Mutex
	fns  []func(ctx context.Context)
}

// WithCommitHooks prepares ctx for a new outermost transaction. The returned
// flush runs the callbacks registered through AfterCommit, in order, with the
// context the transaction was started from. Call flush only after a commit.
func WithCommitHooks(ctx context.Context) (context.Context, func()) {
	h := &commitHooks{base: ctx}
	flush := func() {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		for _, fn := range fns {
			fn(h.base)
		}
	}
	return context.WithValue(ctx, commitHooksKey{}, h), flush
}

// AfterCommit runs fn once the outermost transaction carried by ctx commits.
// Outside a transaction fn runs immediately. A rolled back transaction drops fn.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	h, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
