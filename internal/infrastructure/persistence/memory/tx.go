package memory

import (
	"context"
	"sync"

	"github.com/garyjia/procurement-hub/internal/application/port"
)

type txKey struct{}

// TxManager serialises read-modify-write sequences against the memory stores.
// It does not roll back: a failing fn leaves any writes it already made.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a transaction manager for the memory stores
func NewTxManager() *TxManager {
	return &TxManager{}
}

// WithTransaction runs fn while holding the writer lock. Nested calls reuse the held lock.
// Callbacks registered with port.AfterCommit run after the lock is released.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	txCtx, flush := port.WithCommitHooks(ctx)
	if err := m.run(context.WithValue(txCtx, txKey{}, true), fn); err != nil {
		return err
	}
	flush()
	return nil
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

var _ port.TransactionManager = (*TxManager)(nil)
