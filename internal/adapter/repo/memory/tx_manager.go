package memory

import "context"

type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

// RunInTx serialises transactions and rolls the store back when fn fails.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}
