package ports

import "context"

// TxManager runs fn atomically against the configured repositories.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
