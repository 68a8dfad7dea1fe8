package repositories

import "context"

// TxFn is the unit of work run by ExecTx. Repository calls made with the
// ctx it receives join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs multi-step mutations atomically.
// Duplicating a folder tree and provisioning a user both go through it.
type TransactionManager interface {
	// ExecTx commits when fn returns nil and rolls back otherwise.
	// Calls nested inside an open transaction reuse it.
	ExecTx(ctx context.Context, fn TxFn) error
}
