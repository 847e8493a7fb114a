package repository

import "context"

// Views handed to a transaction. They must not be retained after fn returns.
type TxRepos interface {
	Stocks() StockRepository
	Logs() OperationLogRepository
}

// Hides staging/commit/rollback of the workbook from the usecase.
// fn's changes become visible only if fn returns nil and the write succeeds.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

// Source is a loaded container: the canonical workbook or an uploaded snapshot.
type Source interface {
	TransactionManager
	Stocks() StockRepository
	Logs() OperationLogRepository

	// true when commits stay in memory
	ReadOnly() bool
	Name() string
}
