package ports

import (
	"context"

	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

// Tx agrupa los repositorios atados a una misma transacción de BD.
type Tx struct {
	Stocks        repository.StockBalanceRepository
	Ledger        repository.LedgerRepository
	Transfers     repository.TransferRepository
	Notifications repository.NotificationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y nada queda visible; si no, Commit.
// Garantiza atomicidad para el libro de stock y las transiciones de traslado.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}
