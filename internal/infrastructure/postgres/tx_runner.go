package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// READ COMMITTED alcanza: toda lectura que decide una escritura usa SELECT ... FOR UPDATE.
func (r *TxRunner) Run(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", "transaction", "", err)
	}
	return nil
}

// Repositories devuelve repositorios sobre el pool, para lecturas fuera de transacción.
func (r *TxRunner) Repositories() ports.Tx {
	return bind(r.pool)
}

func bind(q Querier) ports.Tx {
	return ports.Tx{
		Stocks:        NewStockRepository(q),
		Ledger:        NewLedgerRepository(q),
		Transfers:     NewTransferRepository(q),
		Notifications: NewNotificationRepository(q),
	}
}
