package repository

import (
	"context"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// StockBalanceRepository define el puerto para consultar/actualizar saldos por ubicación+variante.
// Las escrituras solo ocurren dentro de una transacción del libro.
type StockBalanceRepository interface {
	// Get devuelve el saldo; si no existe fila devuelve un saldo en cero (nunca error).
	Get(ctx context.Context, location string, variantID int64) (*entity.StockBalance, error)
	// GetForUpdate crea la fila si falta y la bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, location string, variantID int64) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	ListByVariant(ctx context.Context, variantID int64) ([]*entity.StockBalance, error)
	ListByLocation(ctx context.Context, location string, limit, offset int) ([]*entity.StockBalance, error)
}
