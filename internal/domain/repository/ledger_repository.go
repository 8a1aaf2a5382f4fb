package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// LedgerFilter filtros del historial de transacciones. Campos vacíos/nil no filtran.
type LedgerFilter struct {
	LocationCode string
	VariantID    *int64
	TxType       *entity.TxType
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// LedgerRepository define el puerto del libro append-only: solo inserta y lee.
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// List devuelve asientos del más reciente al más antiguo.
	List(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerEntry, error)
	// ListForReplay devuelve todos los asientos de un par en orden de creación.
	ListForReplay(ctx context.Context, location string, variantID int64) ([]*entity.LedgerEntry, error)
}
