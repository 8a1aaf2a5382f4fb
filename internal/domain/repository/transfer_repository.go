package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// TransferFilter filtros del listado de solicitudes.
type TransferFilter struct {
	Status       *entity.TransferStatus
	Type         *entity.RequestType
	LocationCode string // coincide con origen o destino
	Limit        int
	Offset       int
}

// TransferRepository define el puerto de persistencia de solicitudes de traslado y sus ítems.
// No existe borrado: la cancelación es un estado.
type TransferRepository interface {
	// Create inserta la solicitud y sus ítems.
	Create(ctx context.Context, req *entity.TransferRequest) error
	// GetByID devuelve la solicitud con ítems, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.TransferRequest, error)
	GetByRequestNo(ctx context.Context, requestNo string) (*entity.TransferRequest, error)
	// GetForUpdate lee y bloquea la fila de la solicitud hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error)
	// UpdateStatus hace compare-and-set: solo cambia si el estado actual es from.
	// Devuelve domain.ErrConcurrencyConflict si ninguna fila coincidió.
	UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, at time.Time) error
	// UpdateQuantities persiste shipped_qty/received_qty de los ítems.
	UpdateQuantities(ctx context.Context, items []entity.TransferItem) error
	// ReplaceItems reemplaza los ítems de una solicitud (solo DRAFT).
	ReplaceItems(ctx context.Context, requestID string, items []entity.TransferItem) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.TransferRequest, error)
	// NextSequence devuelve el siguiente número para request_no.
	NextSequence(ctx context.Context) (int64, error)
}
