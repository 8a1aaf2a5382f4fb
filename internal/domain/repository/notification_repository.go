package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// NotificationFilter filtros del listado de alertas de stock.
type NotificationFilter struct {
	Status       *entity.NotificationStatus
	LocationCode string // solicitante o destinatario
	Limit        int
	Offset       int
}

// NotificationRepository define el puerto de persistencia de alertas de pedido de stock.
type NotificationRepository interface {
	// Create persiste la alerta. Devuelve domain.ErrDuplicate si ya hay una PENDING para el par.
	Create(ctx context.Context, n *entity.StockRequestNotification) error
	GetByID(ctx context.Context, id string) (*entity.StockRequestNotification, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockRequestNotification, error)
	// FindPending devuelve la alerta PENDING del par, o nil.
	FindPending(ctx context.Context, location string, variantID int64) (*entity.StockRequestNotification, error)
	// MarkResolved hace compare-and-set PENDING -> RESOLVED.
	MarkResolved(ctx context.Context, id, actor string, transferID *string, at time.Time) error
	List(ctx context.Context, filter NotificationFilter) ([]*entity.StockRequestNotification, error)
}
