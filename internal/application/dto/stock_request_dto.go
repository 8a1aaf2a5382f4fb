package dto

import (
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// CreateStockRequestRequest body para POST /api/stock-requests. Si from_location viene vacío se
// usa la ubicación del token.
type CreateStockRequestRequest struct {
	FromLocation string `json:"from_location" validate:"omitempty,max=50"`
	VariantID    int64  `json:"variant_id" validate:"required,gt=0"`
	FromQty      int64  `json:"from_qty" validate:"min=0,max=1000000000"`
}

// ProcessStockRequestRequest body para POST /api/stock-requests/:id/process. Si
// resolver_location viene vacío se usa la ubicación del token.
type ProcessStockRequestRequest struct {
	ResolverLocation string `json:"resolver_location" validate:"omitempty,max=50"`
	Qty              int64  `json:"qty" validate:"required,gt=0,max=1000000000"`
}

// StockRequestListQuery filtros de GET /api/stock-requests.
type StockRequestListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=PENDING RESOLVED"`
	Location string `query:"location" validate:"omitempty,max=50"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

// StockRequestResponse alerta de pedido de stock.
type StockRequestResponse struct {
	ID                string               `json:"id"`
	FromLocation      string               `json:"from_location"`
	VariantID         int64                `json:"variant_id"`
	FromQty           int64                `json:"from_qty"`
	Targets           []entity.StockTarget `json:"targets"`
	Status            string               `json:"status"`
	CreatedAt         time.Time            `json:"created_at"`
	CreatedBy         string               `json:"created_by"`
	ResolvedAt        *time.Time           `json:"resolved_at,omitempty"`
	ResolvedBy        string               `json:"resolved_by,omitempty"`
	TransferRequestID *string              `json:"transfer_request_id,omitempty"`
	Coalesced         bool                 `json:"coalesced,omitempty"`
}

// ProcessStockRequestResponse alerta resuelta más el traslado creado.
type ProcessStockRequestResponse struct {
	Notification StockRequestResponse `json:"notification"`
	Transfer     TransferResponse     `json:"transfer"`
}

// StockRequestListResponse lista paginada de alertas.
type StockRequestListResponse struct {
	Items []StockRequestResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// StockRequestFrom mapea la entidad a respuesta.
func StockRequestFrom(n *entity.StockRequestNotification) StockRequestResponse {
	return StockRequestResponse{
		ID:                n.ID,
		FromLocation:      n.FromLocation,
		VariantID:         n.VariantID,
		FromQty:           n.FromQty,
		Targets:           n.Targets,
		Status:            string(n.Status),
		CreatedAt:         n.CreatedAt,
		CreatedBy:         n.CreatedBy,
		ResolvedAt:        n.ResolvedAt,
		ResolvedBy:        n.ResolvedBy,
		TransferRequestID: n.TransferRequestID,
	}
}

// StockRequestsFrom mapea una lista de alertas.
func StockRequestsFrom(list []*entity.StockRequestNotification) []StockRequestResponse {
	out := make([]StockRequestResponse, 0, len(list))
	for _, n := range list {
		out = append(out, StockRequestFrom(n))
	}
	return out
}
