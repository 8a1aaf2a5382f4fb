package dto

import (
	"time"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// TransferItemRequest línea solicitada.
type TransferItemRequest struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
	Qty       int64 `json:"qty" validate:"required,gt=0,max=1000000000"`
}

// CreateTransferRequest body para POST /api/transfers. El origen de la solicitud (gerencia o tienda)
// lo decide el rol del token, no el body.
type CreateTransferRequest struct {
	RequestType  string                `json:"request_type" validate:"required,oneof=SHIPMENT RETURN TRANSFER"`
	FromLocation string                `json:"from_location" validate:"required,max=50"`
	ToLocation   string                `json:"to_location" validate:"omitempty,max=50"`
	Memo         string                `json:"memo" validate:"max=500"`
	Items        []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateTransferItemsRequest body para PUT /api/transfers/:id/items.
type UpdateTransferItemsRequest struct {
	Items []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ItemQtyRequest cantidad despachada o recibida de un ítem.
type ItemQtyRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Qty    int64  `json:"qty" validate:"min=0,max=1000000000"`
}

// TransferQtyRequest body para POST /api/transfers/:id/shipment|receipt.
type TransferQtyRequest struct {
	Items []ItemQtyRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferListQuery filtros de GET /api/transfers.
type TransferListQuery struct {
	Status      string `query:"status" validate:"omitempty,oneof=DRAFT APPROVED SHIPPED RECEIVED CANCELLED"`
	RequestType string `query:"request_type" validate:"omitempty,oneof=SHIPMENT RETURN TRANSFER"`
	Location    string `query:"location" validate:"omitempty,max=50"`
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset      int    `query:"offset" validate:"omitempty,min=0"`
}

// TransferItemResponse línea con sus cantidades.
type TransferItemResponse struct {
	ID          string `json:"id"`
	VariantID   int64  `json:"variant_id"`
	RequestQty  int64  `json:"request_qty"`
	ShippedQty  *int64 `json:"shipped_qty"`
	ReceivedQty *int64 `json:"received_qty"`
}

// TransferResponse solicitud de traslado.
type TransferResponse struct {
	ID           string                 `json:"id"`
	RequestNo    string                 `json:"request_no"`
	RequestType  string                 `json:"request_type"`
	FromLocation string                 `json:"from_location"`
	ToLocation   *string                `json:"to_location"`
	Status       string                 `json:"status"`
	RequestDate  time.Time              `json:"request_date"`
	Memo         string                 `json:"memo,omitempty"`
	CreatedBy    string                 `json:"created_by"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Items        []TransferItemResponse `json:"items"`
	Warnings     []entity.ClampWarning  `json:"warnings,omitempty"`
}

// TransferListResponse lista paginada de solicitudes.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferFrom mapea la entidad a respuesta.
func TransferFrom(r *entity.TransferRequest, warnings []entity.ClampWarning) TransferResponse {
	out := TransferResponse{
		ID:           r.ID,
		RequestNo:    r.RequestNo,
		RequestType:  string(r.Type),
		FromLocation: r.FromLocation,
		ToLocation:   r.ToLocation,
		Status:       string(r.Status),
		RequestDate:  r.RequestDate,
		Memo:         r.Memo,
		CreatedBy:    r.CreatedBy,
		UpdatedAt:    r.UpdatedAt,
		Items:        make([]TransferItemResponse, 0, len(r.Items)),
		Warnings:     warnings,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, TransferItemResponse{
			ID:          it.ID,
			VariantID:   it.VariantID,
			RequestQty:  it.RequestQty,
			ShippedQty:  it.ShippedQty,
			ReceivedQty: it.ReceivedQty,
		})
	}
	return out
}

// TransfersFrom mapea una lista de solicitudes.
func TransfersFrom(list []*entity.TransferRequest) []TransferResponse {
	out := make([]TransferResponse, 0, len(list))
	for _, r := range list {
		out = append(out, TransferFrom(r, nil))
	}
	return out
}
