package dto

import (
	"time"

	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// AdjustmentRequest body para POST /api/stock/adjustments|sales|returns|restocks.
// En ajustes Qty lleva signo; en ventas, devoluciones y reposiciones es positiva.
type AdjustmentRequest struct {
	LocationCode string `json:"location_code" validate:"required,max=50"`
	VariantID    int64  `json:"variant_id" validate:"required,gt=0"`
	Qty          int64  `json:"qty" validate:"required,min=-1000000000,max=1000000000"`
	Memo         string `json:"memo" validate:"max=500"`
}

// BalanceResponse saldo de un par ubicación+variante.
type BalanceResponse struct {
	LocationCode string     `json:"location_code"`
	VariantID    int64      `json:"variant_id"`
	Qty          int64      `json:"qty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// BalanceListResponse lista de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  *PageResponse     `json:"page,omitempty"`
}

// LedgerEntryResponse asiento del libro.
type LedgerEntryResponse struct {
	TxID         string    `json:"tx_id"`
	LocationCode string    `json:"location_code"`
	VariantID    int64     `json:"variant_id"`
	TxType       string    `json:"tx_type"`
	QtyChange    int64     `json:"qty_change"`
	QtyAfter     int64     `json:"qty_after"`
	Memo         string    `json:"memo,omitempty"`
	Actor        string    `json:"actor"`
	CreatedAt    time.Time `json:"created_at"`
}

// LedgerListResponse historial paginado.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// LedgerQuery filtros de GET /api/stock/ledger. Fechas en RFC 3339.
type LedgerQuery struct {
	Location  string `query:"location" validate:"omitempty,max=50"`
	VariantID int64  `query:"variant" validate:"omitempty,gt=0"`
	TxType    string `query:"tx_type" validate:"omitempty,oneof=ADJUST RESTOCK SALE RETURN SHIPMENT TRANSFER"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset    int    `query:"offset" validate:"omitempty,min=0"`
}

// DeltaResponse resultado de un ajuste: saldo posterior, asiento (si hubo cambio) y avisos de recorte.
type DeltaResponse struct {
	LocationCode string                `json:"location_code"`
	VariantID    int64                 `json:"variant_id"`
	Requested    int64                 `json:"requested"`
	Applied      int64                 `json:"applied"`
	QtyAfter     int64                 `json:"qty_after"`
	Clamped      bool                  `json:"clamped"`
	Entry        *LedgerEntryResponse  `json:"entry,omitempty"`
	Warnings     []entity.ClampWarning `json:"warnings,omitempty"`
}

// VerifyResponse es la reconciliación del libro contra el saldo.
type VerifyResponse = ledger.Reconciliation

// BalanceFrom mapea la entidad a respuesta.
func BalanceFrom(b *entity.StockBalance) BalanceResponse {
	out := BalanceResponse{LocationCode: b.LocationCode, VariantID: b.VariantID, Qty: b.Qty}
	if !b.UpdatedAt.IsZero() {
		at := b.UpdatedAt
		out.UpdatedAt = &at
	}
	return out
}

// BalancesFrom mapea una lista de saldos.
func BalancesFrom(list []*entity.StockBalance) []BalanceResponse {
	out := make([]BalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, BalanceFrom(b))
	}
	return out
}

// LedgerEntryFrom mapea un asiento.
func LedgerEntryFrom(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		TxID:         e.TxID,
		LocationCode: e.LocationCode,
		VariantID:    e.VariantID,
		TxType:       string(e.TxType),
		QtyChange:    e.QtyChange,
		QtyAfter:     e.QtyAfter,
		Memo:         e.Memo,
		Actor:        e.Actor,
		CreatedAt:    e.CreatedAt,
	}
}

// LedgerEntriesFrom mapea una lista de asientos.
func LedgerEntriesFrom(list []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, LedgerEntryFrom(e))
	}
	return out
}

// DeltaFrom mapea el resultado de un ajuste.
func DeltaFrom(r *entity.DeltaResult) DeltaResponse {
	out := DeltaResponse{
		LocationCode: r.LocationCode,
		VariantID:    r.VariantID,
		Requested:    r.Requested,
		Applied:      r.Applied,
		QtyAfter:     r.QtyAfter,
		Clamped:      r.Clamped,
	}
	if r.Entry != nil {
		e := LedgerEntryFrom(r.Entry)
		out.Entry = &e
	}
	if w := r.Warning(); w != nil {
		out.Warnings = []entity.ClampWarning{*w}
	}
	return out
}
