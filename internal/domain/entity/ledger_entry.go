package entity

import "time"

// TxType es el tipo de transacción del libro de stock (variante cerrada).
type TxType string

// Tipos de transacción del libro.
const (
	TxAdjust   TxType = "ADJUST"   // corrección manual / registro inicial
	TxRestock  TxType = "RESTOCK"  // reposición / recepción de traslado
	TxSale     TxType = "SALE"     // venta
	TxReturn   TxType = "RETURN"   // devolución
	TxShipment TxType = "SHIPMENT" // despacho desde origen
	TxTransfer TxType = "TRANSFER" // traslado directo
)

// TxTypes lista todos los tipos válidos.
var TxTypes = []TxType{TxAdjust, TxRestock, TxSale, TxReturn, TxShipment, TxTransfer}

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t TxType) Valid() bool {
	for _, v := range TxTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseTxType convierte un string externo; ok=false si no es un tipo conocido.
func ParseTxType(s string) (TxType, bool) {
	t := TxType(s)
	return t, t.Valid()
}

// LedgerEntry es un asiento inmutable del libro. QtyChange es el cambio APLICADO
// (ya recortado), no el solicitado; QtyAfter es el saldo inmediatamente después.
type LedgerEntry struct {
	TxID         string
	LocationCode string
	VariantID    int64
	TxType       TxType
	QtyChange    int64
	QtyAfter     int64
	Memo         string
	Actor        string
	CreatedAt    time.Time
}

// DeltaResult es el resultado de aplicar un delta sobre un saldo.
// Clamped=true significa que el delta solicitado excedía el stock y se recortó a cero:
// no es un fallo, es un aviso para el usuario. Entry es nil cuando el recorte dejó un cambio
// aplicado de cero (no se registran asientos sin cambio).
type DeltaResult struct {
	Entry        *LedgerEntry
	LocationCode string
	VariantID    int64
	Requested    int64
	Applied      int64
	QtyAfter     int64
	Clamped      bool
}

// ClampWarning describe un ajuste recortado, para mostrar al usuario.
type ClampWarning struct {
	LocationCode string `json:"location_code"`
	VariantID    int64  `json:"variant_id"`
	Requested    int64  `json:"requested"`
	Applied      int64  `json:"applied"`
	QtyAfter     int64  `json:"qty_after"`
}

// Warning devuelve el aviso de recorte, o nil si el delta se aplicó completo.
func (r *DeltaResult) Warning() *ClampWarning {
	if r == nil || !r.Clamped {
		return nil
	}
	return &ClampWarning{
		LocationCode: r.LocationCode,
		VariantID:    r.VariantID,
		Requested:    r.Requested,
		Applied:      r.Applied,
		QtyAfter:     r.QtyAfter,
	}
}
