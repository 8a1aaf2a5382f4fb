package entity

import (
	"fmt"
	"time"
)

// RequestType es el tipo de solicitud de traslado.
type RequestType string

// Tipos de solicitud.
const (
	RequestShipment RequestType = "SHIPMENT" // despacho desde central a tienda
	RequestReturn   RequestType = "RETURN"   // devolución de tienda a central / proveedor
	RequestTransfer RequestType = "TRANSFER" // traslado entre tiendas
)

// Valid indica si el tipo es conocido.
func (t RequestType) Valid() bool {
	switch t {
	case RequestShipment, RequestReturn, RequestTransfer:
		return true
	}
	return false
}

// Prefix es el prefijo del número legible de la solicitud.
func (t RequestType) Prefix() string {
	switch t {
	case RequestShipment:
		return "SHP"
	case RequestReturn:
		return "RTN"
	default:
		return "TRF"
	}
}

// ReceiptTxType es el tipo de asiento que genera la recepción en destino.
func (t RequestType) ReceiptTxType() TxType {
	if t == RequestReturn {
		return TxReturn
	}
	return TxRestock
}

// FormatRequestNo arma el número legible: <PREFIJO><yyyymmdd>-<seq>.
func FormatRequestNo(t RequestType, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s-%04d", t.Prefix(), day.Format("20060102"), seq)
}

// TransferStatus es el estado de una solicitud de traslado.
type TransferStatus string

// Estados del flujo.
const (
	StatusDraft     TransferStatus = "DRAFT"     // creada, ítems editables, sin efecto en stock
	StatusApproved  TransferStatus = "APPROVED"  // confirmada, sin efecto en stock
	StatusShipped   TransferStatus = "SHIPPED"   // stock de origen descontado
	StatusReceived  TransferStatus = "RECEIVED"  // stock de destino incrementado (terminal)
	StatusCancelled TransferStatus = "CANCELLED" // terminal, nunca movió stock
)

// Valid indica si el estado es conocido.
func (s TransferStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusShipped, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// transitions: DRAFT -> APPROVED -> SHIPPED -> RECEIVED; CANCELLED solo desde DRAFT o APPROVED.
var transitions = map[TransferStatus][]TransferStatus{
	StatusDraft:    {StatusApproved, StatusCancelled},
	StatusApproved: {StatusShipped, StatusCancelled},
	StatusShipped:  {StatusReceived},
}

// CanTransitionTo indica si el paso s -> to está permitido.
func (s TransferStatus) CanTransitionTo(to TransferStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal indica si no hay transiciones posibles desde s.
func (s TransferStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// TransferRequest es una solicitud de movimiento de stock entre ubicaciones.
// ToLocation es nil para solicitudes de ajuste puro (p. ej. devolución a proveedor).
type TransferRequest struct {
	ID           string
	RequestNo    string
	Type         RequestType
	FromLocation string
	ToLocation   *string
	Status       TransferStatus
	RequestDate  time.Time
	Memo         string
	CreatedBy    string
	UpdatedAt    time.Time
	Items        []TransferItem
}

// Item busca un ítem por id.
func (r *TransferRequest) Item(itemID string) (*TransferItem, bool) {
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			return &r.Items[i], true
		}
	}
	return nil, false
}

// Destination devuelve el destino o "" si no tiene.
func (r *TransferRequest) Destination() string {
	if r.ToLocation == nil {
		return ""
	}
	return *r.ToLocation
}

// TransferItem es una línea de la solicitud. ShippedQty y ReceivedQty son nil hasta su transición.
type TransferItem struct {
	ID          string
	RequestID   string
	VariantID   int64
	RequestQty  int64
	ShippedQty  *int64
	ReceivedQty *int64
}
