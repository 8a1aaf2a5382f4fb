package entity

import "time"

// NotificationStatus es el estado de una alerta de pedido de stock.
type NotificationStatus string

// Estados de la alerta.
const (
	NotificationPending  NotificationStatus = "PENDING"
	NotificationResolved NotificationStatus = "RESOLVED"
)

// Valid indica si el estado es conocido.
func (s NotificationStatus) Valid() bool {
	return s == NotificationPending || s == NotificationResolved
}

// StockTarget es una ubicación candidata con su cantidad observada al crear la alerta.
type StockTarget struct {
	LocationCode string `json:"location"`
	Qty          int64  `json:"qty"`
}

// StockRequestNotification es la alerta de bajo stock que una ubicación emite hacia las demás.
// Targets es una foto al momento de la creación: todas las ubicaciones empatadas en el máximo.
type StockRequestNotification struct {
	ID                string
	FromLocation      string
	VariantID         int64
	FromQty           int64
	Targets           []StockTarget
	Status            NotificationStatus
	CreatedAt         time.Time
	CreatedBy         string
	ResolvedAt        *time.Time
	ResolvedBy        string
	TransferRequestID *string
}

// HasTarget indica si la ubicación está entre los destinatarios.
func (n *StockRequestNotification) HasTarget(location string) bool {
	for _, t := range n.Targets {
		if t.LocationCode == location {
			return true
		}
	}
	return false
}
