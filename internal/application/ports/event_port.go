package ports

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados tras el commit.
const (
	EventStockAdjusted         = "stock.adjusted"
	EventTransferStatusChanged = "transfer.status_changed"
	EventStockRequestCreated   = "stock_request.created"
	EventStockRequestResolved  = "stock_request.resolved"
)

// EventPublisher define el puerto de salida para eventos de dominio (RabbitMQ, Kafka, no-op).
// Se invoca siempre DESPUÉS del commit: un fallo al publicar se registra pero no revierte nada.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// StockAdjustedEvent se publica por cada asiento del libro.
type StockAdjustedEvent struct {
	TxID         string    `json:"tx_id"`
	LocationCode string    `json:"location_code"`
	VariantID    int64     `json:"variant_id"`
	TxType       string    `json:"tx_type"`
	Requested    int64     `json:"requested"`
	QtyChange    int64     `json:"qty_change"`
	QtyAfter     int64     `json:"qty_after"`
	Clamped      bool      `json:"clamped"`
	Actor        string    `json:"actor"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransferStatusChangedEvent se publica en cada transición de una solicitud.
type TransferStatusChangedEvent struct {
	RequestID    string `json:"request_id"`
	RequestNo    string `json:"request_no"`
	FromStatus   string `json:"from_status,omitempty"`
	ToStatus     string `json:"to_status"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location,omitempty"`
	Actor        string `json:"actor"`
}

// StockRequestEvent se publica al crear o resolver una alerta de stock.
type StockRequestEvent struct {
	NotificationID    string   `json:"notification_id"`
	FromLocation      string   `json:"from_location"`
	VariantID         int64    `json:"variant_id"`
	Targets           []string `json:"targets,omitempty"`
	TransferRequestID string   `json:"transfer_request_id,omitempty"`
	Actor             string   `json:"actor"`
}

// BalanceCache es una caché de lectura de saldos (Redis). Es opcional: nil desactiva la caché.
// Nunca participa en decisiones de escritura; solo acelera getBalance.
type BalanceCache interface {
	Get(ctx context.Context, location string, variantID int64) (qty int64, ok bool, err error)
	Set(ctx context.Context, location string, variantID int64, qty int64) error
	Invalidate(ctx context.Context, location string, variantID int64) error
}
