package entity

import "time"

// Variant representa un SKU vendible (producto + color + talla). Dato maestro externo.
type Variant struct {
	ID          int64
	ProductCode string
	Color       string
	Size        string
	Barcode     string
	CreatedAt   time.Time
}
