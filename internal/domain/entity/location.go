package entity

import "time"

// Tipos de ubicación (socio de negocio que puede tener stock).
const (
	LocationKindStore     = "STORE"
	LocationKindWarehouse = "WAREHOUSE"
	LocationKindHQ        = "HQ"
)

// Location representa una tienda, bodega o sede central. Dato maestro externo: este núcleo solo lo lee.
type Location struct {
	Code      string
	Name      string
	Kind      string
	Active    bool
	CreatedAt time.Time
}
