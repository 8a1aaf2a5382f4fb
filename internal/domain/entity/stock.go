package entity

import "time"

// StockBalance representa el saldo autoritativo de una variante en una ubicación.
// La fila se crea al primer movimiento y nunca se borra; cero es un valor terminal válido.
type StockBalance struct {
	LocationCode string
	VariantID    int64
	Qty          int64
	UpdatedAt    time.Time
}

// BalanceKey identifica una fila de saldo (ubicación + variante).
type BalanceKey struct {
	LocationCode string
	VariantID    int64
}

// Less ordena claves por ubicación y luego variante. Los lotes bloquean filas en este orden
// para que dos transacciones concurrentes no se bloqueen mutuamente.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.LocationCode != o.LocationCode {
		return k.LocationCode < o.LocationCode
	}
	return k.VariantID < o.VariantID
}
