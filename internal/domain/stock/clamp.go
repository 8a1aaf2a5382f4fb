// Package stock contiene las reglas puras del libro de stock: recorte a cero, reproducción del
// libro y selección de ubicaciones destino. No tiene dependencias de infraestructura.
package stock

import (
	"math"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// MaxQuantity es la mayor cantidad aceptada en un solo movimiento, en cualquier sentido.
const MaxQuantity int64 = 1_000_000_000

// Overflows indica si current + delta excede el rango de int64.
func Overflows(current, delta int64) bool {
	return (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta)
}

// Clamp aplica delta sobre current sin dejar el saldo negativo.
// applied es el cambio realmente aplicado (igual a delta salvo recorte), after el saldo resultante.
// Un crédito que desbordaría int64 se satura en math.MaxInt64; el libro lo rechaza antes con Overflows.
//
//	candidato = current + delta
//	candidato < 0  =>  applied = -current, after = 0, clamped = true
func Clamp(current, delta int64) (applied, after int64, clamped bool) {
	if Overflows(current, delta) {
		if delta > 0 {
			return math.MaxInt64 - current, math.MaxInt64, false
		}
		return -current, 0, true
	}
	candidate := current + delta
	if candidate < 0 {
		return -current, 0, true
	}
	return delta, candidate, false
}

// Mismatch describe el primer asiento cuyo qty_after no coincide con la reproducción.
type Mismatch struct {
	Index    int
	TxID     string
	Expected int64
	Recorded int64
}

// Replay reproduce los asientos en orden de creación, recortando en cero en cada paso.
// Devuelve el saldo reconstruido y el primer asiento inconsistente (nil si todos cuadran).
func Replay(entries []*entity.LedgerEntry) (int64, *Mismatch) {
	var qty int64
	var first *Mismatch
	for i, e := range entries {
		_, qty, _ = Clamp(qty, e.QtyChange)
		if first == nil && qty != e.QtyAfter {
			first = &Mismatch{Index: i, TxID: e.TxID, Expected: qty, Recorded: e.QtyAfter}
		}
	}
	return qty, first
}
