package stock_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
)

func TestClamp_DeltaCompleto(t *testing.T) {
	applied, after, clamped := stock.Clamp(10, -4)
	assert.Equal(t, int64(-4), applied)
	assert.Equal(t, int64(6), after)
	assert.False(t, clamped)

	applied, after, clamped = stock.Clamp(0, 7)
	assert.Equal(t, int64(7), applied)
	assert.Equal(t, int64(7), after)
	assert.False(t, clamped)
}

// Conteo físico: -50 sobre 10 deja 0 y registra -10, no -50.
func TestClamp_RecortaEnCero(t *testing.T) {
	applied, after, clamped := stock.Clamp(10, -50)
	assert.Equal(t, int64(-10), applied)
	assert.Equal(t, int64(0), after)
	assert.True(t, clamped)
}

func TestClamp_ExactoACeroNoEsRecorte(t *testing.T) {
	applied, after, clamped := stock.Clamp(10, -10)
	assert.Equal(t, int64(-10), applied)
	assert.Equal(t, int64(0), after)
	assert.False(t, clamped)
}

// Para cualquier secuencia de deltas el saldo nunca es negativo y cada qty_after es el anterior
// más el cambio aplicado.
func TestClamp_SecuenciasNuncaNegativas(t *testing.T) {
	sequences := [][]int64{
		{5, -3, -3, 8, -100, 1},
		{-1, -1, 2, -5, 3},
		{100, -99, -2, 50, -49, -1, -1},
	}
	for _, seq := range sequences {
		var qty int64
		var entries []*entity.LedgerEntry
		for _, d := range seq {
			applied, after, _ := stock.Clamp(qty, d)
			require.GreaterOrEqual(t, after, int64(0))
			require.Equal(t, qty+applied, after)
			qty = after
			entries = append(entries, &entity.LedgerEntry{QtyChange: applied, QtyAfter: after})
		}
		replayed, mismatch := stock.Replay(entries)
		assert.Nil(t, mismatch)
		assert.Equal(t, qty, replayed)
	}
}

func TestReplay_DetectaAsientoInconsistente(t *testing.T) {
	entries := []*entity.LedgerEntry{
		{TxID: "a", QtyChange: 5, QtyAfter: 5},
		{TxID: "b", QtyChange: -2, QtyAfter: 4}, // debería ser 3
		{TxID: "c", QtyChange: 1, QtyAfter: 4},
	}
	qty, mismatch := stock.Replay(entries)
	require.NotNil(t, mismatch)
	assert.Equal(t, "b", mismatch.TxID)
	assert.Equal(t, int64(3), mismatch.Expected)
	assert.Equal(t, int64(4), mismatch.Recorded)
	assert.Equal(t, int64(4), qty)
}

func TestOverflows(t *testing.T) {
	assert.False(t, stock.Overflows(10, 5))
	assert.False(t, stock.Overflows(math.MaxInt64-5, 5))
	assert.True(t, stock.Overflows(10, math.MaxInt64))
	assert.True(t, stock.Overflows(math.MaxInt64, 1))
	assert.False(t, stock.Overflows(0, math.MinInt64+1))
	assert.True(t, stock.Overflows(-1, math.MinInt64))
}

// Un crédito enorme nunca se interpreta como débito.
func TestClamp_CreditoQueDesbordaSeSatura(t *testing.T) {
	applied, after, clamped := stock.Clamp(10, math.MaxInt64)
	assert.Equal(t, int64(math.MaxInt64-10), applied)
	assert.Equal(t, int64(math.MaxInt64), after)
	assert.False(t, clamped)
}
