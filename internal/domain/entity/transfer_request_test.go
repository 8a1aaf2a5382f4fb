package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

func TestTransferStatus_CaminoMonotono(t *testing.T) {
	assert.True(t, entity.StatusDraft.CanTransitionTo(entity.StatusApproved))
	assert.True(t, entity.StatusApproved.CanTransitionTo(entity.StatusShipped))
	assert.True(t, entity.StatusShipped.CanTransitionTo(entity.StatusReceived))

	assert.False(t, entity.StatusDraft.CanTransitionTo(entity.StatusShipped), "no se salta APPROVED")
	assert.False(t, entity.StatusShipped.CanTransitionTo(entity.StatusApproved), "no retrocede")
	assert.False(t, entity.StatusShipped.CanTransitionTo(entity.StatusShipped), "no repite")
	assert.False(t, entity.StatusReceived.CanTransitionTo(entity.StatusReceived))
}

func TestTransferStatus_CancelacionSoloAntesDeDespachar(t *testing.T) {
	assert.True(t, entity.StatusDraft.CanTransitionTo(entity.StatusCancelled))
	assert.True(t, entity.StatusApproved.CanTransitionTo(entity.StatusCancelled))
	assert.False(t, entity.StatusShipped.CanTransitionTo(entity.StatusCancelled))
	assert.False(t, entity.StatusReceived.CanTransitionTo(entity.StatusCancelled))
	assert.True(t, entity.StatusCancelled.Terminal())
	assert.True(t, entity.StatusReceived.Terminal())
}

func TestFormatRequestNo(t *testing.T) {
	day := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "TRF20261017-0042", entity.FormatRequestNo(entity.RequestTransfer, day, 42))
	assert.Equal(t, "SHP20261017-0001", entity.FormatRequestNo(entity.RequestShipment, day, 1))
	assert.Equal(t, "RTN20261017-12345", entity.FormatRequestNo(entity.RequestReturn, day, 12345))
}

func TestRequestType_ReceiptTxType(t *testing.T) {
	assert.Equal(t, entity.TxRestock, entity.RequestTransfer.ReceiptTxType())
	assert.Equal(t, entity.TxRestock, entity.RequestShipment.ReceiptTxType())
	assert.Equal(t, entity.TxReturn, entity.RequestReturn.ReceiptTxType())
}

func TestParseTxType(t *testing.T) {
	tt, ok := entity.ParseTxType("SALE")
	assert.True(t, ok)
	assert.Equal(t, entity.TxSale, tt)

	_, ok = entity.ParseTxType("sale")
	assert.False(t, ok, "los tipos son sensibles a mayúsculas")
	_, ok = entity.ParseTxType("GIFT")
	assert.False(t, ok)
}

func TestDeltaResult_Warning(t *testing.T) {
	r := &entity.DeltaResult{
		Entry:        &entity.LedgerEntry{LocationCode: "A", VariantID: 7, QtyChange: -10},
		LocationCode: "A",
		VariantID:    7,
		Requested:    -50,
		Applied:      -10,
		QtyAfter:     0,
		Clamped:      true,
	}
	w := r.Warning()
	if assert.NotNil(t, w) {
		assert.Equal(t, int64(-50), w.Requested)
		assert.Equal(t, int64(-10), w.Applied)
	}
	r.Clamped = false
	assert.Nil(t, r.Warning())
}
