package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
)

func bal(loc string, qty int64) *entity.StockBalance {
	return &entity.StockBalance{LocationCode: loc, VariantID: 1, Qty: qty}
}

func TestSelectTargets_IncluyeTodosLosEmpatados(t *testing.T) {
	balances := []*entity.StockBalance{bal("C", 7), bal("A", 7), bal("B", 3), bal("REQ", 20)}

	targets := stock.SelectTargets(balances, "REQ")

	assert.Equal(t, []entity.StockTarget{{LocationCode: "A", Qty: 7}, {LocationCode: "C", Qty: 7}}, targets)
}

func TestSelectTargets_SinStockDevuelveVacio(t *testing.T) {
	balances := []*entity.StockBalance{bal("A", 0), bal("REQ", 5)}
	assert.Empty(t, stock.SelectTargets(balances, "REQ"))
	assert.Empty(t, stock.SelectTargets(nil, "REQ"))
}

func TestSelectTargets_UnicoMaximo(t *testing.T) {
	balances := []*entity.StockBalance{bal("A", 1), bal("B", 9), bal("C", 2)}
	assert.Equal(t, []entity.StockTarget{{LocationCode: "B", Qty: 9}}, stock.SelectTargets(balances, "REQ"))
}
