package stock

import (
	"sort"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// SelectTargets elige, entre los saldos de otras ubicaciones, TODAS las empatadas en la cantidad
// máxima observada (qty >= 1). La ubicación solicitante se excluye. El resultado se ordena por código
// para que sea determinista.
func SelectTargets(balances []*entity.StockBalance, requester string) []entity.StockTarget {
	var max int64
	for _, b := range balances {
		if b.LocationCode == requester || b.Qty < 1 {
			continue
		}
		if b.Qty > max {
			max = b.Qty
		}
	}
	if max == 0 {
		return nil
	}
	targets := make([]entity.StockTarget, 0, 1)
	for _, b := range balances {
		if b.LocationCode == requester || b.Qty != max {
			continue
		}
		targets = append(targets, entity.StockTarget{LocationCode: b.LocationCode, Qty: b.Qty})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].LocationCode < targets[j].LocationCode })
	return targets
}
