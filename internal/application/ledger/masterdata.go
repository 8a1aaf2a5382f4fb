package ledger

import (
	"context"
	"strconv"

	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

// CheckMasterData verifica que todas las ubicaciones estén activas y que las variantes existan.
// Se consulta antes de abrir la transacción.
func CheckMasterData(ctx context.Context, locations repository.LocationRepository, variants repository.VariantRepository, codes []string, variantIDs []int64) error {
	for _, code := range codes {
		loc, err := locations.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.NotFound("location", code)
		}
		if !loc.Active {
			return domain.ValidationOn("location", code, "active", "ubicación inactiva")
		}
	}
	for _, id := range variantIDs {
		v, err := variants.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.NotFound("variant", strconv.FormatInt(id, 10))
		}
	}
	return nil
}
