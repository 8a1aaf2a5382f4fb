// Package adjustment expone los cambios directos de saldo (conteo físico, venta, devolución,
// reposición). Son las únicas entradas fuera del núcleo que tocan un saldo sin pasar por un traslado.
package adjustment

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
)

// InitialMemo devuelve la nota por defecto del primer registro de un par en el idioma dado.
func InitialMemo(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return "initial registration"
	}
	return "registro inicial"
}

// Service agrupa los casos de uso de ajuste directo.
type Service struct {
	txRunner  ports.TxRunner
	ledger    *ledger.Service
	locations repository.LocationRepository
	variants  repository.VariantRepository
	lang      string
}

// NewService construye el servicio. lang define el idioma de las notas por defecto ("es" | "en").
func NewService(
	txRunner ports.TxRunner,
	ledgerSvc *ledger.Service,
	locations repository.LocationRepository,
	variants repository.VariantRepository,
	lang string,
) *Service {
	return &Service{
		txRunner:  txRunner,
		ledger:    ledgerSvc,
		locations: locations,
		variants:  variants,
		lang:      lang,
	}
}

// Input es la entrada común de los ajustes. En ManualAdjust Qty es el delta con signo;
// en el resto es una cantidad positiva y el signo lo pone la operación.
type Input struct {
	LocationCode string
	VariantID    int64
	Qty          int64
	Memo         string
	Actor        string
}

// ManualAdjust corrige el saldo por conteo físico (ADJUST, cualquier signo). Si el saldo previo
// es cero y no hay nota, se registra como alta inicial del par.
func (s *Service) ManualAdjust(ctx context.Context, in Input) (*entity.DeltaResult, error) {
	if in.Qty == 0 {
		return nil, domain.Validation("qty", "un ajuste de cero no está permitido")
	}
	return s.apply(ctx, in, in.Qty, entity.TxAdjust, true)
}

// RecordSale descuenta una venta (SALE).
func (s *Service) RecordSale(ctx context.Context, in Input) (*entity.DeltaResult, error) {
	if in.Qty <= 0 {
		return nil, domain.Validation("qty", "debe ser mayor que cero")
	}
	return s.apply(ctx, in, -in.Qty, entity.TxSale, false)
}

// RecordReturn suma una devolución de cliente (RETURN).
func (s *Service) RecordReturn(ctx context.Context, in Input) (*entity.DeltaResult, error) {
	if in.Qty <= 0 {
		return nil, domain.Validation("qty", "debe ser mayor que cero")
	}
	return s.apply(ctx, in, in.Qty, entity.TxReturn, false)
}

// RecordRestock suma una reposición de proveedor (RESTOCK).
func (s *Service) RecordRestock(ctx context.Context, in Input) (*entity.DeltaResult, error) {
	if in.Qty <= 0 {
		return nil, domain.Validation("qty", "debe ser mayor que cero")
	}
	return s.apply(ctx, in, in.Qty, entity.TxRestock, false)
}

func (s *Service) apply(ctx context.Context, in Input, delta int64, txType entity.TxType, initialMemo bool) (*entity.DeltaResult, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	if delta > stock.MaxQuantity || delta < -stock.MaxQuantity {
		return nil, domain.Validation("qty", "fuera de rango").WithValues(in.Qty, stock.MaxQuantity)
	}
	if err := s.checkRefs(ctx, in.LocationCode, in.VariantID); err != nil {
		return nil, err
	}

	var res *entity.DeltaResult
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		memo := in.Memo
		if initialMemo && strings.TrimSpace(memo) == "" {
			bal, err := tx.Stocks.GetForUpdate(ctx, in.LocationCode, in.VariantID)
			if err != nil {
				return err
			}
			if bal.Qty == 0 {
				memo = InitialMemo(s.lang)
			}
		}
		r, err := s.ledger.Apply(ctx, tx, ledger.DeltaInput{
			LocationCode: in.LocationCode,
			VariantID:    in.VariantID,
			Delta:        delta,
			TxType:       txType,
			Memo:         memo,
			Actor:        in.Actor,
		})
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Committed(ctx, res)
	return res, nil
}

// checkRefs valida contra el maestro que la ubicación y la variante existan.
func (s *Service) checkRefs(ctx context.Context, location string, variantID int64) error {
	if strings.TrimSpace(location) == "" {
		return domain.Validation("location_code", "requerido")
	}
	if variantID <= 0 {
		return domain.Validation("variant_id", "debe ser positivo")
	}
	return ledger.CheckMasterData(ctx, s.locations, s.variants, []string{location}, []int64{variantID})
}
