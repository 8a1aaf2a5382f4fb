package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
)

// Límites de paginación para lecturas del libro.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ClampPage aplica valores por defecto y máximos a limit/offset.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListEntries devuelve el historial filtrado por ubicación, variante, rango de fechas y tipo.
func (s *Service) ListEntries(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	if f.TxType != nil && !f.TxType.Valid() {
		return nil, domain.Validation("tx_type", "tipo de transacción desconocido: "+string(*f.TxType))
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.Validation("to", "la fecha final es anterior a la inicial")
	}
	f.Limit, f.Offset = ClampPage(f.Limit, f.Offset)
	return s.entries.List(ctx, f)
}

// ListBalancesByVariant devuelve el saldo de una variante en todas las ubicaciones que la tuvieron.
func (s *Service) ListBalancesByVariant(ctx context.Context, variantID int64) ([]*entity.StockBalance, error) {
	if variantID <= 0 {
		return nil, domain.Validation("variant_id", "debe ser positivo")
	}
	return s.stocks.ListByVariant(ctx, variantID)
}

// ListBalancesByLocation devuelve los saldos de una ubicación, paginados.
func (s *Service) ListBalancesByLocation(ctx context.Context, location string, limit, offset int) ([]*entity.StockBalance, error) {
	if strings.TrimSpace(location) == "" {
		return nil, domain.Validation("location_code", "requerido")
	}
	limit, offset = ClampPage(limit, offset)
	return s.stocks.ListByLocation(ctx, location, limit, offset)
}

// Reconciliation es el resultado de reproducir el libro de un par contra su saldo.
type Reconciliation struct {
	LocationCode  string `json:"location_code"`
	VariantID     int64  `json:"variant_id"`
	Balance       int64  `json:"balance"`
	Replayed      int64  `json:"replayed"`
	Entries       int    `json:"entries"`
	Consistent    bool   `json:"consistent"`
	FirstBadTxID  string `json:"first_bad_tx_id,omitempty"`
	FirstBadIndex int    `json:"first_bad_index,omitempty"`
}

// errReadOnly revierte la transacción de lectura de Verify.
var errReadOnly = errors.New("verificación de solo lectura")

// Verify reproduce todos los asientos del par en orden de creación y compara con el saldo guardado.
// Lee sin caché y dentro de una transacción con la fila del saldo bloqueada, así el libro y el saldo
// corresponden al mismo instante.
func (s *Service) Verify(ctx context.Context, location string, variantID int64) (*Reconciliation, error) {
	if strings.TrimSpace(location) == "" {
		return nil, domain.Validation("location_code", "requerido")
	}
	if variantID <= 0 {
		return nil, domain.Validation("variant_id", "debe ser positivo")
	}
	var (
		entries []*entity.LedgerEntry
		bal     *entity.StockBalance
	)
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		var err error
		if bal, err = tx.Stocks.GetForUpdate(ctx, location, variantID); err != nil {
			return err
		}
		if entries, err = tx.Ledger.ListForReplay(ctx, location, variantID); err != nil {
			return err
		}
		return errReadOnly
	})
	if err != nil && !errors.Is(err, errReadOnly) {
		return nil, err
	}
	replayed, mismatch := stock.Replay(entries)
	rec := &Reconciliation{
		LocationCode: location,
		VariantID:    variantID,
		Balance:      bal.Qty,
		Replayed:     replayed,
		Entries:      len(entries),
		Consistent:   mismatch == nil && replayed == bal.Qty,
	}
	if mismatch != nil {
		rec.FirstBadTxID = mismatch.TxID
		rec.FirstBadIndex = mismatch.Index
	}
	return rec, nil
}
