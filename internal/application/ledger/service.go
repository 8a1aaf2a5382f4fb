// Package ledger implementa el libro de stock: el único componente autorizado a modificar un saldo.
// Cada cambio inserta un asiento inmutable y actualiza el saldo en la misma transacción.
package ledger

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// MaxMemoLength es el largo máximo (en runas) de la nota de un asiento.
const MaxMemoLength = 500

// Service es el libro de stock.
type Service struct {
	txRunner ports.TxRunner
	stocks   repository.StockBalanceRepository
	entries  repository.LedgerRepository
	cache    ports.BalanceCache
	events   ports.EventPublisher
	log      *logger.Logger
	now      func() time.Time

	// writes cuenta los commits vistos por Committed; GetBalance no llena la caché si cambió
	// durante su lectura.
	writes atomic.Int64
}

// Option configura dependencias opcionales del servicio.
type Option func(*Service)

// WithCache activa la caché de lectura de saldos.
func WithCache(c ports.BalanceCache) Option { return func(s *Service) { s.cache = c } }

// WithEvents publica un evento por asiento tras el commit.
func WithEvents(p ports.EventPublisher) Option { return func(s *Service) { s.events = p } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService construye el libro. stocks y entries son los repositorios de lectura fuera de transacción.
func NewService(txRunner ports.TxRunner, stocks repository.StockBalanceRepository, entries repository.LedgerRepository, opts ...Option) *Service {
	s := &Service{
		txRunner: txRunner,
		stocks:   stocks,
		entries:  entries,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeltaInput es un cambio solicitado sobre un saldo.
type DeltaInput struct {
	LocationCode string
	VariantID    int64
	Delta        int64
	TxType       entity.TxType
	Memo         string
	Actor        string
}

func (in DeltaInput) key() entity.BalanceKey {
	return entity.BalanceKey{LocationCode: in.LocationCode, VariantID: in.VariantID}
}

// Validate aplica las reglas estructurales del libro: delta distinto de cero, tipo conocido,
// identificadores y actor presentes.
func (in DeltaInput) Validate() error {
	if strings.TrimSpace(in.LocationCode) == "" {
		return domain.Validation("location_code", "requerido")
	}
	if in.VariantID <= 0 {
		return domain.Validation("variant_id", "debe ser positivo")
	}
	if in.Delta == 0 {
		return domain.Validation("delta", "un cambio de cero no está permitido")
	}
	if in.Delta > stock.MaxQuantity || in.Delta < -stock.MaxQuantity {
		return domain.Validation("delta", "fuera de rango").WithValues(in.Delta, stock.MaxQuantity)
	}
	if !in.TxType.Valid() {
		return domain.Validation("tx_type", "tipo de transacción desconocido: "+string(in.TxType))
	}
	if strings.TrimSpace(in.Actor) == "" {
		return domain.Validation("actor", "requerido para auditoría")
	}
	if utf8.RuneCountInString(in.Memo) > MaxMemoLength {
		return domain.Validation("memo", "demasiado largo")
	}
	return nil
}

// NormalizeMemo recorta espacios y normaliza a NFC (los textos en coreano o con tildes llegan
// descompuestos desde algunos clientes).
func NormalizeMemo(memo string) string {
	return norm.NFC.String(strings.TrimSpace(memo))
}

// GetBalance devuelve el saldo actual; 0 si nunca hubo movimientos (nunca error por ausencia).
// Un saldo leído mientras otro commit del mismo proceso invalidaba la caché no se guarda en ella.
// Entre instancias distintas la caché puede quedar atrasada como máximo el TTL.
func (s *Service) GetBalance(ctx context.Context, location string, variantID int64) (int64, error) {
	if s.cache != nil {
		if qty, ok, err := s.cache.Get(ctx, location, variantID); err == nil && ok {
			return qty, nil
		} else if err != nil {
			s.log.Debug().Err(err).Str("location", location).Int64("variant_id", variantID).Msg("caché de saldo no disponible")
		}
	}
	seen := s.writes.Load()
	b, err := s.stocks.Get(ctx, location, variantID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.fillCache(ctx, location, variantID, b.Qty, seen)
	}
	return b.Qty, nil
}

// fillCache guarda qty sólo si ningún commit pasó desde seen; si uno llega durante el Set,
// vuelve a invalidar.
func (s *Service) fillCache(ctx context.Context, location string, variantID, qty, seen int64) {
	if s.writes.Load() != seen {
		return
	}
	if err := s.cache.Set(ctx, location, variantID, qty); err != nil {
		s.log.Debug().Err(err).Msg("no se pudo guardar saldo en caché")
		return
	}
	if s.writes.Load() != seen {
		if err := s.cache.Invalidate(ctx, location, variantID); err != nil {
			s.log.Warn().Err(err).Str("location", location).Int64("variant_id", variantID).Msg("no se pudo invalidar caché de saldo")
		}
	}
}

// ApplyDelta aplica un cambio en su propia transacción y ejecuta los efectos posteriores al commit.
func (s *Service) ApplyDelta(ctx context.Context, in DeltaInput) (*entity.DeltaResult, error) {
	var res *entity.DeltaResult
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		r, err := s.Apply(ctx, tx, in)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Committed(ctx, res)
	return res, nil
}

// Apply aplica un cambio dentro de una transacción existente: bloquea la fila (SELECT FOR UPDATE),
// recorta a cero si corresponde, actualiza el saldo e inserta el asiento. El llamador es responsable
// de invocar Committed después del commit.
func (s *Service) Apply(ctx context.Context, tx ports.Tx, in DeltaInput) (*entity.DeltaResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	bal, err := tx.Stocks.GetForUpdate(ctx, in.LocationCode, in.VariantID)
	if err != nil {
		return nil, err
	}
	if stock.Overflows(bal.Qty, in.Delta) {
		return nil, domain.ValidationOn("stock_balance", in.LocationCode, "delta", "el saldo resultante excede el máximo").WithValues(in.Delta, bal.Qty)
	}
	applied, after, clamped := stock.Clamp(bal.Qty, in.Delta)
	res := &entity.DeltaResult{
		LocationCode: in.LocationCode,
		VariantID:    in.VariantID,
		Requested:    in.Delta,
		Applied:      applied,
		QtyAfter:     after,
		Clamped:      clamped,
	}
	if applied == 0 {
		// Débito sobre saldo cero: nada que registrar.
		return res, nil
	}

	now := s.now()
	bal.Qty = after
	bal.UpdatedAt = now
	if err := tx.Stocks.Upsert(ctx, bal); err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		TxID:         uuid.New().String(),
		LocationCode: in.LocationCode,
		VariantID:    in.VariantID,
		TxType:       in.TxType,
		QtyChange:    applied,
		QtyAfter:     after,
		Memo:         NormalizeMemo(in.Memo),
		Actor:        in.Actor,
		CreatedAt:    now,
	}
	if err := tx.Ledger.Create(ctx, entry); err != nil {
		return nil, err
	}
	res.Entry = entry
	return res, nil
}

// ApplyBatch aplica varios cambios dentro de la misma transacción. Las filas se bloquean en orden
// (ubicación, variante) para evitar interbloqueos; los resultados respetan el orden de entrada.
// Si un cambio falla, el llamador debe abortar la transacción completa.
func (s *Service) ApplyBatch(ctx context.Context, tx ports.Tx, inputs []DeltaInput) ([]*entity.DeltaResult, error) {
	for _, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	}
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return inputs[order[a]].key().Less(inputs[order[b]].key())
	})
	results := make([]*entity.DeltaResult, len(inputs))
	for _, i := range order {
		r, err := s.Apply(ctx, tx, inputs[i])
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// Committed ejecuta los efectos posteriores al commit: invalida la caché, registra los recortes
// y publica eventos. Nunca falla.
func (s *Service) Committed(ctx context.Context, results ...*entity.DeltaResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		s.writes.Add(1)
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, r.LocationCode, r.VariantID); err != nil {
				s.log.Warn().Err(err).Str("location", r.LocationCode).Int64("variant_id", r.VariantID).Msg("no se pudo invalidar caché de saldo")
			}
		}
		if r.Clamped {
			s.log.Warn().
				Str("location", r.LocationCode).
				Int64("variant_id", r.VariantID).
				Int64("requested", r.Requested).
				Int64("applied", r.Applied).
				Msg("ajuste recortado a cero: el cambio solicitado excedía el stock")
		}
		if s.events == nil || r.Entry == nil {
			continue
		}
		e := r.Entry
		evt := ports.StockAdjustedEvent{
			TxID:         e.TxID,
			LocationCode: e.LocationCode,
			VariantID:    e.VariantID,
			TxType:       string(e.TxType),
			Requested:    r.Requested,
			QtyChange:    e.QtyChange,
			QtyAfter:     e.QtyAfter,
			Clamped:      r.Clamped,
			Actor:        e.Actor,
			CreatedAt:    e.CreatedAt,
		}
		if err := s.events.Publish(ctx, ports.EventStockAdjusted, e.LocationCode, evt); err != nil {
			s.log.Error().Err(err).Str("tx_id", e.TxID).Msg("no se pudo publicar stock.adjusted")
		}
	}
}
