// Package transfer implementa el flujo de solicitudes de traslado:
// DRAFT -> APPROVED -> SHIPPED -> RECEIVED, con CANCELLED solo antes del despacho.
// Cada transición relee el estado bajo bloqueo y lo cambia con compare-and-set.
package transfer

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

const entityName = "transfer_request"

// Service es el flujo de traslados.
type Service struct {
	txRunner  ports.TxRunner
	ledger    *ledger.Service
	transfers repository.TransferRepository
	locations repository.LocationRepository
	variants  repository.VariantRepository
	events    ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// Option configura dependencias opcionales.
type Option func(*Service)

// WithEvents publica transfer.status_changed tras cada transición.
func WithEvents(p ports.EventPublisher) Option { return func(s *Service) { s.events = p } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService construye el flujo. transfers es el repositorio de lectura fuera de transacción.
func NewService(
	txRunner ports.TxRunner,
	ledgerSvc *ledger.Service,
	transfers repository.TransferRepository,
	locations repository.LocationRepository,
	variants repository.VariantRepository,
	opts ...Option,
) *Service {
	s := &Service{
		txRunner:  txRunner,
		ledger:    ledgerSvc,
		transfers: transfers,
		locations: locations,
		variants:  variants,
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ItemInput es una línea solicitada.
type ItemInput struct {
	VariantID int64
	Qty       int64
}

// CreateInput es la entrada de creación. AutoApprove corresponde a la solicitud directa de
// gerencia, que nace APPROVED; la solicitud de tienda nace DRAFT.
type CreateInput struct {
	Type         entity.RequestType
	FromLocation string
	ToLocation   string
	Items        []ItemInput
	Memo         string
	Actor        string
	AutoApprove  bool
}

// QtyInput es la cantidad despachada o recibida de un ítem.
type QtyInput struct {
	ItemID string
	Qty    int64
}

// Result es el estado de la solicitud tras la operación más los avisos de recorte del libro.
type Result struct {
	Request  *entity.TransferRequest
	Warnings []entity.ClampWarning
}

// ─── Creación ──────────────────────────────────────────────────────────────────

// ValidateCreate aplica las reglas estructurales de creación y valida el maestro de datos.
// No abre transacción.
func (s *Service) ValidateCreate(ctx context.Context, in CreateInput) error {
	if !in.Type.Valid() {
		return domain.Validation("request_type", "tipo de solicitud desconocido: "+string(in.Type))
	}
	if strings.TrimSpace(in.Actor) == "" {
		return domain.Validation("actor", "requerido para auditoría")
	}
	if strings.TrimSpace(in.FromLocation) == "" {
		return domain.Validation("from_location", "requerido")
	}
	if in.ToLocation == "" && in.Type != entity.RequestReturn {
		return domain.Validation("to_location", "requerido para "+string(in.Type))
	}
	if in.ToLocation != "" && in.ToLocation == in.FromLocation {
		return domain.Validation("to_location", "origen y destino no pueden ser iguales")
	}
	if utf8.RuneCountInString(in.Memo) > ledger.MaxMemoLength {
		return domain.Validation("memo", "demasiado largo")
	}
	variantIDs, err := validateItems(in.Items)
	if err != nil {
		return err
	}
	codes := []string{in.FromLocation}
	if in.ToLocation != "" {
		codes = append(codes, in.ToLocation)
	}
	return ledger.CheckMasterData(ctx, s.locations, s.variants, codes, variantIDs)
}

func validateItems(items []ItemInput) ([]int64, error) {
	if len(items) == 0 {
		return nil, domain.Validation("items", "la solicitud debe tener al menos un ítem")
	}
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.VariantID <= 0 {
			return nil, domain.Validation("variant_id", "debe ser positivo")
		}
		if it.Qty <= 0 {
			return nil, domain.ValidationOn("variant", formatID(it.VariantID), "request_qty", "debe ser mayor que cero").WithValues(it.Qty, 0)
		}
		if it.Qty > stock.MaxQuantity {
			return nil, domain.ValidationOn("variant", formatID(it.VariantID), "request_qty", "fuera de rango").WithValues(it.Qty, stock.MaxQuantity)
		}
		if seen[it.VariantID] {
			return nil, domain.ValidationOn("variant", formatID(it.VariantID), "items", "variante repetida")
		}
		seen[it.VariantID] = true
		ids = append(ids, it.VariantID)
	}
	return ids, nil
}

// Create crea la solicitud en DRAFT, o en APPROVED si AutoApprove.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.TransferRequest, error) {
	if err := s.ValidateCreate(ctx, in); err != nil {
		return nil, err
	}
	var req *entity.TransferRequest
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		r, err := s.CreateTx(ctx, tx, in)
		if err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.StatusChanged(ctx, req, "", in.Actor)
	return req, nil
}

// CreateTx inserta la solicitud dentro de una transacción existente. Supone ValidateCreate ya
// ejecutado; el llamador debe invocar StatusChanged tras el commit.
func (s *Service) CreateTx(ctx context.Context, tx ports.Tx, in CreateInput) (*entity.TransferRequest, error) {
	seq, err := tx.Transfers.NextSequence(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	status := entity.StatusDraft
	if in.AutoApprove {
		status = entity.StatusApproved
	}
	req := &entity.TransferRequest{
		ID:           uuid.New().String(),
		RequestNo:    entity.FormatRequestNo(in.Type, now, seq),
		Type:         in.Type,
		FromLocation: in.FromLocation,
		Status:       status,
		RequestDate:  now,
		Memo:         ledger.NormalizeMemo(in.Memo),
		CreatedBy:    in.Actor,
		UpdatedAt:    now,
		Items:        newItems("", in.Items),
	}
	if in.ToLocation != "" {
		to := in.ToLocation
		req.ToLocation = &to
	}
	for i := range req.Items {
		req.Items[i].RequestID = req.ID
	}
	if err := tx.Transfers.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func newItems(requestID string, items []ItemInput) []entity.TransferItem {
	out := make([]entity.TransferItem, len(items))
	for i, it := range items {
		out[i] = entity.TransferItem{
			ID:         uuid.New().String(),
			RequestID:  requestID,
			VariantID:  it.VariantID,
			RequestQty: it.Qty,
		}
	}
	return out
}

// UpdateItems reemplaza los ítems de una solicitud en DRAFT.
func (s *Service) UpdateItems(ctx context.Context, id string, items []ItemInput, actor string) (*entity.TransferRequest, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	variantIDs, err := validateItems(items)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckMasterData(ctx, s.locations, s.variants, nil, variantIDs); err != nil {
		return nil, err
	}

	var req *entity.TransferRequest
	err = s.txRunner.Run(ctx, func(tx ports.Tx) error {
		r, err := lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status != entity.StatusDraft {
			return &domain.Error{
				Kind:    domain.ErrInvalidTransition,
				Entity:  entityName,
				ID:      id,
				Field:   "status",
				Message: "los ítems solo se editan en DRAFT, estado actual " + string(r.Status),
			}
		}
		r.Items = newItems(id, items)
		if err := tx.Transfers.ReplaceItems(ctx, id, r.Items); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("request_id", id).Int("items", len(items)).Str("actor", actor).Msg("ítems de solicitud actualizados")
	return req, nil
}

// ─── Transiciones sin efecto en stock ─────────────────────────────────────────

// Approve: DRAFT -> APPROVED.
func (s *Service) Approve(ctx context.Context, id, actor string) (*entity.TransferRequest, error) {
	return s.changeStatus(ctx, id, actor, entity.StatusApproved)
}

// Cancel: DRAFT | APPROVED -> CANCELLED. Después del despacho se rechaza: la reversa es un
// traslado compensatorio.
func (s *Service) Cancel(ctx context.Context, id, actor string) (*entity.TransferRequest, error) {
	return s.changeStatus(ctx, id, actor, entity.StatusCancelled)
}

func (s *Service) changeStatus(ctx context.Context, id, actor string, to entity.TransferStatus) (*entity.TransferRequest, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	var (
		req  *entity.TransferRequest
		from entity.TransferStatus
	)
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		r, err := lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		from = r.Status
		if err := s.setStatus(ctx, tx, r, to); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.StatusChanged(ctx, req, from, actor)
	return req, nil
}

// ─── Despacho y recepción ──────────────────────────────────────────────────────

// RecordShipment: APPROVED -> SHIPPED. Descuenta del origen, en un solo lote, lo despachado de
// cada ítem. Los recortes no hacen fallar la transición; se devuelven como avisos.
func (s *Service) RecordShipment(ctx context.Context, id string, qtys []QtyInput, actor string) (*Result, error) {
	return s.move(ctx, id, qtys, actor, entity.StatusShipped)
}

// RecordReceipt: SHIPPED -> RECEIVED. Acredita en destino lo recibido de cada ítem; puede ser
// menor a lo despachado (pérdida o daño en tránsito).
func (s *Service) RecordReceipt(ctx context.Context, id string, qtys []QtyInput, actor string) (*Result, error) {
	return s.move(ctx, id, qtys, actor, entity.StatusReceived)
}

func (s *Service) move(ctx context.Context, id string, qtys []QtyInput, actor string, to entity.TransferStatus) (*Result, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	var (
		req     *entity.TransferRequest
		from    entity.TransferStatus
		results []*entity.DeltaResult
	)
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		r, err := lockRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		from = r.Status
		if !r.Status.CanTransitionTo(to) {
			return domain.InvalidTransition(entityName, id, string(r.Status), string(to))
		}
		byItem, err := matchItems(r, qtys, to)
		if err != nil {
			return err
		}

		var deltas []ledger.DeltaInput
		for i := range r.Items {
			it := &r.Items[i]
			q := byItem[it.ID]
			if to == entity.StatusShipped {
				it.ShippedQty = &q
				if q > 0 {
					deltas = append(deltas, s.legDelta(r, r.FromLocation, it.VariantID, -q, entity.TxShipment, actor))
				}
				continue
			}
			it.ReceivedQty = &q
			if q > 0 && r.ToLocation != nil {
				deltas = append(deltas, s.legDelta(r, *r.ToLocation, it.VariantID, q, r.Type.ReceiptTxType(), actor))
			}
		}

		if len(deltas) > 0 {
			results, err = s.ledger.ApplyBatch(ctx, tx, deltas)
			if err != nil {
				return err
			}
		}
		if err := tx.Transfers.UpdateQuantities(ctx, r.Items); err != nil {
			return err
		}
		if err := s.setStatus(ctx, tx, r, to); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Committed(ctx, results...)
	s.StatusChanged(ctx, req, from, actor)
	res := &Result{Request: req}
	for _, r := range results {
		if w := r.Warning(); w != nil {
			res.Warnings = append(res.Warnings, *w)
		}
	}
	return res, nil
}

// matchItems exige que la entrada cubra cada ítem exactamente una vez y que las cantidades estén
// dentro de límites: despacho <= solicitado, recepción <= despachado.
func matchItems(r *entity.TransferRequest, qtys []QtyInput, to entity.TransferStatus) (map[string]int64, error) {
	field := "shipped_qty"
	if to == entity.StatusReceived {
		field = "received_qty"
	}
	byItem := make(map[string]int64, len(qtys))
	for _, q := range qtys {
		it, ok := r.Item(q.ItemID)
		if !ok {
			return nil, domain.NotFound("transfer_item", q.ItemID)
		}
		if _, dup := byItem[q.ItemID]; dup {
			return nil, domain.ValidationOn("transfer_item", q.ItemID, field, "ítem repetido")
		}
		limit := it.RequestQty
		if to == entity.StatusReceived {
			limit = 0
			if it.ShippedQty != nil {
				limit = *it.ShippedQty
			}
		}
		if q.Qty < 0 || q.Qty > limit {
			return nil, domain.ValidationOn("transfer_item", q.ItemID, field, "fuera de rango").WithValues(q.Qty, limit)
		}
		byItem[q.ItemID] = q.Qty
	}
	for _, it := range r.Items {
		if _, ok := byItem[it.ID]; !ok {
			return nil, domain.ValidationOn("transfer_item", it.ID, field, "falta la cantidad del ítem")
		}
	}
	return byItem, nil
}

func (s *Service) legDelta(r *entity.TransferRequest, location string, variantID, delta int64, txType entity.TxType, actor string) ledger.DeltaInput {
	return ledger.DeltaInput{
		LocationCode: location,
		VariantID:    variantID,
		Delta:        delta,
		TxType:       txType,
		Memo:         r.RequestNo,
		Actor:        actor,
	}
}

// ─── Soporte ───────────────────────────────────────────────────────────────────

func lockRequest(ctx context.Context, tx ports.Tx, id string) (*entity.TransferRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Validation("request_id", "requerido")
	}
	r, err := tx.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound(entityName, id)
	}
	return r, nil
}

// setStatus valida la transición sobre el estado leído bajo bloqueo y hace el compare-and-set.
func (s *Service) setStatus(ctx context.Context, tx ports.Tx, r *entity.TransferRequest, to entity.TransferStatus) error {
	if !r.Status.CanTransitionTo(to) {
		return domain.InvalidTransition(entityName, r.ID, string(r.Status), string(to))
	}
	now := s.now()
	if err := tx.Transfers.UpdateStatus(ctx, r.ID, r.Status, to, now); err != nil {
		return err
	}
	r.Status = to
	r.UpdatedAt = now
	return nil
}

// StatusChanged registra y publica una transición ya confirmada. from vacío indica creación.
func (s *Service) StatusChanged(ctx context.Context, r *entity.TransferRequest, from entity.TransferStatus, actor string) {
	s.log.Info().
		Str("request_id", r.ID).
		Str("request_no", r.RequestNo).
		Str("from", string(from)).
		Str("to", string(r.Status)).
		Str("actor", actor).
		Msg("solicitud de traslado cambió de estado")
	if s.events == nil {
		return
	}
	evt := ports.TransferStatusChangedEvent{
		RequestID:    r.ID,
		RequestNo:    r.RequestNo,
		FromStatus:   string(from),
		ToStatus:     string(r.Status),
		FromLocation: r.FromLocation,
		ToLocation:   r.Destination(),
		Actor:        actor,
	}
	if err := s.events.Publish(ctx, ports.EventTransferStatusChanged, r.ID, evt); err != nil {
		s.log.Error().Err(err).Str("request_id", r.ID).Msg("no se pudo publicar transfer.status_changed")
	}
}
