// Package stockrequest enruta pedidos de stock entre ubicaciones: una tienda con faltante emite
// una alerta hacia las ubicaciones con más unidades, y una de ellas la convierte en traslado.
package stockrequest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/application/transfer"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/domain/stock"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

const entityName = "stock_request"

// Service es el enrutador de pedidos de stock.
type Service struct {
	txRunner      ports.TxRunner
	ledger        *ledger.Service
	transfers     *transfer.Service
	notifications repository.NotificationRepository
	locations     repository.LocationRepository
	variants      repository.VariantRepository
	events        ports.EventPublisher
	log           *logger.Logger
	now           func() time.Time
}

// Option configura dependencias opcionales.
type Option func(*Service)

// WithEvents publica stock_request.created / stock_request.resolved.
func WithEvents(p ports.EventPublisher) Option { return func(s *Service) { s.events = p } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService construye el enrutador.
func NewService(
	txRunner ports.TxRunner,
	ledgerSvc *ledger.Service,
	transfers *transfer.Service,
	notifications repository.NotificationRepository,
	locations repository.LocationRepository,
	variants repository.VariantRepository,
	opts ...Option,
) *Service {
	s := &Service{
		txRunner:      txRunner,
		ledger:        ledgerSvc,
		transfers:     transfers,
		notifications: notifications,
		locations:     locations,
		variants:      variants,
		log:           logger.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput es la alerta de una ubicación con faltante.
type CreateInput struct {
	FromLocation string
	VariantID    int64
	FromQty      int64
	Actor        string
}

// CreateResult indica si la alerta es nueva o si se reutilizó la PENDING existente del par.
type CreateResult struct {
	Notification *entity.StockRequestNotification
	Coalesced    bool
}

// CreateNotification selecciona como destinatarias TODAS las ubicaciones empatadas en la cantidad
// máxima (qty >= 1) y persiste la alerta en PENDING. Si el par ya tiene una alerta PENDING,
// la devuelve en lugar de duplicarla.
func (s *Service) CreateNotification(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	if strings.TrimSpace(in.FromLocation) == "" {
		return nil, domain.Validation("from_location", "requerido")
	}
	if in.VariantID <= 0 {
		return nil, domain.Validation("variant_id", "debe ser positivo")
	}
	if in.FromQty < 0 {
		return nil, domain.Validation("from_qty", "no puede ser negativo")
	}
	if in.FromQty > stock.MaxQuantity {
		return nil, domain.Validation("from_qty", "fuera de rango").WithValues(in.FromQty, stock.MaxQuantity)
	}
	if err := ledger.CheckMasterData(ctx, s.locations, s.variants, []string{in.FromLocation}, []int64{in.VariantID}); err != nil {
		return nil, err
	}

	if existing, err := s.notifications.FindPending(ctx, in.FromLocation, in.VariantID); err != nil {
		return nil, err
	} else if existing != nil {
		return &CreateResult{Notification: existing, Coalesced: true}, nil
	}

	balances, err := s.ledger.ListBalancesByVariant(ctx, in.VariantID)
	if err != nil {
		return nil, err
	}
	targets := stock.SelectTargets(balances, in.FromLocation)
	if len(targets) == 0 {
		return nil, domain.ValidationOn("variant", strconv.FormatInt(in.VariantID, 10), "targets", "ninguna otra ubicación tiene stock")
	}

	n := &entity.StockRequestNotification{
		ID:           uuid.New().String(),
		FromLocation: in.FromLocation,
		VariantID:    in.VariantID,
		FromQty:      in.FromQty,
		Targets:      targets,
		Status:       entity.NotificationPending,
		CreatedAt:    s.now(),
		CreatedBy:    in.Actor,
	}
	var coalesced *entity.StockRequestNotification
	err = s.txRunner.Run(ctx, func(tx ports.Tx) error {
		existing, err := tx.Notifications.FindPending(ctx, in.FromLocation, in.VariantID)
		if err != nil {
			return err
		}
		if existing != nil {
			coalesced = existing
			return nil
		}
		return tx.Notifications.Create(ctx, n)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Otra transacción creó la alerta del par entre la lectura y el insert.
		existing, ferr := s.notifications.FindPending(ctx, in.FromLocation, in.VariantID)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, err
		}
		return &CreateResult{Notification: existing, Coalesced: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if coalesced != nil {
		return &CreateResult{Notification: coalesced, Coalesced: true}, nil
	}

	s.log.Info().
		Str("notification_id", n.ID).
		Str("from_location", n.FromLocation).
		Int64("variant_id", n.VariantID).
		Int("targets", len(n.Targets)).
		Msg("alerta de stock creada")
	s.publish(ctx, ports.EventStockRequestCreated, n, in.Actor)
	return &CreateResult{Notification: n}, nil
}

// ProcessInput es la respuesta de una ubicación destinataria.
type ProcessInput struct {
	ResolverLocation string
	Qty              int64
	Actor            string
}

// ProcessResult devuelve la alerta resuelta y el traslado creado.
type ProcessResult struct {
	Notification *entity.StockRequestNotification
	Transfer     *entity.TransferRequest
}

// Process convierte una alerta PENDING en un traslado (TRANSFER, DRAFT) desde la ubicación que
// responde hacia la solicitante, y la marca RESOLVED en la misma transacción.
func (s *Service) Process(ctx context.Context, id string, in ProcessInput) (*ProcessResult, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	if strings.TrimSpace(in.ResolverLocation) == "" {
		return nil, domain.Validation("resolver_location", "requerido")
	}
	if in.Qty <= 0 {
		return nil, domain.Validation("qty", "debe ser mayor que cero")
	}
	if in.Qty > stock.MaxQuantity {
		return nil, domain.Validation("qty", "fuera de rango").WithValues(in.Qty, stock.MaxQuantity)
	}
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPending(n); err != nil {
		return nil, err
	}
	if in.ResolverLocation == n.FromLocation {
		return nil, domain.ValidationOn(entityName, id, "resolver_location", "la ubicación solicitante no puede resolver su propia alerta")
	}
	if !n.HasTarget(in.ResolverLocation) {
		return nil, domain.ValidationOn(entityName, id, "resolver_location", "la ubicación no está entre las destinatarias")
	}

	create := transfer.CreateInput{
		Type:         entity.RequestTransfer,
		FromLocation: in.ResolverLocation,
		ToLocation:   n.FromLocation,
		Items:        []transfer.ItemInput{{VariantID: n.VariantID, Qty: in.Qty}},
		Memo:         "pedido de stock " + n.ID,
		Actor:        in.Actor,
	}
	if err := s.transfers.ValidateCreate(ctx, create); err != nil {
		return nil, err
	}

	var req *entity.TransferRequest
	err = s.txRunner.Run(ctx, func(tx ports.Tx) error {
		locked, err := lockPending(ctx, tx, id)
		if err != nil {
			return err
		}
		r, err := s.transfers.CreateTx(ctx, tx, create)
		if err != nil {
			return err
		}
		now := s.now()
		if err := tx.Notifications.MarkResolved(ctx, id, in.Actor, &r.ID, now); err != nil {
			return err
		}
		markResolved(locked, in.Actor, &r.ID, now)
		n, req = locked, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transfers.StatusChanged(ctx, req, "", in.Actor)
	s.resolved(ctx, n, in.Actor)
	return &ProcessResult{Notification: n, Transfer: req}, nil
}

// Resolve marca la alerta RESOLVED sin crear traslado.
func (s *Service) Resolve(ctx context.Context, id, actor string) (*entity.StockRequestNotification, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, domain.Validation("actor", "requerido para auditoría")
	}
	var n *entity.StockRequestNotification
	err := s.txRunner.Run(ctx, func(tx ports.Tx) error {
		locked, err := lockPending(ctx, tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := tx.Notifications.MarkResolved(ctx, id, actor, nil, now); err != nil {
			return err
		}
		markResolved(locked, actor, nil, now)
		n = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.resolved(ctx, n, actor)
	return n, nil
}

// Get devuelve una alerta.
func (s *Service) Get(ctx context.Context, id string) (*entity.StockRequestNotification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.NotFound(entityName, id)
	}
	return n, nil
}

// List devuelve alertas, más recientes primero. LocationCode coincide con la solicitante o
// con cualquiera de las destinatarias.
func (s *Service) List(ctx context.Context, f repository.NotificationFilter) ([]*entity.StockRequestNotification, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, domain.Validation("status", "estado desconocido: "+string(*f.Status))
	}
	f.Limit, f.Offset = ledger.ClampPage(f.Limit, f.Offset)
	return s.notifications.List(ctx, f)
}

func lockPending(ctx context.Context, tx ports.Tx, id string) (*entity.StockRequestNotification, error) {
	n, err := tx.Notifications.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.NotFound(entityName, id)
	}
	if err := checkPending(n); err != nil {
		return nil, err
	}
	return n, nil
}

func checkPending(n *entity.StockRequestNotification) error {
	if n.Status != entity.NotificationPending {
		return domain.InvalidTransition(entityName, n.ID, string(n.Status), string(entity.NotificationResolved))
	}
	return nil
}

func markResolved(n *entity.StockRequestNotification, actor string, transferID *string, at time.Time) {
	n.Status = entity.NotificationResolved
	n.ResolvedAt = &at
	n.ResolvedBy = actor
	n.TransferRequestID = transferID
}

func (s *Service) resolved(ctx context.Context, n *entity.StockRequestNotification, actor string) {
	ev := s.log.Info().Str("notification_id", n.ID).Str("actor", actor)
	if n.TransferRequestID != nil {
		ev = ev.Str("transfer_request_id", *n.TransferRequestID)
	}
	ev.Msg("alerta de stock resuelta")
	s.publish(ctx, ports.EventStockRequestResolved, n, actor)
}

func (s *Service) publish(ctx context.Context, eventType string, n *entity.StockRequestNotification, actor string) {
	if s.events == nil {
		return
	}
	evt := ports.StockRequestEvent{
		NotificationID: n.ID,
		FromLocation:   n.FromLocation,
		VariantID:      n.VariantID,
		Actor:          actor,
	}
	for _, t := range n.Targets {
		evt.Targets = append(evt.Targets, t.LocationCode)
	}
	if n.TransferRequestID != nil {
		evt.TransferRequestID = *n.TransferRequestID
	}
	if err := s.events.Publish(ctx, eventType, n.FromLocation, evt); err != nil {
		s.log.Error().Err(err).Str("notification_id", n.ID).Msg("no se pudo publicar " + eventType)
	}
}
