package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de NotificationRepository sobre PostgreSQL.
// Los destinatarios se guardan como JSONB; un índice único parcial impide dos PENDING por par.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `id, from_location, variant_id, from_qty, targets, status, created_at, created_by,
	resolved_at, resolved_by, transfer_request_id`

// Create persiste la alerta; una segunda PENDING para el mismo par devuelve domain.ErrDuplicate.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.StockRequestNotification) error {
	targets := n.Targets
	if targets == nil {
		targets = []entity.StockTarget{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_request_notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.FromLocation, n.VariantID, n.FromQty, targets, string(n.Status), n.CreatedAt, n.CreatedBy,
		n.ResolvedAt, n.ResolvedBy, n.TransferRequestID,
	)
	if err != nil {
		return mapError("insert stock request", "stock_request", n.ID, err)
	}
	return nil
}

// GetByID obtiene la alerta, o nil si no existe.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.StockRequestNotification, error) {
	return r.getOne(ctx, `SELECT `+notificationColumns+` FROM stock_request_notifications WHERE id = $1`, id)
}

// GetForUpdate lee la alerta y bloquea su fila.
func (r *NotificationRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockRequestNotification, error) {
	return r.getOne(ctx, `SELECT `+notificationColumns+` FROM stock_request_notifications WHERE id = $1 FOR UPDATE`, id)
}

// FindPending devuelve la alerta PENDING del par, o nil.
func (r *NotificationRepo) FindPending(ctx context.Context, location string, variantID int64) (*entity.StockRequestNotification, error) {
	return r.getOne(ctx, `SELECT `+notificationColumns+` FROM stock_request_notifications
		WHERE from_location = $1 AND variant_id = $2 AND status = 'PENDING'`, location, variantID)
}

func (r *NotificationRepo) getOne(ctx context.Context, query string, args ...any) (*entity.StockRequestNotification, error) {
	n, err := scanNotification(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock request: %w", err)
	}
	return n, nil
}

// MarkResolved hace compare-and-set PENDING -> RESOLVED.
func (r *NotificationRepo) MarkResolved(ctx context.Context, id, actor string, transferID *string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_request_notifications
		SET status = 'RESOLVED', resolved_at = $2, resolved_by = $3, transfer_request_id = $4
		WHERE id = $1 AND status = 'PENDING'`, id, at, actor, transferID)
	if err != nil {
		return mapError("resolve stock request", "stock_request", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Conflict("stock_request", id)
	}
	return nil
}

// List lista alertas filtradas por estado y por ubicación (solicitante o destinataria).
func (r *NotificationRepo) List(ctx context.Context, f repository.NotificationFilter) ([]*entity.StockRequestNotification, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.LocationCode != "" {
		args = append(args, f.LocationCode)
		where = append(where, fmt.Sprintf(
			"(from_location = $%d OR targets @> jsonb_build_array(jsonb_build_object('location', $%d::text)))",
			len(args), len(args)))
	}
	query := `SELECT ` + notificationColumns + ` FROM stock_request_notifications`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitArg(f.Limit), f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRequestNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock request: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanNotification(row pgx.Row) (*entity.StockRequestNotification, error) {
	var (
		n      entity.StockRequestNotification
		status string
	)
	err := row.Scan(&n.ID, &n.FromLocation, &n.VariantID, &n.FromQty, &n.Targets, &status, &n.CreatedAt, &n.CreatedBy,
		&n.ResolvedAt, &n.ResolvedBy, &n.TransferRequestID)
	if err != nil {
		return nil, err
	}
	n.Status = entity.NotificationStatus(status)
	return &n, nil
}
