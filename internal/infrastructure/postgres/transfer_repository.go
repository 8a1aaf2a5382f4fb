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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL (usable con pool o tx).
// Create y ReplaceItems escriben varias filas: llamarlos dentro de una transacción.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, request_no, request_type, from_location, to_location, status, request_date, memo, created_by, updated_at`

const itemColumns = `id, request_id, variant_id, request_qty, shipped_qty, received_qty`

// Create inserta la cabecera y sus ítems; el orden de Items se conserva en line_no.
func (r *TransferRepo) Create(ctx context.Context, req *entity.TransferRequest) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfer_requests (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID, req.RequestNo, string(req.Type), req.FromLocation, req.ToLocation, string(req.Status),
		req.RequestDate, req.Memo, req.CreatedBy, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate("transfer_request", req.RequestNo)
		}
		return mapError("insert transfer request", "transfer_request", req.ID, err)
	}
	return r.insertItems(ctx, req.ID, req.Items)
}

func (r *TransferRepo) insertItems(ctx context.Context, requestID string, items []entity.TransferItem) error {
	for i, it := range items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_items (id, request_id, line_no, variant_id, request_qty, shipped_qty, received_qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, requestID, i+1, it.VariantID, it.RequestQty, it.ShippedQty, it.ReceivedQty,
		)
		if err != nil {
			return mapError("insert transfer item", "transfer_item", it.ID, err)
		}
	}
	return nil
}

// GetByID obtiene la solicitud con sus ítems, o nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1`, id)
}

// GetByRequestNo obtiene la solicitud por su número legible, o nil si no existe.
func (r *TransferRepo) GetByRequestNo(ctx context.Context, requestNo string) (*entity.TransferRequest, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfer_requests WHERE request_no = $1`, requestNo)
}

// GetForUpdate lee la solicitud y bloquea su fila hasta el fin de la transacción.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.getOne(ctx, `SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) getOne(ctx context.Context, query string, arg any) (*entity.TransferRequest, error) {
	req, err := scanTransfer(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, mapError("get transfer request", "transfer_request", fmt.Sprint(arg), err)
	}
	if err := r.loadItems(ctx, []*entity.TransferRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateStatus cambia el estado solo si el actual es from (compare-and-set).
func (r *TransferRepo) UpdateStatus(ctx context.Context, id string, from, to entity.TransferStatus, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transfer_requests SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`, id, string(from), string(to), at)
	if err != nil {
		return mapError("update transfer status", "transfer_request", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Conflict("transfer_request", id)
	}
	return nil
}

// UpdateQuantities persiste shipped_qty/received_qty de cada ítem.
func (r *TransferRepo) UpdateQuantities(ctx context.Context, items []entity.TransferItem) error {
	for _, it := range items {
		cmd, err := r.q.Exec(ctx, `
			UPDATE transfer_items SET shipped_qty = $2, received_qty = $3
			WHERE id = $1`, it.ID, it.ShippedQty, it.ReceivedQty)
		if err != nil {
			return mapError("update transfer item", "transfer_item", it.ID, err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.NotFound("transfer_item", it.ID)
		}
	}
	return nil
}

// ReplaceItems borra y vuelve a insertar los ítems de la solicitud.
func (r *TransferRepo) ReplaceItems(ctx context.Context, requestID string, items []entity.TransferItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM transfer_items WHERE request_id = $1`, requestID); err != nil {
		return mapError("delete transfer items", "transfer_request", requestID, err)
	}
	return r.insertItems(ctx, requestID, items)
}

// List lista solicitudes filtradas, de la más reciente a la más antigua.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.TransferRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Type != nil {
		args = append(args, string(*f.Type))
		where = append(where, fmt.Sprintf("request_type = $%d", len(args)))
	}
	if f.LocationCode != "" {
		args = append(args, f.LocationCode)
		where = append(where, fmt.Sprintf("(from_location = $%d OR to_location = $%d)", len(args), len(args)))
	}
	query := `SELECT ` + transferColumns + ` FROM transfer_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitArg(f.Limit), f.Offset)
	query += fmt.Sprintf(" ORDER BY request_date DESC, request_no DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer requests: %w", err)
	}
	var list []*entity.TransferRequest
	for rows.Next() {
		req, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer request: %w", err)
		}
		list = append(list, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transfer requests: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// NextSequence toma el siguiente valor de transfer_request_no_seq.
func (r *TransferRepo) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('transfer_request_no_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next transfer sequence: %w", err)
	}
	return seq, nil
}

// loadItems carga los ítems de varias solicitudes en una sola consulta, ordenados por line_no.
func (r *TransferRepo) loadItems(ctx context.Context, reqs []*entity.TransferRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, len(reqs))
	byID := make(map[string]*entity.TransferRequest, len(reqs))
	for i, req := range reqs {
		ids[i] = req.ID
		byID[req.ID] = req
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+` FROM transfer_items
		WHERE request_id = ANY($1::uuid[]) ORDER BY request_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.VariantID, &it.RequestQty, &it.ShippedQty, &it.ReceivedQty); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		if req, ok := byID[it.RequestID]; ok {
			req.Items = append(req.Items, it)
		}
	}
	return rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.TransferRequest, error) {
	var (
		req             entity.TransferRequest
		reqType, status string
	)
	err := row.Scan(&req.ID, &req.RequestNo, &reqType, &req.FromLocation, &req.ToLocation, &status,
		&req.RequestDate, &req.Memo, &req.CreatedBy, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.Type = entity.RequestType(reqType)
	req.Status = entity.TransferStatus(status)
	return &req, nil
}
