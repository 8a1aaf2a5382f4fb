package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockRepo)(nil)

// StockRepo implementación de StockBalanceRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const balanceColumns = `location_code, variant_id, qty, updated_at`

// Get obtiene el saldo de una variante en una ubicación; sin fila devuelve cero.
func (r *StockRepo) Get(ctx context.Context, location string, variantID int64) (*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE location_code = $1 AND variant_id = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, location, variantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{LocationCode: location, VariantID: variantID}, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
// Así el primer movimiento de un par también queda serializado.
func (r *StockRepo) GetForUpdate(ctx context.Context, location string, variantID int64) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (location_code, variant_id, qty, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (location_code, variant_id) DO NOTHING`, location, variantID)
	if err != nil {
		return nil, mapError("ensure stock balance", "stock_balance", location, err)
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balances
		WHERE location_code = $1 AND variant_id = $2
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, location, variantID))
	if err != nil {
		return nil, mapError("get stock balance for update", "stock_balance", location, err)
	}
	return b, nil
}

// Upsert inserta o actualiza la cantidad (por ubicación y variante).
func (r *StockRepo) Upsert(ctx context.Context, b *entity.StockBalance) error {
	at := b.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (location_code, variant_id, qty, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (location_code, variant_id)
		DO UPDATE SET qty = EXCLUDED.qty, updated_at = EXCLUDED.updated_at`,
		b.LocationCode, b.VariantID, b.Qty, at)
	if err != nil {
		return mapError("upsert stock balance", "stock_balance", b.LocationCode, err)
	}
	return nil
}

// ListByVariant lista los saldos de una variante en todas las ubicaciones.
func (r *StockRepo) ListByVariant(ctx context.Context, variantID int64) ([]*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE variant_id = $1 ORDER BY location_code`
	return r.list(ctx, query, variantID)
}

// ListByLocation lista los saldos de una ubicación con paginación.
func (r *StockRepo) ListByLocation(ctx context.Context, location string, limit, offset int) ([]*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances
		WHERE location_code = $1 ORDER BY variant_id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, location, limitArg(limit), offset)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	if err := row.Scan(&b.LocationCode, &b.VariantID, &b.Qty, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}
