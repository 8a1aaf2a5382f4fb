package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del libro append-only sobre PostgreSQL. Solo INSERT y SELECT;
// un trigger rechaza UPDATE/DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `tx_id, location_code, variant_id, tx_type, qty_change, qty_after, memo, actor, created_at`

// Create persiste un asiento.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ledger_entries (`+ledgerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.TxID, e.LocationCode, e.VariantID, string(e.TxType), e.QtyChange, e.QtyAfter, e.Memo, e.Actor, e.CreatedAt,
	)
	if err != nil {
		return mapError("create ledger entry", "ledger_entry", e.TxID, err)
	}
	return nil
}

// List devuelve asientos filtrados, del más reciente al más antiguo.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.LocationCode != "" {
		add("location_code = $%d", f.LocationCode)
	}
	if f.VariantID != nil {
		add("variant_id = $%d", *f.VariantID)
	}
	if f.TxType != nil {
		add("tx_type = $%d", string(*f.TxType))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitArg(f.Limit), f.Offset)
	query += fmt.Sprintf(" ORDER BY seq DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

// ListForReplay devuelve todos los asientos de un par en orden de inserción.
func (r *LedgerRepo) ListForReplay(ctx context.Context, location string, variantID int64) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE location_code = $1 AND variant_id = $2 ORDER BY seq`
	return r.list(ctx, query, location, variantID)
}

func (r *LedgerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var (
		e      entity.LedgerEntry
		txType string
	)
	if err := row.Scan(&e.TxID, &e.LocationCode, &e.VariantID, &txType, &e.QtyChange, &e.QtyAfter, &e.Memo, &e.Actor, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.TxType = entity.TxType(txType)
	return &e, nil
}
