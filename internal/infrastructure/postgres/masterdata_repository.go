package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.VariantRepository  = (*VariantRepo)(nil)
)

// LocationRepo lee el maestro de ubicaciones. Upsert existe solo para la semilla de cmd/migrate.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByCode obtiene una ubicación por código, o nil si no existe.
func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `
		SELECT code, name, kind, active, created_at FROM locations WHERE code = $1`, code,
	).Scan(&l.Code, &l.Name, &l.Kind, &l.Active, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// List lista todas las ubicaciones por código.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT code, name, kind, active, created_at FROM locations ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.Code, &l.Name, &l.Kind, &l.Active, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Upsert inserta o actualiza una ubicación.
func (r *LocationRepo) Upsert(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (code, name, kind, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind, active = EXCLUDED.active`,
		l.Code, l.Name, l.Kind, l.Active)
	if err != nil {
		return mapError("upsert location", "location", l.Code, err)
	}
	return nil
}

// VariantRepo lee el maestro de variantes.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador.
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// GetByID obtiene una variante, o nil si no existe.
func (r *VariantRepo) GetByID(ctx context.Context, id int64) (*entity.Variant, error) {
	var v entity.Variant
	err := r.q.QueryRow(ctx, `
		SELECT id, product_code, color, size, barcode, created_at FROM variants WHERE id = $1`, id,
	).Scan(&v.ID, &v.ProductCode, &v.Color, &v.Size, &v.Barcode, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return &v, nil
}

// Upsert inserta o actualiza una variante.
func (r *VariantRepo) Upsert(ctx context.Context, v *entity.Variant) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO variants (id, product_code, color, size, barcode)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET product_code = EXCLUDED.product_code, color = EXCLUDED.color,
			size = EXCLUDED.size, barcode = EXCLUDED.barcode`,
		v.ID, v.ProductCode, v.Color, v.Size, v.Barcode)
	if err != nil {
		return mapError("upsert variant", "variant", fmt.Sprint(v.ID), err)
	}
	return nil
}
