package repository

import (
	"context"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// VariantRepository consulta el maestro de variantes (solo lectura en este núcleo).
type VariantRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Variant, error)
}
