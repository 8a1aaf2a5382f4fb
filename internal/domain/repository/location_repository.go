package repository

import (
	"context"

	"github.com/jhoicas/inventario-moda/internal/domain/entity"
)

// LocationRepository consulta el maestro de ubicaciones (solo lectura en este núcleo).
type LocationRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}
