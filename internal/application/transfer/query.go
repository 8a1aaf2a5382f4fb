package transfer

import (
	"context"
	"strconv"

	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
)

// Get devuelve la solicitud con sus ítems y cantidades.
func (s *Service) Get(ctx context.Context, id string) (*entity.TransferRequest, error) {
	r, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound(entityName, id)
	}
	return r, nil
}

// GetByNo busca por número legible (p. ej. TRF20260301-0007).
func (s *Service) GetByNo(ctx context.Context, requestNo string) (*entity.TransferRequest, error) {
	r, err := s.transfers.GetByRequestNo(ctx, requestNo)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound(entityName, requestNo)
	}
	return r, nil
}

// List devuelve solicitudes, más recientes primero.
func (s *Service) List(ctx context.Context, f repository.TransferFilter) ([]*entity.TransferRequest, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, domain.Validation("status", "estado desconocido: "+string(*f.Status))
	}
	if f.Type != nil && !f.Type.Valid() {
		return nil, domain.Validation("request_type", "tipo desconocido: "+string(*f.Type))
	}
	f.Limit, f.Offset = ledger.ClampPage(f.Limit, f.Offset)
	return s.transfers.List(ctx, f)
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
