package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-moda/internal/application/dto"
	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/transfer"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// TransferHandler maneja el flujo de solicitudes de traslado (protegido).
type TransferHandler struct {
	svc *transfer.Service
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(svc *transfer.Service, log *logger.Logger) *TransferHandler {
	return &TransferHandler{svc: svc, log: logger.OrNop(log)}
}

// Create godoc
// @Summary      Crear solicitud de traslado
// @Description  Gerencia (rol manager) crea solicitudes ya aprobadas; las tiendas las crean en DRAFT.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Solicitud"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	req, err := h.svc.Create(c.Context(), transfer.CreateInput{
		Type:         entity.RequestType(in.RequestType),
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		Items:        itemInputs(in.Items),
		Memo:         in.Memo,
		Actor:        actor,
		AutoApprove:  IsManager(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferFrom(req, nil))
}

// List godoc
// @Summary      Listar solicitudes de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "DRAFT|APPROVED|SHIPPED|RECEIVED|CANCELLED"
// @Param        request_type  query  string  false  "SHIPMENT|RETURN|TRANSFER"
// @Param        location      query  string  false  "Origen o destino"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var q dto.TransferListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&q); err != nil {
		return writeError(c, h.log, err)
	}
	f := repository.TransferFilter{LocationCode: q.Location}
	if q.Status != "" {
		st := entity.TransferStatus(q.Status)
		f.Status = &st
	}
	if q.RequestType != "" {
		t := entity.RequestType(q.RequestType)
		f.Type = &t
	}
	f.Limit, f.Offset = ledger.ClampPage(q.Limit, q.Offset)
	list, err := h.svc.List(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferListResponse{
		Items: dto.TransfersFrom(list),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(list)},
	})
}

// GetByID godoc
// @Summary      Detalle de una solicitud
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferFrom(req, nil))
}

// GetByNo godoc
// @Summary      Buscar solicitud por número
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        no   path  string  true  "Número (p. ej. TRF20260301-0007)"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/no/{no} [get]
func (h *TransferHandler) GetByNo(c *fiber.Ctx) error {
	req, err := h.svc.GetByNo(c.Context(), c.Params("no"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferFrom(req, nil))
}

// UpdateItems godoc
// @Summary      Reemplazar ítems (solo DRAFT)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la solicitud"
// @Param        body  body  dto.UpdateTransferItemsRequest  true  "Ítems"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/items [put]
func (h *TransferHandler) UpdateItems(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	var in dto.UpdateTransferItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	req, err := h.svc.UpdateItems(c.Context(), c.Params("id"), itemInputs(in.Items), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferFrom(req, nil))
}

// Approve godoc
// @Summary      Aprobar solicitud (DRAFT -> APPROVED)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	req, err := h.svc.Approve(c.Context(), c.Params("id"), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferFrom(req, nil))
}

// Cancel godoc
// @Summary      Cancelar solicitud (DRAFT | APPROVED -> CANCELLED)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	req, err := h.svc.Cancel(c.Context(), c.Params("id"), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferFrom(req, nil))
}

// Shipment godoc
// @Summary      Registrar despacho (APPROVED -> SHIPPED)
// @Description  Descuenta del origen lo despachado. Los recortes a cero vuelven en warnings.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la solicitud"
// @Param        body  body  dto.TransferQtyRequest  true  "Cantidad por ítem"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/shipment [post]
func (h *TransferHandler) Shipment(c *fiber.Ctx) error {
	return h.move(c, h.svc.RecordShipment)
}

// Receipt godoc
// @Summary      Registrar recepción (SHIPPED -> RECEIVED)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la solicitud"
// @Param        body  body  dto.TransferQtyRequest  true  "Cantidad por ítem"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receipt [post]
func (h *TransferHandler) Receipt(c *fiber.Ctx) error {
	return h.move(c, h.svc.RecordReceipt)
}

type moveFunc func(ctx context.Context, id string, qtys []transfer.QtyInput, actor string) (*transfer.Result, error)

func (h *TransferHandler) move(c *fiber.Ctx, op moveFunc) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	var in dto.TransferQtyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	qtys := make([]transfer.QtyInput, len(in.Items))
	for i, it := range in.Items {
		qtys[i] = transfer.QtyInput{ItemID: it.ItemID, Qty: it.Qty}
	}
	res, err := op(c.Context(), c.Params("id"), qtys, actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferFrom(res.Request, res.Warnings))
}

func itemInputs(items []dto.TransferItemRequest) []transfer.ItemInput {
	out := make([]transfer.ItemInput, len(items))
	for i, it := range items {
		out[i] = transfer.ItemInput{VariantID: it.VariantID, Qty: it.Qty}
	}
	return out
}
