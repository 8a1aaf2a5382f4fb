package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-moda/internal/application/dto"
	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/stockrequest"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// StockRequestHandler maneja las alertas de pedido de stock entre ubicaciones (protegido).
type StockRequestHandler struct {
	svc *stockrequest.Service
	log *logger.Logger
}

// NewStockRequestHandler construye el handler.
func NewStockRequestHandler(svc *stockrequest.Service, log *logger.Logger) *StockRequestHandler {
	return &StockRequestHandler{svc: svc, log: logger.OrNop(log)}
}

// Create godoc
// @Summary      Emitir alerta de stock
// @Description  Selecciona todas las ubicaciones empatadas en el máximo. Si ya hay una alerta
// @Description  pendiente para el par se devuelve esa con coalesced=true.
// @Tags         stock-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequestRequest  true  "variant_id, from_qty, from_location (opcional)"
// @Success      201   {object}  dto.StockRequestResponse
// @Success      200   {object}  dto.StockRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-requests [post]
func (h *StockRequestHandler) Create(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	var in dto.CreateStockRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	from := in.FromLocation
	if from == "" {
		from = GetLocation(c)
	}
	res, err := h.svc.CreateNotification(c.Context(), stockrequest.CreateInput{
		FromLocation: from,
		VariantID:    in.VariantID,
		FromQty:      in.FromQty,
		Actor:        actor,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.StockRequestFrom(res.Notification)
	out.Coalesced = res.Coalesced
	status := fiber.StatusCreated
	if res.Coalesced {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// List godoc
// @Summary      Listar alertas de stock
// @Tags         stock-requests
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "PENDING|RESOLVED"
// @Param        location  query  string  false  "Solicitante o destinataria"
// @Success      200  {object}  dto.StockRequestListResponse
// @Router       /api/stock-requests [get]
func (h *StockRequestHandler) List(c *fiber.Ctx) error {
	var q dto.StockRequestListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&q); err != nil {
		return writeError(c, h.log, err)
	}
	f := repository.NotificationFilter{LocationCode: q.Location}
	if q.Status != "" {
		st := entity.NotificationStatus(q.Status)
		f.Status = &st
	}
	f.Limit, f.Offset = ledger.ClampPage(q.Limit, q.Offset)
	list, err := h.svc.List(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockRequestListResponse{
		Items: dto.StockRequestsFrom(list),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(list)},
	})
}

// GetByID godoc
// @Summary      Detalle de una alerta
// @Tags         stock-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la alerta"
// @Success      200  {object}  dto.StockRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-requests/{id} [get]
func (h *StockRequestHandler) GetByID(c *fiber.Ctx) error {
	n, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockRequestFrom(n))
}

// Process godoc
// @Summary      Atender alerta creando un traslado
// @Tags         stock-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la alerta"
// @Param        body  body  dto.ProcessStockRequestRequest  true  "qty, resolver_location (opcional)"
// @Success      201   {object}  dto.ProcessStockRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-requests/{id}/process [post]
func (h *StockRequestHandler) Process(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	var in dto.ProcessStockRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	resolver := in.ResolverLocation
	if resolver == "" {
		resolver = GetLocation(c)
	}
	res, err := h.svc.Process(c.Context(), c.Params("id"), stockrequest.ProcessInput{
		ResolverLocation: resolver,
		Qty:              in.Qty,
		Actor:            actor,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProcessStockRequestResponse{
		Notification: dto.StockRequestFrom(res.Notification),
		Transfer:     dto.TransferFrom(res.Transfer, nil),
	})
}

// Resolve godoc
// @Summary      Descartar alerta sin traslado
// @Tags         stock-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la alerta"
// @Success      200  {object}  dto.StockRequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-requests/{id}/resolve [post]
func (h *StockRequestHandler) Resolve(c *fiber.Ctx) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	n, err := h.svc.Resolve(c.Context(), c.Params("id"), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockRequestFrom(n))
}
