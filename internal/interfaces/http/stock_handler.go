package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-moda/internal/application/adjustment"
	"github.com/jhoicas/inventario-moda/internal/application/dto"
	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/domain"
	"github.com/jhoicas/inventario-moda/internal/domain/entity"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// StockHandler maneja saldos, historial del libro y ajustes directos (protegido).
type StockHandler struct {
	ledger      *ledger.Service
	adjustments *adjustment.Service
	log         *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(l *ledger.Service, adjustments *adjustment.Service, log *logger.Logger) *StockHandler {
	return &StockHandler{ledger: l, adjustments: adjustments, log: logger.OrNop(log)}
}

// GetBalance godoc
// @Summary      Saldo de una variante en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "Código de ubicación"
// @Param        variant   path  int     true  "ID de variante"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/balances/{location}/{variant} [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	location, variantID, err := pairParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	qty, err := h.ledger.GetBalance(c.Context(), location, variantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.BalanceResponse{LocationCode: location, VariantID: variantID, Qty: qty})
}

// ListBalances godoc
// @Summary      Saldos por ubicación o por variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location  query  string  false  "Código de ubicación (paginado)"
// @Param        variant   query  int     false  "ID de variante (todas las ubicaciones)"
// @Param        limit     query  int     false  "Límite"  default(50)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.BalanceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/balances [get]
func (h *StockHandler) ListBalances(c *fiber.Ctx) error {
	if v := c.Query("variant"); v != "" {
		variantID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeError(c, h.log, domain.Validation("variant", "debe ser numérico"))
		}
		list, err := h.ledger.ListBalancesByVariant(c.Context(), variantID)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(dto.BalanceListResponse{Items: dto.BalancesFrom(list)})
	}
	location := c.Query("location")
	if location == "" {
		return writeError(c, h.log, domain.Validation("location", "indique location o variant"))
	}
	limit, offset := ledger.ClampPage(c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	list, err := h.ledger.ListBalancesByLocation(c.Context(), location, limit, offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.BalanceListResponse{
		Items: dto.BalancesFrom(list),
		Page:  &dto.PageResponse{Limit: limit, Offset: offset, Count: len(list)},
	})
}

// ListLedger godoc
// @Summary      Historial de transacciones
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location  query  string  false  "Código de ubicación"
// @Param        variant   query  int     false  "ID de variante"
// @Param        tx_type   query  string  false  "ADJUST|RESTOCK|SALE|RETURN|SHIPMENT|TRANSFER"
// @Param        from      query  string  false  "Desde (RFC 3339)"
// @Param        to        query  string  false  "Hasta (RFC 3339)"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/ledger [get]
func (h *StockHandler) ListLedger(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, h.log, domain.Validation("query", "parámetros inválidos"))
	}
	if err := validateStruct(&q); err != nil {
		return writeError(c, h.log, err)
	}
	f := repository.LedgerFilter{LocationCode: q.Location}
	if q.VariantID > 0 {
		v := q.VariantID
		f.VariantID = &v
	}
	if q.TxType != "" {
		t := entity.TxType(q.TxType)
		f.TxType = &t
	}
	if q.From != "" {
		from, _ := time.Parse(time.RFC3339, q.From)
		f.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(time.RFC3339, q.To)
		f.To = &to
	}
	f.Limit, f.Offset = ledger.ClampPage(q.Limit, q.Offset)
	list, err := h.ledger.ListEntries(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LedgerListResponse{
		Items: dto.LedgerEntriesFrom(list),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(list)},
	})
}

// Verify godoc
// @Summary      Reconciliar libro contra saldo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location  path  string  true  "Código de ubicación"
// @Param        variant   path  int     true  "ID de variante"
// @Success      200  {object}  dto.VerifyResponse
// @Router       /api/stock/ledger/verify/{location}/{variant} [get]
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	location, variantID, err := pairParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.ledger.Verify(c.Context(), location, variantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rec)
}

// Adjust godoc
// @Summary      Ajuste por conteo físico (qty con signo)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "location_code, variant_id, qty, memo"
// @Success      201   {object}  dto.DeltaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	return h.apply(c, h.adjustments.ManualAdjust)
}

// Sale godoc
// @Summary      Registrar venta
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "qty positiva"
// @Success      201   {object}  dto.DeltaResponse
// @Router       /api/stock/sales [post]
func (h *StockHandler) Sale(c *fiber.Ctx) error {
	return h.apply(c, h.adjustments.RecordSale)
}

// Return godoc
// @Summary      Registrar devolución de cliente
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "qty positiva"
// @Success      201   {object}  dto.DeltaResponse
// @Router       /api/stock/returns [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	return h.apply(c, h.adjustments.RecordReturn)
}

// Restock godoc
// @Summary      Registrar reposición
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "qty positiva"
// @Success      201   {object}  dto.DeltaResponse
// @Router       /api/stock/restocks [post]
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	return h.apply(c, h.adjustments.RecordRestock)
}

type adjustFunc func(ctx context.Context, in adjustment.Input) (*entity.DeltaResult, error)

func (h *StockHandler) apply(c *fiber.Ctx, op adjustFunc) error {
	actor := GetUserID(c)
	if actor == "" {
		return unauthorized(c)
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(&in); err != nil {
		return writeError(c, h.log, err)
	}
	res, err := op(c.Context(), adjustment.Input{
		LocationCode: in.LocationCode,
		VariantID:    in.VariantID,
		Qty:          in.Qty,
		Memo:         in.Memo,
		Actor:        actor,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DeltaFrom(res))
}

func pairParams(c *fiber.Ctx) (string, int64, error) {
	location := c.Params("location")
	variantID, err := strconv.ParseInt(c.Params("variant"), 10, 64)
	if err != nil || variantID <= 0 {
		return "", 0, domain.Validation("variant", "debe ser un entero positivo")
	}
	if location == "" {
		return "", 0, domain.Validation("location", "requerido")
	}
	return location, variantID, nil
}
