package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-moda/internal/application/adjustment"
	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/stockrequest"
	"github.com/jhoicas/inventario-moda/internal/application/transfer"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

// HealthFunc reporta el estado de un componente (almacén, broker).
type HealthFunc func(ctx context.Context) map[string]string

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *ledger.Service
	Adjustments   *adjustment.Service
	Transfers     *transfer.Service
	StockRequests *stockrequest.Service
	Health        map[string]HealthFunc
	JWTSecret     string
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.Health))

	// Todas las rutas de /api requieren Bearer Token: el usuario del token es el actor auditado.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.Ledger, deps.Adjustments, deps.Logger)
	stock := api.Group("/stock")
	stock.Get("/balances", stockHandler.ListBalances)
	stock.Get("/balances/:location/:variant", stockHandler.GetBalance)
	stock.Get("/ledger", stockHandler.ListLedger)
	stock.Get("/ledger/verify/:location/:variant", stockHandler.Verify)
	stock.Post("/adjustments", stockHandler.Adjust)
	stock.Post("/sales", stockHandler.Sale)
	stock.Post("/returns", stockHandler.Return)
	stock.Post("/restocks", stockHandler.Restock)

	transferHandler := NewTransferHandler(deps.Transfers, deps.Logger)
	transfers := api.Group("/transfers")
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/no/:no", transferHandler.GetByNo)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Put("/:id/items", transferHandler.UpdateItems)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/shipment", transferHandler.Shipment)
	transfers.Post("/:id/receipt", transferHandler.Receipt)
	transfers.Post("/:id/cancel", transferHandler.Cancel)

	requestHandler := NewStockRequestHandler(deps.StockRequests, deps.Logger)
	requests := api.Group("/stock-requests")
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Post("/:id/process", requestHandler.Process)
	requests.Post("/:id/resolve", requestHandler.Resolve)
}

func healthHandler(checks map[string]HealthFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := fiber.Map{"status": "ok"}
		for name, check := range checks {
			st := check(c.Context())
			out[name] = st
			if st["status"] != "up" {
				out["status"] = "degraded"
			}
		}
		return c.JSON(out)
	}
}
