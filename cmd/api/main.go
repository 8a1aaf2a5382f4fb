package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-moda/internal/application/adjustment"
	"github.com/jhoicas/inventario-moda/internal/application/ledger"
	"github.com/jhoicas/inventario-moda/internal/application/ports"
	"github.com/jhoicas/inventario-moda/internal/application/stockrequest"
	"github.com/jhoicas/inventario-moda/internal/application/transfer"
	"github.com/jhoicas/inventario-moda/internal/domain/repository"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/messaging"
	"github.com/jhoicas/inventario-moda/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-moda/internal/interfaces/http"
	"github.com/jhoicas/inventario-moda/pkg/config"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.App.Store).
		Str("broker", cfg.Messaging.Broker).
		Msg("iniciando aplicación")

	ctx := context.Background()
	health := map[string]httpRouter.HealthFunc{}

	// Almacén: PostgreSQL en producción; memoria para desarrollo local sin base.
	var (
		txRunner  ports.TxRunner
		repos     ports.Tx
		locations repository.LocationRepository
		variants  repository.VariantRepository
	)
	switch cfg.App.Store {
	case config.StoreMemory:
		store := memory.New(memory.WithOpenMasterData())
		txRunner, repos = store, store.Repositories()
		locations, variants = store.Locations(), store.Variants()
		health["store"] = store.Health
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		runner := postgres.NewTxRunner(pool)
		txRunner, repos = runner, runner.Repositories()
		locations, variants = postgres.NewLocationRepository(pool), postgres.NewVariantRepository(pool)
		health["store"] = postgres.Health(pool)
	}

	publisher, err := messaging.New(cfg.Messaging, cfg.App.Name, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al broker de mensajería")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del broker")
		}
	}()
	health["broker"] = publisher.Health

	ledgerOpts := []ledger.Option{ledger.WithEvents(publisher), ledger.WithLogger(log)}
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("configuración de Redis")
		}
		balanceCache := cache.NewBalanceCache(client, cfg.App.Name, cfg.Redis.BalanceTTL)
		defer balanceCache.Close()
		ledgerOpts = append(ledgerOpts, ledger.WithCache(balanceCache))
		health["cache"] = balanceCache.Health
	}

	ledgerSvc := ledger.NewService(txRunner, repos.Stocks, repos.Ledger, ledgerOpts...)
	adjustmentSvc := adjustment.NewService(txRunner, ledgerSvc, locations, variants, cfg.App.Lang)
	transferSvc := transfer.NewService(txRunner, ledgerSvc, repos.Transfers, locations, variants,
		transfer.WithEvents(publisher), transfer.WithLogger(log))
	stockRequestSvc := stockrequest.NewService(txRunner, ledgerSvc, transferSvc, repos.Notifications, locations, variants,
		stockrequest.WithEvents(publisher), stockrequest.WithLogger(log))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodOptions}, ","),
	}))
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en http://localhost:<port>/docs cuando existe el archivo.
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Inventario Moda API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledgerSvc,
		Adjustments:   adjustmentSvc,
		Transfers:     transferSvc,
		StockRequests: stockRequestSvc,
		Health:        health,
		JWTSecret:     cfg.JWT.Secret,
		Logger:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
