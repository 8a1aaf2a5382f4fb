// migrate aplica el esquema embebido de PostgreSQL y, opcionalmente, carga datos maestros
// (ubicaciones y variantes) desde un archivo JSON.
//
// Uso: go run ./cmd/migrate [-seed ruta/seed.json]
//
// Formato del archivo:
//
//	{"locations": [{"code": "HQ", "name": "Central", "kind": "HQ"}],
//	 "variants":  [{"id": 10, "product_code": "POLO-1", "color": "Blanco", "size": "L"}]}
package main

import (
	"context"
	"flag"
	"time"

	"github.com/jhoicas/inventario-moda/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-moda/pkg/config"
	"github.com/jhoicas/inventario-moda/pkg/logger"
)

func main() {
	seedPath := flag.String("seed", "", "archivo JSON con ubicaciones y variantes a cargar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración")
	}
	log.Info().Msg("esquema aplicado")

	if *seedPath == "" {
		return
	}
	seed, err := readSeed(*seedPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *seedPath).Msg("leer semilla")
	}
	if err := applySeed(ctx, pool, seed); err != nil {
		log.Fatal().Err(err).Msg("cargar semilla")
	}
	log.Info().
		Int("locations", len(seed.Locations)).
		Int("variants", len(seed.Variants)).
		Msg("datos maestros cargados")
}
