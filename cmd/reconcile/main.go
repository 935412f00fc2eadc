// reconcile recalcula el stock desde el libro de movimientos y lo compara con el guardado.
// Imprime el resultado en JSON y termina con código 1 si encuentra diferencias.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/storage"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de la conciliación")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}, os.Stderr).Named("reconcile")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	os.Exit(run(ctx, cfg, log))
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("conexión a la base de datos")
		return 1
	}
	defer backend.Close()

	res, err := inventory.NewReconcileUseCase(backend.Snapshots).Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("conciliación")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Error().Err(err).Msg("escribir resultado")
		return 1
	}
	if !res.Consistent {
		log.Warn().Int("drifts", len(res.Drifts)).Msg("stock inconsistente con el libro de movimientos")
		return 1
	}
	log.Info().Int("pairs", res.CheckedPairs).Int("moves", res.MovesRead).Msg("stock consistente")
	return 0
}
