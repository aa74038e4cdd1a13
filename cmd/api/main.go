package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/almacenix/ledger-api/internal/application/ledger"
	"github.com/almacenix/ledger-api/internal/application/report"
	infrakafka "github.com/almacenix/ledger-api/internal/infrastructure/kafka"
	"github.com/almacenix/ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/almacenix/ledger-api/internal/interfaces/http"
	"github.com/almacenix/ledger-api/pkg/config"
	"github.com/almacenix/ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	movementRepo := postgres.NewStockMovementRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Publisher Kafka opcional: sin brokers configurados el motor registra
	// movimientos sin publicar eventos.
	var publisher ledger.EventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher := infrakafka.NewMovementPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("publicación de movimientos habilitada")
	}

	ledgerUC := ledger.NewUseCase(txRunner, movementRepo, levelRepo, publisher, log)
	lowStockUC := report.NewLowStockUseCase(levelRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en http://localhost:<port>/docs; sin spec en disco el servidor
	// arranca igual, solo sin documentación.
	if swaggerMw := httpRouter.SwaggerMiddleware(cfg.HTTP.SwaggerFile, cfg.App.Name); swaggerMw != nil {
		app.Use(swaggerMw)
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("spec de swagger no encontrada, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:   ledgerUC,
		LowStockUC: lowStockUC,
		JWTSecret:  cfg.JWT.Secret,
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
