package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/almacenix/ledger-api/internal/application/ledger"
	"github.com/almacenix/ledger-api/internal/application/report"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC   *ledger.UseCase
	LowStockUC *report.LowStockUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todo el libro es protegido: el
// middleware establece el tenant antes de cualquier handler.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.LedgerUC)
	ledgerGroup.Post("/movements", ledgerHandler.RecordMovement)
	ledgerGroup.Post("/levels/initialize", ledgerHandler.InitializeLevel)
	ledgerGroup.Get("/levels", ledgerHandler.ScanLevels)
	ledgerGroup.Get("/levels/low", ledgerHandler.ScanLevelsBelowThreshold)
	ledgerGroup.Get("/items/:item_id/levels", ledgerHandler.GetItemLevels)
	ledgerGroup.Get("/items/:item_id/total", ledgerHandler.GetItemTotal)
	ledgerGroup.Get("/items/:item_id/movements", ledgerHandler.GetItemMovements)
	ledgerGroup.Get("/items/:item_id/locations/:location_id/level", ledgerHandler.GetLevel)
	ledgerGroup.Get("/items/:item_id/locations/:location_id/movements", ledgerHandler.GetPairMovements)
	ledgerGroup.Get("/locations/:location_id/levels", ledgerHandler.GetLocationLevels)
	ledgerGroup.Get("/locations/:location_id/movements", ledgerHandler.GetLocationMovements)

	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.LowStockUC)
	reports.Get("/low-stock", reportHandler.LowStockReport)
}
