package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/application/dto"
	"github.com/almacenix/ledger-api/internal/application/report"
)

// ReportHandler expone los reportes de solo lectura sobre la proyección.
type ReportHandler struct {
	lowStock *report.LowStockUseCase
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(lowStock *report.LowStockUseCase) *ReportHandler {
	return &ReportHandler{lowStock: lowStock}
}

// LowStockReport godoc
// @Summary      Reporte de stock bajo
// @Description  Pares (item, ubicación) con cantidad disponible por debajo del umbral.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  string  true  "Umbral de cantidad"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStockReport(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	threshold, err := decimal.NewFromString(c.Query("threshold", ""))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold inválido"})
	}
	rows, err := h.lowStock.GenerateLowStockReport(c.Context(), tenantID, threshold)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "rows": rows})
}
