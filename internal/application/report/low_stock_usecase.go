package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/application/dto"
	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
)

// LowStockUseCase genera el reporte de stock bajo para un tenant recorriendo el
// scan por cursor de la proyección. Es un consumidor de solo lectura: nunca
// participa en el registro de movimientos.
type LowStockUseCase struct {
	levels repository.StockLevelRepository
}

// NewLowStockUseCase construye el caso de uso de reporte.
func NewLowStockUseCase(levels repository.StockLevelRepository) *LowStockUseCase {
	return &LowStockUseCase{levels: levels}
}

// reportPageSize tamaño de página interno al recorrer el scan.
const reportPageSize = 200

// GenerateLowStockReport devuelve todos los pares (item, ubicación) del tenant
// cuya cantidad disponible está por debajo del umbral, con el déficit por fila.
// Recorre el scan paginado página a página hasta agotarlo.
func (uc *LowStockUseCase) GenerateLowStockReport(
	ctx context.Context,
	tenantID string,
	threshold decimal.Decimal,
) ([]dto.LowStockRowDTO, error) {
	rows := []dto.LowStockRowDTO{}
	cursor := repository.LevelCursor{}
	for {
		levels, next, err := uc.levels.ScanBelowThreshold(ctx, tenantID, threshold, reportPageSize, cursor)
		if err != nil {
			return nil, err
		}
		for _, level := range levels {
			rows = append(rows, toLowStockRow(level, threshold))
		}
		if next.IsZero() || len(levels) == 0 {
			return rows, nil
		}
		cursor = next
	}
}

func toLowStockRow(level *entity.StockLevel, threshold decimal.Decimal) dto.LowStockRowDTO {
	return dto.LowStockRowDTO{
		ItemID:         level.ItemID,
		LocationID:     level.LocationID,
		QuantityOnHand: level.QuantityOnHand,
		Threshold:      threshold,
		Deficit:        threshold.Sub(level.QuantityOnHand),
		UpdatedAt:      level.UpdatedAt,
	}
}
