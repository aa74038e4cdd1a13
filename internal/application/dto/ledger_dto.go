package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/ledger/movements.
type RecordMovementRequest struct {
	ItemID        string          `json:"item_id"`
	LocationID    string          `json:"location_id"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// InitializeLevelRequest body para POST /api/ledger/levels/initialize.
type InitializeLevelRequest struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
}

// StockMovementDTO representación de una entrada del libro en respuestas.
type StockMovementDTO struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	LocationID    string          `json:"location_id"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// StockLevelDTO representación de la proyección en respuestas.
type StockLevelDTO struct {
	ItemID         string          `json:"item_id"`
	LocationID     string          `json:"location_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	LastMovementID string          `json:"last_movement_id,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LowStockRowDTO fila del reporte de stock bajo.
type LowStockRowDTO struct {
	ItemID         string          `json:"item_id"`
	LocationID     string          `json:"location_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	Threshold      decimal.Decimal `json:"threshold"`
	Deficit        decimal.Decimal `json:"deficit"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FromMovement mapea la entidad a su DTO de respuesta.
func FromMovement(m *entity.StockMovement) StockMovementDTO {
	return StockMovementDTO{
		ID:            m.ID,
		ItemID:        m.ItemID,
		LocationID:    m.LocationID,
		MovementType:  m.MovementType.String(),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType.String(),
		ReferenceID:   m.ReferenceID,
		Reason:        m.Reason,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

// FromMovements mapea un listado de entidades a DTOs.
func FromMovements(list []*entity.StockMovement) []StockMovementDTO {
	out := make([]StockMovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// FromLevel mapea la proyección a su DTO de respuesta.
func FromLevel(l *entity.StockLevel) StockLevelDTO {
	return StockLevelDTO{
		ItemID:         l.ItemID,
		LocationID:     l.LocationID,
		QuantityOnHand: l.QuantityOnHand,
		LastMovementID: l.LastMovementID,
		UpdatedAt:      l.UpdatedAt,
	}
}

// FromLevels mapea un listado de proyecciones a DTOs.
func FromLevels(list []*entity.StockLevel) []StockLevelDTO {
	out := make([]StockLevelDTO, 0, len(list))
	for _, l := range list {
		out = append(out, FromLevel(l))
	}
	return out
}
