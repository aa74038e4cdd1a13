package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain"
)

// StockLevel es la proyección mutable del libro: la cantidad disponible actual
// de un par (item, ubicación). A lo sumo una fila por par y tenant; se crea en
// el primer movimiento y solo la muta el motor del libro.
type StockLevel struct {
	TenantID       string
	ItemID         string
	LocationID     string
	QuantityOnHand decimal.Decimal
	LastMovementID string // último movimiento aplicado (el más reciente en commit)
	UpdatedAt      time.Time
}

// NewStockLevel crea la proyección en cero para un par (item, ubicación).
func NewStockLevel(tenantID, itemID, locationID string) *StockLevel {
	return &StockLevel{
		TenantID:       tenantID,
		ItemID:         itemID,
		LocationID:     locationID,
		QuantityOnHand: decimal.Zero,
		UpdatedAt:      time.Now().UTC(),
	}
}

// ApplyMovement aplica un movimiento a la proyección en memoria:
// verifica identidad, suma la cantidad, actualiza LastMovementID/UpdatedAt y
// rechaza el resultado negativo salvo para adjustment. La versión persistida
// de esta transición la hace atómica el motor (upsert-incremento en una tx).
func (l *StockLevel) ApplyMovement(m *StockMovement) error {
	if m.TenantID != l.TenantID || m.ItemID != l.ItemID || m.LocationID != l.LocationID {
		return fmt.Errorf("%w: el movimiento %s no aplica a este nivel de stock (item %s, ubicación %s)",
			domain.ErrValidation, m.ID, l.ItemID, l.LocationID)
	}
	next := l.QuantityOnHand.Add(m.Quantity)
	if next.IsNegative() && !m.MovementType.AllowsNegativeStock() {
		return fmt.Errorf("%w: %s sobre item %s en %s dejaría %s",
			domain.ErrNegativeStock, m.MovementType, m.ItemID, m.LocationID, next)
	}
	l.QuantityOnHand = next
	l.LastMovementID = m.ID
	l.UpdatedAt = time.Now().UTC()
	return nil
}
