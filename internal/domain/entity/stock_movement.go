package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain"
)

// StockMovement es una entrada inmutable del libro de inventario: un cambio de
// cantidad con signo sobre un par (item, ubicación), etiquetado con su causa.
// Se construye una sola vez vía NewStockMovement; nunca se actualiza ni borra.
type StockMovement struct {
	ID            string
	TenantID      string
	ItemID        string
	LocationID    string
	MovementType  MovementType
	Quantity      decimal.Decimal // con signo según la tabla de MovementType
	ReferenceType ReferenceType
	ReferenceID   string // documento origen (orden, traslado, nota); opcional
	Reason        string // texto libre; opcional
	CreatedAt     time.Time
	CreatedBy     string // UserID del actor; opcional
}

// NewStockMovement es el único constructor. Valida la regla de signo del tipo
// y los campos de identidad, asigna ID y timestamp. Violación -> ErrValidation.
func NewStockMovement(
	tenantID, itemID, locationID string,
	movementType MovementType,
	quantity decimal.Decimal,
	referenceType ReferenceType,
	referenceID, reason, createdBy string,
) (*StockMovement, error) {
	if tenantID == "" || itemID == "" || locationID == "" {
		return nil, fmt.Errorf("%w: tenant, item y ubicación son obligatorios", domain.ErrValidation)
	}
	if _, err := ParseMovementType(string(movementType)); err != nil {
		return nil, err
	}
	if _, err := ParseReferenceType(string(referenceType)); err != nil {
		return nil, err
	}
	if err := movementType.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &StockMovement{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		ItemID:        itemID,
		LocationID:    locationID,
		MovementType:  movementType,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     createdBy,
	}, nil
}
