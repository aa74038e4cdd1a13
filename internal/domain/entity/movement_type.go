package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain"
)

// MovementType clasifica un movimiento del libro de inventario.
// Conjunto cerrado; el token en minúsculas es el formato de almacenamiento y de wire.
type MovementType string

const (
	MovementTypeInbound    MovementType = "inbound"    // entrada (recepción de compra)
	MovementTypeOutbound   MovementType = "outbound"   // salida (despacho de venta)
	MovementTypeAdjustment MovementType = "adjustment" // ajuste manual, delta con signo
	MovementTypeTransfer   MovementType = "transfer"   // traslado entre ubicaciones
	MovementTypeInitial    MovementType = "initial"    // carga inicial de stock
)

// ReferenceType identifica el documento de negocio que originó un movimiento.
// Puramente descriptivo; no afecta las reglas de signo.
type ReferenceType string

const (
	ReferenceTypePurchaseOrder ReferenceType = "purchase_order"
	ReferenceTypeSalesOrder    ReferenceType = "sales_order"
	ReferenceTypeAdjustment    ReferenceType = "adjustment"
	ReferenceTypeTransfer      ReferenceType = "transfer"
	ReferenceTypeReturn        ReferenceType = "return"
	ReferenceTypeInitial       ReferenceType = "initial"
)

// ParseMovementType convierte el token almacenado/recibido en un MovementType.
// Token desconocido -> domain.ErrValidation (el codec debe hacer round-trip exacto).
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementTypeInbound, MovementTypeOutbound, MovementTypeAdjustment,
		MovementTypeTransfer, MovementTypeInitial:
		return MovementType(s), nil
	}
	return "", fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrValidation, s)
}

// ParseReferenceType convierte el token almacenado/recibido en un ReferenceType.
func ParseReferenceType(s string) (ReferenceType, error) {
	switch ReferenceType(s) {
	case ReferenceTypePurchaseOrder, ReferenceTypeSalesOrder, ReferenceTypeAdjustment,
		ReferenceTypeTransfer, ReferenceTypeReturn, ReferenceTypeInitial:
		return ReferenceType(s), nil
	}
	return "", fmt.Errorf("%w: tipo de referencia desconocido %q", domain.ErrValidation, s)
}

// String devuelve el token canónico.
func (t MovementType) String() string { return string(t) }

// String devuelve el token canónico.
func (t ReferenceType) String() string { return string(t) }

// ValidateQuantity aplica la tabla de signos por tipo de movimiento:
//   - inbound, initial: cantidad >= 0
//   - outbound, transfer: cantidad <= 0
//   - adjustment: cualquier signo (delta con signo)
func (t MovementType) ValidateQuantity(quantity decimal.Decimal) error {
	switch t {
	case MovementTypeInbound, MovementTypeInitial:
		if quantity.IsNegative() {
			return fmt.Errorf("%w: el tipo %s requiere cantidad >= 0, recibió %s",
				domain.ErrValidation, t, quantity)
		}
	case MovementTypeOutbound, MovementTypeTransfer:
		if quantity.IsPositive() {
			return fmt.Errorf("%w: el tipo %s requiere cantidad <= 0, recibió %s",
				domain.ErrValidation, t, quantity)
		}
	case MovementTypeAdjustment:
		// delta con signo: puede aumentar o disminuir stock
	default:
		return fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrValidation, t)
	}
	return nil
}

// AllowsNegativeStock indica si el tipo está exento de la invariante de stock
// no negativo al aplicarse sobre la proyección (solo adjustment lo está).
func (t MovementType) AllowsNegativeStock() bool {
	return t == MovementTypeAdjustment
}
