package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain"
	"github.com/almacenix/ledger-api/internal/domain/entity"
)

// LevelCursor marca la posición de un scan paginado por cursor sobre niveles de
// stock. El orden estable de los scans es (item_id, location_id) ascendente.
type LevelCursor struct {
	ItemID     string
	LocationID string
}

// IsZero indica inicio de scan (sin cursor).
func (c LevelCursor) IsZero() bool { return c.ItemID == "" && c.LocationID == "" }

// Encode serializa el cursor para la capa de transporte.
func (c LevelCursor) Encode() string {
	if c.IsZero() {
		return ""
	}
	return c.ItemID + "|" + c.LocationID
}

// ParseLevelCursor decodifica un cursor recibido; vacío = inicio de scan.
func ParseLevelCursor(s string) (LevelCursor, error) {
	if s == "" {
		return LevelCursor{}, nil
	}
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return LevelCursor{}, fmt.Errorf("%w: cursor inválido %q", domain.ErrValidation, s)
	}
	return LevelCursor{ItemID: parts[0], LocationID: parts[1]}, nil
}

// StockLevelRepository define el puerto sobre la proyección de stock por
// (item, ubicación). Todas las operaciones reciben el tenant explícito y el
// adaptador filtra cada sentencia por tenant_id; ninguna otra ruta de código
// puede escribir quantity_on_hand.
type StockLevelRepository interface {
	// Get devuelve el nivel o nil si el par no tiene fila todavía.
	Get(ctx context.Context, tenantID, itemID, locationID string) (*entity.StockLevel, error)
	Exists(ctx context.Context, tenantID, itemID, locationID string) (bool, error)

	// Init crea la fila en cero si no existe; no-op si ya existe (idempotente,
	// nunca resetea una fila con movimientos aplicados).
	Init(ctx context.Context, tenantID, itemID, locationID string) error

	// ApplyDelta incrementa atómicamente la cantidad del par (creando la fila si
	// falta) y devuelve la cantidad resultante. El incremento se expresa en una
	// sola sentencia para que el bloqueo de fila del store serialice escritores
	// concurrentes; no es un read-then-write del caller.
	ApplyDelta(ctx context.Context, tenantID, itemID, locationID string, delta decimal.Decimal, movementID string) (decimal.Decimal, error)

	ListByItem(ctx context.Context, tenantID, itemID string) ([]*entity.StockLevel, error)
	ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.StockLevel, error)
	SumByItem(ctx context.Context, tenantID, itemID string) (decimal.Decimal, error)

	// Scans por cursor para consumidores de reportes; orden (item_id, location_id).
	ScanBelowThreshold(ctx context.Context, tenantID string, threshold decimal.Decimal, limit int, cursor LevelCursor) ([]*entity.StockLevel, LevelCursor, error)
	ScanByLocation(ctx context.Context, tenantID, locationID string, limit int, cursor LevelCursor) ([]*entity.StockLevel, LevelCursor, error)
	ScanAll(ctx context.Context, tenantID string, limit int, cursor LevelCursor) ([]*entity.StockLevel, LevelCursor, error)
}
