package repository

import (
	"context"

	"github.com/almacenix/ledger-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos (append-only). Todas las operaciones reciben el tenant explícito:
// el adaptador debe filtrar/escribir cada sentencia por tenant_id.
type StockMovementRepository interface {
	// Create inserta una entrada del libro. ID duplicado es error de programación.
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockMovement, error)

	// Listados paginados (limit/offset), ordenados del más reciente al más antiguo.
	ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByLocation(ctx context.Context, tenantID, locationID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByItemLocation(ctx context.Context, tenantID, itemID, locationID string, limit, offset int) ([]*entity.StockMovement, error)
}
