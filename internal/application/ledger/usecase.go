package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain"
	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
	"github.com/almacenix/ledger-api/pkg/logger"
)

// UseCase es el motor del libro de inventario: registra movimientos de forma
// transaccional y expone la superficie de consulta sobre movimientos y niveles.
// Todas las operaciones reciben el tenant explícito; el aislamiento por tenant
// lo garantizan los adaptadores de persistencia en cada sentencia.
type UseCase struct {
	txRunner  TxRunner
	movements repository.StockMovementRepository
	levels    repository.StockLevelRepository
	publisher EventPublisher // opcional; nil desactiva la publicación
	log       *logger.Logger
}

// NewUseCase construye el motor. movements/levels son los repositorios atados
// al pool (lecturas); txRunner provee los atados a transacción (escrituras).
func NewUseCase(
	txRunner TxRunner,
	movements repository.StockMovementRepository,
	levels repository.StockLevelRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		movements: movements,
		levels:    levels,
		publisher: publisher,
		log:       log,
	}
}

// MovementInput entrada para RecordMovement. El tenant viaja como parámetro
// aparte para que ningún caller pueda olvidarlo ni ambientarlo.
type MovementInput struct {
	ItemID        string
	LocationID    string
	MovementType  entity.MovementType
	Quantity      decimal.Decimal
	ReferenceType entity.ReferenceType
	ReferenceID   string
	Reason        string
	CreatedBy     string
}

// RecordMovement aplica un movimiento al libro de forma atómica:
//  1. construye y valida la entrada (regla de signo del tipo);
//  2. en una transacción: inserta la fila del movimiento y hace el
//     upsert-incremento atómico del nivel (el bloqueo de fila del store
//     serializa incrementos concurrentes sobre el mismo par);
//  3. si la cantidad resultante es negativa y el tipo no es adjustment,
//     aborta: se revierte movimiento y nivel juntos (ErrNegativeStock);
//  4. commit, y publicación best-effort del movimiento confirmado.
//
// Errores de validación y ErrNegativeStock son del caller; errores de
// infraestructura se propagan sin reintentos: el contrato del motor es
// atomicidad, no disponibilidad.
func (uc *UseCase) RecordMovement(ctx context.Context, tenantID string, input MovementInput) (*entity.StockMovement, error) {
	movement, err := entity.NewStockMovement(
		tenantID, input.ItemID, input.LocationID,
		input.MovementType, input.Quantity,
		input.ReferenceType, input.ReferenceID, input.Reason, input.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(
		movements repository.StockMovementRepository,
		levels repository.StockLevelRepository,
	) error {
		if err := movements.Create(ctx, movement); err != nil {
			return err
		}
		newQty, err := levels.ApplyDelta(ctx, movement.TenantID, movement.ItemID, movement.LocationID, movement.Quantity, movement.ID)
		if err != nil {
			return err
		}
		// Releer dentro de la misma tx: RETURNING del upsert entrega la cantidad
		// ya incrementada bajo el bloqueo de fila.
		if newQty.IsNegative() && !movement.MovementType.AllowsNegativeStock() {
			return fmt.Errorf("%w: %s de %s sobre item %s en %s dejaría %s",
				domain.ErrNegativeStock, movement.MovementType, movement.Quantity,
				movement.ItemID, movement.LocationID, newQty)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, movement)
	return movement, nil
}

// publish entrega el movimiento confirmado al publisher. Best-effort: un fallo
// de publicación no puede deshacer un commit, solo se registra.
func (uc *UseCase) publish(ctx context.Context, movement *entity.StockMovement) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.MovementRecorded(ctx, movement); err != nil && uc.log != nil {
		uc.log.Warn().
			Err(err).
			Str("movement_id", movement.ID).
			Str("tenant_id", movement.TenantID).
			Msg("no se pudo publicar el movimiento confirmado")
	}
}

// InitializeStockLevel crea la fila de nivel en cero para un par; no-op si ya
// existe (nunca resetea un nivel con movimientos).
func (uc *UseCase) InitializeStockLevel(ctx context.Context, tenantID, itemID, locationID string) error {
	if tenantID == "" || itemID == "" || locationID == "" {
		return fmt.Errorf("%w: tenant, item y ubicación son obligatorios", domain.ErrValidation)
	}
	return uc.levels.Init(ctx, tenantID, itemID, locationID)
}

// StockLevelExists indica si el par (item, ubicación) ya tiene fila de nivel.
func (uc *UseCase) StockLevelExists(ctx context.Context, tenantID, itemID, locationID string) (bool, error) {
	return uc.levels.Exists(ctx, tenantID, itemID, locationID)
}

// GetStockLevel devuelve el nivel del par o nil si no existe.
func (uc *UseCase) GetStockLevel(ctx context.Context, tenantID, itemID, locationID string) (*entity.StockLevel, error) {
	return uc.levels.Get(ctx, tenantID, itemID, locationID)
}

// GetItemStockLevels devuelve los niveles de un item en todas sus ubicaciones.
func (uc *UseCase) GetItemStockLevels(ctx context.Context, tenantID, itemID string) ([]*entity.StockLevel, error) {
	return uc.levels.ListByItem(ctx, tenantID, itemID)
}

// GetLocationStockLevels devuelve los niveles de todos los items de una ubicación.
func (uc *UseCase) GetLocationStockLevels(ctx context.Context, tenantID, locationID string) ([]*entity.StockLevel, error) {
	return uc.levels.ListByLocation(ctx, tenantID, locationID)
}

// GetTotalQuantityOnHand suma la cantidad disponible de un item en todas las ubicaciones.
func (uc *UseCase) GetTotalQuantityOnHand(ctx context.Context, tenantID, itemID string) (decimal.Decimal, error) {
	return uc.levels.SumByItem(ctx, tenantID, itemID)
}

// GetItemMovements lista el historial de un item, del más reciente al más antiguo.
func (uc *UseCase) GetItemMovements(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movements.ListByItem(ctx, tenantID, itemID, normalizeLimit(limit), normalizeOffset(offset))
}

// GetLocationMovements lista el historial de una ubicación, del más reciente al más antiguo.
func (uc *UseCase) GetLocationMovements(ctx context.Context, tenantID, locationID string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movements.ListByLocation(ctx, tenantID, locationID, normalizeLimit(limit), normalizeOffset(offset))
}

// GetStockMovements lista el historial de un par (item, ubicación).
func (uc *UseCase) GetStockMovements(ctx context.Context, tenantID, itemID, locationID string, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movements.ListByItemLocation(ctx, tenantID, itemID, locationID, normalizeLimit(limit), normalizeOffset(offset))
}

// GetStockLevelsBelowThreshold scan por cursor de niveles bajo el umbral.
func (uc *UseCase) GetStockLevelsBelowThreshold(ctx context.Context, tenantID string, threshold decimal.Decimal, limit int, cursor repository.LevelCursor) ([]*entity.StockLevel, repository.LevelCursor, error) {
	return uc.levels.ScanBelowThreshold(ctx, tenantID, threshold, normalizeLimit(limit), cursor)
}

// GetStockLevelsByLocation scan por cursor de los niveles de una ubicación.
func (uc *UseCase) GetStockLevelsByLocation(ctx context.Context, tenantID, locationID string, limit int, cursor repository.LevelCursor) ([]*entity.StockLevel, repository.LevelCursor, error) {
	return uc.levels.ScanByLocation(ctx, tenantID, locationID, normalizeLimit(limit), cursor)
}

// GetAllStockLevels scan por cursor de todos los niveles del tenant.
func (uc *UseCase) GetAllStockLevels(ctx context.Context, tenantID string, limit int, cursor repository.LevelCursor) ([]*entity.StockLevel, repository.LevelCursor, error) {
	return uc.levels.ScanAll(ctx, tenantID, normalizeLimit(limit), cursor)
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
