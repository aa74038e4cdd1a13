package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/almacenix/ledger-api/internal/domain"
	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Cada sentencia filtra/escribe tenant_id: el aislamiento por tenant se
// garantiza aquí, en la frontera de acceso a datos, no en cada caller.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, tenant_id, item_id, location_id, movement_type, quantity,
	reference_type, reference_id, reason, created_at, created_by`

// Create inserta una entrada del libro (append-only; jamás UPDATE ni DELETE).
// Un ID duplicado viola la primary key: error de programación del caller.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	referenceID := nullableString(m.ReferenceID)
	reason := nullableString(m.Reason)
	createdBy := nullableString(m.CreatedBy)
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ItemID, m.LocationID,
		m.MovementType.String(), m.Quantity, m.ReferenceType.String(),
		referenceID, reason, m.CreatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s ya existe", domain.ErrDuplicate, m.ID)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID dentro del tenant; nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE tenant_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListByItem lista los movimientos de un item, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByItem(ctx context.Context, tenantID, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE tenant_id = $1 AND item_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	return r.list(ctx, query, tenantID, itemID, limit, offset)
}

// ListByLocation lista los movimientos de una ubicación, del más reciente al más antiguo.
func (r *StockMovementRepo) ListByLocation(ctx context.Context, tenantID, locationID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE tenant_id = $1 AND location_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	return r.list(ctx, query, tenantID, locationID, limit, offset)
}

// ListByItemLocation lista los movimientos de un par (item, ubicación).
func (r *StockMovementRepo) ListByItemLocation(ctx context.Context, tenantID, itemID, locationID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE tenant_id = $1 AND item_id = $2 AND location_id = $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	return r.list(ctx, query, tenantID, itemID, locationID, limit, offset)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// scanMovement mapea una fila a la entidad; los tokens almacenados deben
// pertenecer al conjunto cerrado (round-trip exacto del codec).
func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m             entity.StockMovement
		movementType  string
		referenceType string
		referenceID   *string
		reason        *string
		createdBy     *string
	)
	if err := row.Scan(
		&m.ID, &m.TenantID, &m.ItemID, &m.LocationID, &movementType,
		&m.Quantity, &referenceType, &referenceID, &reason, &m.CreatedAt, &createdBy,
	); err != nil {
		return nil, err
	}
	mt, err := entity.ParseMovementType(movementType)
	if err != nil {
		return nil, err
	}
	rt, err := entity.ParseReferenceType(referenceType)
	if err != nil {
		return nil, err
	}
	m.MovementType = mt
	m.ReferenceType = rt
	if referenceID != nil {
		m.ReferenceID = *referenceID
	}
	if reason != nil {
		m.Reason = *reason
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
