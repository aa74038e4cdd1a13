package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL
// (usable con pool o tx). La constraint UNIQUE (tenant_id, item_id, location_id)
// de stock_levels es la que hace seguro el upsert-incremento bajo concurrencia.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const levelColumns = `tenant_id, item_id, location_id, quantity_on_hand, last_movement_id, updated_at`

// Get obtiene el nivel del par o nil si no tiene fila todavía.
func (r *StockLevelRepo) Get(ctx context.Context, tenantID, itemID, locationID string) (*entity.StockLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM stock_levels
		WHERE tenant_id = $1 AND item_id = $2 AND location_id = $3`
	l, err := scanLevel(r.q.QueryRow(ctx, query, tenantID, itemID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return l, nil
}

// Exists indica si el par ya tiene fila de nivel.
func (r *StockLevelRepo) Exists(ctx context.Context, tenantID, itemID, locationID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stock_levels
			WHERE tenant_id = $1 AND item_id = $2 AND location_id = $3)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, tenantID, itemID, locationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("stock level exists: %w", err)
	}
	return exists, nil
}

// Init crea la fila en cero si no existe; DO NOTHING si ya existe, de modo que
// nunca resetea un nivel con movimientos aplicados.
func (r *StockLevelRepo) Init(ctx context.Context, tenantID, itemID, locationID string) error {
	query := `
		INSERT INTO stock_levels (tenant_id, item_id, location_id, quantity_on_hand, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (tenant_id, item_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, tenantID, itemID, locationID); err != nil {
		return fmt.Errorf("init stock level: %w", err)
	}
	return nil
}

// ApplyDelta incrementa atómicamente la cantidad del par (creando la fila si
// falta) y devuelve la cantidad resultante. Una sola sentencia: el bloqueo de
// fila que toma el ON CONFLICT DO UPDATE serializa incrementos concurrentes, y
// RETURNING entrega la cantidad ya incrementada dentro de la misma transacción.
func (r *StockLevelRepo) ApplyDelta(ctx context.Context, tenantID, itemID, locationID string, delta decimal.Decimal, movementID string) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_levels (` + levelColumns + `)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (tenant_id, item_id, location_id)
		DO UPDATE SET
			quantity_on_hand = stock_levels.quantity_on_hand + EXCLUDED.quantity_on_hand,
			last_movement_id = EXCLUDED.last_movement_id,
			updated_at       = now()
		RETURNING quantity_on_hand`
	var newQty decimal.Decimal
	err := r.q.QueryRow(ctx, query, tenantID, itemID, locationID, delta, movementID).Scan(&newQty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("apply stock delta: %w", err)
	}
	return newQty, nil
}

// ListByItem devuelve los niveles de un item en todas sus ubicaciones.
func (r *StockLevelRepo) ListByItem(ctx context.Context, tenantID, itemID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM stock_levels
		WHERE tenant_id = $1 AND item_id = $2
		ORDER BY location_id`
	return r.list(ctx, query, tenantID, itemID)
}

// ListByLocation devuelve los niveles de todos los items de una ubicación.
func (r *StockLevelRepo) ListByLocation(ctx context.Context, tenantID, locationID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM stock_levels
		WHERE tenant_id = $1 AND location_id = $2
		ORDER BY item_id`
	return r.list(ctx, query, tenantID, locationID)
}

// SumByItem suma la cantidad disponible de un item en todas las ubicaciones.
func (r *StockLevelRepo) SumByItem(ctx context.Context, tenantID, itemID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_on_hand), 0)
		FROM stock_levels
		WHERE tenant_id = $1 AND item_id = $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, tenantID, itemID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock by item: %w", err)
	}
	return total, nil
}

// ScanBelowThreshold scan por cursor de los niveles bajo el umbral, orden
// estable (item_id, location_id).
func (r *StockLevelRepo) ScanBelowThreshold(ctx context.Context, tenantID string, threshold decimal.Decimal, limit int, cursor repository.LevelCursor) ([]*entity.StockLevel, repository.LevelCursor, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM stock_levels
		WHERE tenant_id = $1 AND quantity_on_hand < $2`
	args := []any{tenantID, threshold}
	query, args = appendCursor(query, args, cursor)
	query += fmt.Sprintf(" ORDER BY item_id, location_id LIMIT $%d", len(args)+1)
	args = append(args, limit)
	return r.scan(ctx, query, limit, args...)
}

// ScanByLocation scan por cursor de los niveles de una ubicación.
func (r *StockLevelRepo) ScanByLocation(ctx context.Context, tenantID, locationID string, limit int, cursor repository.LevelCursor) ([]*entity.StockLevel, repository.LevelCursor, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM stock_levels
		WHERE tenant_id = $1 AND location_id = $2`
	args := []any{tenantID, locationID}
	query, args = appendCursor(query, args, cursor)
	query += fmt.Sprintf(" ORDER BY item_id, location_id LIMIT $%d", len(args)+1)
	args = append(args, limit)
	return r.scan(ctx, query, limit, args...)
}

// ScanAll scan por cursor de todos los niveles del tenant.
func (r *StockLevelRepo) ScanAll(ctx context.Context, tenantID string, limit int, cursor repository.LevelCursor) ([]*entity.StockLevel, repository.LevelCursor, error) {
	query := `
		SELECT ` + levelColumns + `
		FROM stock_levels
		WHERE tenant_id = $1`
	args := []any{tenantID}
	query, args = appendCursor(query, args, cursor)
	query += fmt.Sprintf(" ORDER BY item_id, location_id LIMIT $%d", len(args)+1)
	args = append(args, limit)
	return r.scan(ctx, query, limit, args...)
}

// appendCursor agrega el predicado de tupla (item_id, location_id) > cursor.
func appendCursor(query string, args []any, cursor repository.LevelCursor) (string, []any) {
	if cursor.IsZero() {
		return query, args
	}
	query += fmt.Sprintf(" AND (item_id, location_id) > ($%d, $%d)", len(args)+1, len(args)+2)
	return query, append(args, cursor.ItemID, cursor.LocationID)
}

func (r *StockLevelRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// scan ejecuta un scan paginado y calcula el siguiente cursor: página llena ->
// cursor sobre la última fila; página corta -> fin de scan (cursor cero).
func (r *StockLevelRepo) scan(ctx context.Context, query string, limit int, args ...any) ([]*entity.StockLevel, repository.LevelCursor, error) {
	list, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, repository.LevelCursor{}, err
	}
	var next repository.LevelCursor
	if limit > 0 && len(list) == limit {
		last := list[len(list)-1]
		next = repository.LevelCursor{ItemID: last.ItemID, LocationID: last.LocationID}
	}
	return list, next, nil
}

func scanLevel(row pgx.Row) (*entity.StockLevel, error) {
	var (
		l              entity.StockLevel
		lastMovementID *string
	)
	if err := row.Scan(
		&l.TenantID, &l.ItemID, &l.LocationID,
		&l.QuantityOnHand, &lastMovementID, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastMovementID != nil {
		l.LastMovementID = *lastMovementID
	}
	return &l, nil
}
