package ledger

import (
	"context"

	"github.com/almacenix/ledger-api/internal/domain/entity"
	"github.com/almacenix/ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor del libro:
// o se persisten movimiento y proyección juntos, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movements repository.StockMovementRepository,
		levels repository.StockLevelRepository,
	) error) error
}

// EventPublisher notifica movimientos ya confirmados (commit exitoso) a
// consumidores de solo lectura como la proyección de búsqueda. Nunca participa
// en la atomicidad de RecordMovement: sus errores se registran y se descartan.
type EventPublisher interface {
	MovementRecorded(ctx context.Context, movement *entity.StockMovement) error
}
