package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/almacenix/ledger-api/internal/application/ledger"
	"github.com/almacenix/ledger-api/internal/domain/entity"
)

var _ ledger.EventPublisher = (*MovementPublisher)(nil)

// MovementPublisher publica movimientos confirmados a un tópico Kafka para
// consumidores de solo lectura (proyección de búsqueda, reportes externos).
// Eventual-consistente por diseño: corre después del commit y nunca lo deshace.
type MovementPublisher struct {
	writer *kafka.Writer
}

// NewMovementPublisher construye el publisher contra los brokers y tópico dados.
func NewMovementPublisher(brokers []string, topic string) *MovementPublisher {
	return &MovementPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // mismo par (item, ubicación) -> misma partición
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// movementRecordedEvent payload JSON del evento.
type movementRecordedEvent struct {
	EventType     string          `json:"event_type"`
	MovementID    string          `json:"movement_id"`
	TenantID      string          `json:"tenant_id"`
	ItemID        string          `json:"item_id"`
	LocationID    string          `json:"location_id"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementRecorded publica el movimiento; la key agrupa por tenant+item+ubicación
// para que los consumidores vean en orden los eventos de un mismo par.
func (p *MovementPublisher) MovementRecorded(ctx context.Context, m *entity.StockMovement) error {
	payload, err := json.Marshal(movementRecordedEvent{
		EventType:     "stock_movement.recorded",
		MovementID:    m.ID,
		TenantID:      m.TenantID,
		ItemID:        m.ItemID,
		LocationID:    m.LocationID,
		MovementType:  m.MovementType.String(),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType.String(),
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal movement event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(m.TenantID + "/" + m.ItemID + "/" + m.LocationID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish movement event: %w", err)
	}
	return nil
}

// Close libera el writer subyacente.
func (p *MovementPublisher) Close() error {
	return p.writer.Close()
}
