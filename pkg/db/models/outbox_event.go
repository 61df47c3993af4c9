package models

import (
	"encoding/json"
	"time"

	"github.com/supplydesk/supplydesk-backend/pkg/enums"
)

// OutboxEvent is a domain event written in the same transaction as the state
// change it describes, published asynchronously by the notifier worker.
type OutboxEvent struct {
	ID            uint                      `gorm:"column:id;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;not null"`
	AggregateID   uint                      `gorm:"column:aggregate_id;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	Attempts      int                       `gorm:"column:attempts;not null;default:0"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	LastError     *string                   `gorm:"column:last_error"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
