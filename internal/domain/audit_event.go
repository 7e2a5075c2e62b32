package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEvent is a read-only observer record; no core logic depends on it.
type AuditEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	Kind      string         `gorm:"column:kind;type:varchar(40);not null;index" json:"kind"`
	BidID     *int64         `gorm:"column:bid_id" json:"bid_id"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (AuditEvent) TableName() string {
	return "AuditEvents"
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
