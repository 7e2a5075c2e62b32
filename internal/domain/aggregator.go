package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aggregator groups battery owners under one commercial entity. The
// commission rate is fixed at construction and never changes afterwards.
type Aggregator struct {
	AggregatorID      uuid.UUID `gorm:"column:aggregator_id;type:uuid;primaryKey" json:"aggregator_id"`
	Name              string    `gorm:"column:name;not null" json:"name"`
	AdminID           uuid.UUID `gorm:"column:admin_id;type:uuid;not null" json:"admin_id"`
	CommissionRatePct int64     `gorm:"column:commission_rate_pct;not null" json:"commission_rate_pct"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Aggregator) TableName() string {
	return "Aggregators"
}

func (a *Aggregator) BeforeCreate(tx *gorm.DB) error {
	if a.AggregatorID == uuid.Nil {
		a.AggregatorID = uuid.New()
	}
	return nil
}
