package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Battery is a registered asset. It is keyed by its owner identity; the SoC
// column is mutated only by the settlement engine, inside the settlement
// transaction.
type Battery struct {
	BatteryID    uuid.UUID `gorm:"column:battery_id;type:uuid;primaryKey" json:"battery_id"`
	OwnerID      uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex" json:"owner_id"`
	AggregatorID uuid.UUID `gorm:"column:aggregator_id;type:uuid;not null" json:"aggregator_id"`
	CapacityKwh  int64     `gorm:"column:capacity_kwh;not null" json:"capacity_kwh"`
	Soc          int64     `gorm:"column:soc;not null" json:"soc"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Battery) TableName() string {
	return "Batteries"
}

func (b *Battery) BeforeCreate(tx *gorm.DB) error {
	if b.BatteryID == uuid.Nil {
		b.BatteryID = uuid.New()
	}
	return nil
}
