package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kinds of settlement records. Every settled bid produces exactly one of
// each: the commission paid to the aggregator and the net paid to the
// battery owner.
const (
	RecordAggregatorCommission = "aggregator_commission"
	RecordOwnerPayout          = "owner_payout"
)

// SettlementRecord is the durable audit trail of one leg of a settlement.
type SettlementRecord struct {
	RecordID  uuid.UUID `gorm:"column:record_id;type:uuid;primaryKey" json:"record_id"`
	BidID     int64     `gorm:"column:bid_id;not null;index" json:"bid_id"`
	PayeeID   uuid.UUID `gorm:"column:payee_id;type:uuid;not null" json:"payee_id"`
	Kind      string    `gorm:"column:kind;type:varchar(30);not null" json:"kind"`
	Amount    int64     `gorm:"column:amount;not null" json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SettlementRecord) TableName() string {
	return "SettlementRecords"
}

func (r *SettlementRecord) BeforeCreate(tx *gorm.DB) error {
	if r.RecordID == uuid.Nil {
		r.RecordID = uuid.New()
	}
	return nil
}
