package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bid status machine: placed -> selected -> settled. A bid that is never
// selected stays placed forever; there is no expiry and no deletion.
const (
	BidStatusPlaced   = "placed"
	BidStatusSelected = "selected"
	BidStatusSettled  = "settled"
)

// Bid is an individual price/quantity offer. The id is a sequential index
// assigned at insertion and never reused; everything except status and
// accepted_by is immutable once placed.
type Bid struct {
	BidID          int64      `gorm:"column:bid_id;primaryKey;autoIncrement" json:"bid_id"`
	SessionID      uuid.UUID  `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	AggregatorID   uuid.UUID  `gorm:"column:aggregator_id;type:uuid;not null" json:"aggregator_id"`
	BatteryOwnerID uuid.UUID  `gorm:"column:battery_owner_id;type:uuid;not null" json:"battery_owner_id"`
	AmountKwh      int64      `gorm:"column:amount_kwh;not null" json:"amount_kwh"`
	Price          int64      `gorm:"column:price;not null" json:"price"`
	Status         string     `gorm:"column:status;type:varchar(10);default:'placed'" json:"status"`
	AcceptedBy     *uuid.UUID `gorm:"column:accepted_by;type:uuid" json:"accepted_by"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Bid) TableName() string {
	return "Bids"
}

// Gross is the total value of the bid (amount x unit price).
func (b *Bid) Gross() int64 {
	return b.AmountKwh * b.Price
}
