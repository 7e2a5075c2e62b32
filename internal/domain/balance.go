package domain

import (
	"time"

	"github.com/google/uuid"
)

// Balance is accrued, not-yet-withdrawn value per account. Written only by
// the settlement engine; zeroed by payout after a successful transfer.
type Balance struct {
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	Amount    int64     `gorm:"column:amount;not null;default:0" json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Balance) TableName() string {
	return "Balances"
}
