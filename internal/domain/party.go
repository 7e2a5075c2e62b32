package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Party is any identity that calls the API: the market operator, an
// aggregator admin or a battery owner. Authorization is derived from Role.
type Party struct {
	PartyID      uuid.UUID  `gorm:"column:party_id;type:uuid;primaryKey" json:"party_id"`
	Fullname     string     `gorm:"column:fullname;not null" json:"fullname"`
	Email        string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         string     `gorm:"column:role;not null;default:battery_owner" json:"role"`
	AggregatorID *uuid.UUID `gorm:"column:aggregator_id;type:uuid" json:"aggregator_id"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Party) TableName() string {
	return "Parties"
}

// BeforeCreate sets the UUID if not set (for DBs without gen_random_uuid).
func (p *Party) BeforeCreate(tx *gorm.DB) error {
	if p.PartyID == uuid.Nil {
		p.PartyID = uuid.New()
	}
	return nil
}
