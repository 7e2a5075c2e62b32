package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reserve direction requested for a session. Positive reserve discharges
// batteries to the grid, negative reserve charges them to absorb excess.
const (
	ReservePositive = "positive"
	ReserveNegative = "negative"
)

// Phase of a market session, derived from the three schedule timestamps.
type Phase string

const (
	PhasePreOpen      Phase = "pre_open"
	PhaseOpen         Phase = "open"
	PhaseClosed       Phase = "closed"
	PhaseResultsReady Phase = "results_ready"
)

// MarketSession owns the bidding window schedule. Invariant:
// open_at < close_at < results_at.
type MarketSession struct {
	SessionID         uuid.UUID `gorm:"column:session_id;type:uuid;primaryKey" json:"session_id"`
	OpenAt            int64     `gorm:"column:open_at;not null" json:"open_at"`
	CloseAt           int64     `gorm:"column:close_at;not null" json:"close_at"`
	ResultsAt         int64     `gorm:"column:results_at;not null" json:"results_at"`
	RequiredEnergyKwh int64     `gorm:"column:required_energy_kwh;not null" json:"required_energy_kwh"`
	Reserve           string    `gorm:"column:reserve;type:varchar(10);not null" json:"reserve"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (MarketSession) TableName() string {
	return "MarketSessions"
}

func (s *MarketSession) BeforeCreate(tx *gorm.DB) error {
	if s.SessionID == uuid.Nil {
		s.SessionID = uuid.New()
	}
	return nil
}

// PhaseAt is a pure function of now against the schedule. Bids are legal
// only while open_at <= now < close_at.
func (s *MarketSession) PhaseAt(now time.Time) Phase {
	ts := now.Unix()
	switch {
	case ts < s.OpenAt:
		return PhasePreOpen
	case ts < s.CloseAt:
		return PhaseOpen
	case ts < s.ResultsAt:
		return PhaseClosed
	default:
		return PhaseResultsReady
	}
}
