package market

import (
	"context"

	"gridreserve-backend/internal/audit"
	"gridreserve-backend/internal/domain"
	"gridreserve-backend/internal/observability/metrics"
	"gridreserve-backend/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns market sessions and the bid ledger. Placement is gated on the
// Open phase, selection on Closed or later; the ledger is append-only.
type Service struct {
	DB    *gorm.DB
	Clock clock.Clock
	Audit audit.Recorder
}

func (s *Service) sink() audit.Recorder {
	if s.Audit != nil {
		return s.Audit
	}
	return audit.Discard{}
}

// Configure creates a market session with a three-timestamp schedule.
func (s *Service) Configure(ctx context.Context, openAt, closeAt, resultsAt, requiredEnergyKwh int64, reserve string) (*domain.MarketSession, error) {
	if err := validateSchedule(openAt, closeAt, resultsAt); err != nil {
		return nil, err
	}
	if reserve != domain.ReservePositive && reserve != domain.ReserveNegative {
		return nil, ErrInvalidReserve
	}
	if requiredEnergyKwh <= 0 {
		return nil, ErrInvalidDemand
	}
	session := domain.MarketSession{
		OpenAt:            openAt,
		CloseAt:           closeAt,
		ResultsAt:         resultsAt,
		RequiredEnergyKwh: requiredEnergyKwh,
		Reserve:           reserve,
	}
	if err := s.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Reconfigure replaces the schedule of an existing session. Allowed only
// while the session has no bids.
func (s *Service) Reconfigure(ctx context.Context, sessionID uuid.UUID, openAt, closeAt, resultsAt int64) (*domain.MarketSession, error) {
	if err := validateSchedule(openAt, closeAt, resultsAt); err != nil {
		return nil, err
	}
	var session domain.MarketSession
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSessionNotFound
			}
			return err
		}
		var count int64
		if err := tx.Model(&domain.Bid{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSessionHasBids
		}
		session.OpenAt = openAt
		session.CloseAt = closeAt
		session.ResultsAt = resultsAt
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Get returns a session together with its phase at the current time.
func (s *Service) Get(ctx context.Context, sessionID uuid.UUID) (*domain.MarketSession, domain.Phase, error) {
	var session domain.MarketSession
	if err := s.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", ErrSessionNotFound
		}
		return nil, "", err
	}
	return &session, session.PhaseAt(s.Clock.Now()), nil
}

// PlaceBid appends a bid to the ledger. Requires the Open phase and that the
// battery owner is registered under the bidding aggregator. The sequential
// bid id is assigned by the insert; a rejected placement never mutates the
// ledger.
func (s *Service) PlaceBid(ctx context.Context, sessionID, aggregatorID, batteryOwnerID uuid.UUID, amountKwh, price int64) (*domain.Bid, error) {
	if amountKwh <= 0 || price < 0 {
		metrics.IncBidPlaced(metrics.ResultRejected)
		return nil, ErrInvalidBid
	}

	var bid domain.Bid
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session domain.MarketSession
		if err := tx.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSessionNotFound
			}
			return err
		}
		if session.PhaseAt(s.Clock.Now()) != domain.PhaseOpen {
			return ErrMarketClosed
		}

		var battery domain.Battery
		if err := tx.Where("owner_id = ?", batteryOwnerID).First(&battery).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUnauthorizedOwner
			}
			return err
		}
		if battery.AggregatorID != aggregatorID {
			return ErrUnauthorizedOwner
		}

		bid = domain.Bid{
			SessionID:      sessionID,
			AggregatorID:   aggregatorID,
			BatteryOwnerID: batteryOwnerID,
			AmountKwh:      amountKwh,
			Price:          price,
			Status:         domain.BidStatusPlaced,
		}
		return tx.Create(&bid).Error
	})
	if err != nil {
		metrics.IncBidPlaced(metrics.ResultRejected)
		return nil, err
	}

	metrics.IncBidPlaced(metrics.ResultSuccess)
	s.sink().Record(ctx, audit.Event{
		Kind:  audit.KindBidPlaced,
		BidID: &bid.BidID,
		Fields: map[string]interface{}{
			"session_id":    sessionID.String(),
			"aggregator_id": aggregatorID.String(),
			"battery_owner": batteryOwnerID.String(),
			"amount_kwh":    amountKwh,
			"price":         price,
		},
	})
	return &bid, nil
}

// SelectBid transitions a bid from placed to selected and records who
// selected it. Legal only after the session closes.
func (s *Service) SelectBid(ctx context.Context, sessionID uuid.UUID, bidID int64, selectorID uuid.UUID) (*domain.Bid, error) {
	var bid domain.Bid
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session domain.MarketSession
		if err := tx.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSessionNotFound
			}
			return err
		}
		phase := session.PhaseAt(s.Clock.Now())
		if phase == domain.PhasePreOpen || phase == domain.PhaseOpen {
			return ErrMarketStillOpen
		}

		if err := tx.Where("bid_id = ? AND session_id = ?", bidID, sessionID).First(&bid).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrBidNotFound
			}
			return err
		}
		if bid.Status != domain.BidStatusPlaced {
			return ErrAlreadySelected
		}
		bid.Status = domain.BidStatusSelected
		bid.AcceptedBy = &selectorID
		return tx.Save(&bid).Error
	})
	if err != nil {
		metrics.IncBidSelected(metrics.ResultRejected)
		return nil, err
	}

	metrics.IncBidSelected(metrics.ResultSuccess)
	s.sink().Record(ctx, audit.Event{
		Kind:  audit.KindBidSelected,
		BidID: &bid.BidID,
		Fields: map[string]interface{}{
			"session_id":  sessionID.String(),
			"accepted_by": selectorID.String(),
		},
	})
	return &bid, nil
}

// ListBids returns all bids of a session in placement order.
func (s *Service) ListBids(ctx context.Context, sessionID uuid.UUID) ([]domain.Bid, error) {
	var bids []domain.Bid
	if err := s.DB.WithContext(ctx).Where("session_id = ?", sessionID).Order("bid_id").Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func validateSchedule(openAt, closeAt, resultsAt int64) error {
	if openAt >= closeAt || closeAt >= resultsAt {
		return ErrInvalidSchedule
	}
	return nil
}
