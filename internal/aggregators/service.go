package aggregators

import (
	"context"

	"gridreserve-backend/internal/batteries"
	"gridreserve-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns aggregator records and forwards battery registration to the
// registry after the policy check.
type Service struct {
	DB        *gorm.DB
	Batteries *batteries.Service
	Policy    RegistrationPolicy
}

// Create constructs an aggregator with a fixed commission rate.
func (s *Service) Create(ctx context.Context, name string, adminID uuid.UUID, commissionRatePct int64) (*domain.Aggregator, error) {
	if commissionRatePct < 0 || commissionRatePct > 100 {
		return nil, ErrInvalidCommissionRate
	}
	agg := domain.Aggregator{
		Name:              name,
		AdminID:           adminID,
		CommissionRatePct: commissionRatePct,
	}
	if err := s.DB.WithContext(ctx).Create(&agg).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

// Get returns an aggregator by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Aggregator, error) {
	var agg domain.Aggregator
	if err := s.DB.WithContext(ctx).Where("aggregator_id = ?", id).First(&agg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAggregatorNotFound
		}
		return nil, err
	}
	return &agg, nil
}

// RegisterBattery delegates to the battery registry after the registration
// policy authorizes the actor.
func (s *Service) RegisterBattery(ctx context.Context, aggregatorID, actorID, ownerID uuid.UUID, capacityKwh, initialSoc int64) (*domain.Battery, error) {
	agg, err := s.Get(ctx, aggregatorID)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Authorize(agg, actorID, ownerID); err != nil {
		return nil, err
	}
	return s.Batteries.Register(ctx, aggregatorID, ownerID, capacityKwh, initialSoc)
}
