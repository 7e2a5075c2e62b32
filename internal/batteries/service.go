package batteries

import (
	"context"

	"gridreserve-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSocCeiling bounds the state of charge; SoC is tracked as a
// percentage of capacity.
const DefaultSocCeiling = 100

// Service owns Battery records. The SoC column is mutated only through
// ApplySoCDelta, which the settlement engine calls inside its transaction.
type Service struct {
	DB         *gorm.DB
	SocCeiling int64
}

func (s *Service) ceiling() int64 {
	if s.SocCeiling > 0 {
		return s.SocCeiling
	}
	return DefaultSocCeiling
}

// Register creates or overwrites the battery record for an owner.
// Re-registration overwrites capacity and SoC; batteries are never deleted.
func (s *Service) Register(ctx context.Context, aggregatorID, ownerID uuid.UUID, capacityKwh, initialSoc int64) (*domain.Battery, error) {
	if capacityKwh <= 0 {
		return nil, ErrInvalidCapacity
	}
	if initialSoc < 0 || initialSoc > s.ceiling() {
		return nil, ErrInvalidSoc
	}

	var battery domain.Battery
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("owner_id = ?", ownerID).First(&battery).Error
		if err == gorm.ErrRecordNotFound {
			battery = domain.Battery{
				OwnerID:      ownerID,
				AggregatorID: aggregatorID,
				CapacityKwh:  capacityKwh,
				Soc:          initialSoc,
			}
			return tx.Create(&battery).Error
		}
		if err != nil {
			return err
		}
		battery.AggregatorID = aggregatorID
		battery.CapacityKwh = capacityKwh
		battery.Soc = initialSoc
		return tx.Save(&battery).Error
	})
	if err != nil {
		return nil, err
	}
	return &battery, nil
}

// Get returns the battery registered for an owner.
func (s *Service) Get(ctx context.Context, ownerID uuid.UUID) (*domain.Battery, error) {
	var battery domain.Battery
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).First(&battery).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBatteryNotFound
		}
		return nil, err
	}
	return &battery, nil
}

// ListByAggregator returns all batteries registered under an aggregator.
func (s *Service) ListByAggregator(ctx context.Context, aggregatorID uuid.UUID) ([]domain.Battery, error) {
	var out []domain.Battery
	if err := s.DB.WithContext(ctx).Where("aggregator_id = ?", aggregatorID).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ApplySoCDelta adds a signed delta to the battery's SoC, clamped to
// [0, ceiling]. It runs on the caller's transaction so the mutation commits
// or rolls back with the settlement. Returns old and new SoC.
func (s *Service) ApplySoCDelta(tx *gorm.DB, ownerID uuid.UUID, delta int64) (int64, int64, error) {
	var battery domain.Battery
	if err := tx.Where("owner_id = ?", ownerID).First(&battery).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, 0, ErrBatteryNotFound
		}
		return 0, 0, err
	}
	oldSoc := battery.Soc
	newSoc := oldSoc + delta
	if newSoc < 0 {
		newSoc = 0
	}
	if max := s.ceiling(); newSoc > max {
		newSoc = max
	}
	battery.Soc = newSoc
	if err := tx.Save(&battery).Error; err != nil {
		return 0, 0, err
	}
	return oldSoc, newSoc, nil
}
