package aggregators

import (
	"gridreserve-backend/internal/domain"

	"github.com/google/uuid"
)

// RegistrationPolicy decides whether actorID may register a battery for
// ownerID under the given aggregator. Injected so deployments can choose
// between admin-gated and self-service registration.
type RegistrationPolicy interface {
	Authorize(agg *domain.Aggregator, actorID, ownerID uuid.UUID) error
}

// AdminOnly allows only the aggregator's admin to register batteries.
type AdminOnly struct{}

func (AdminOnly) Authorize(agg *domain.Aggregator, actorID, ownerID uuid.UUID) error {
	if actorID != agg.AdminID {
		return ErrRegistrationRefused
	}
	return nil
}

// SelfService allows an owner to register their own battery; the aggregator
// admin may still register on behalf of any owner.
type SelfService struct{}

func (SelfService) Authorize(agg *domain.Aggregator, actorID, ownerID uuid.UUID) error {
	if actorID == ownerID || actorID == agg.AdminID {
		return nil
	}
	return ErrRegistrationRefused
}
