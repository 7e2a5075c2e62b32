package aggregators

import (
	"context"
	"testing"

	"gridreserve-backend/internal/batteries"
	"gridreserve-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAggregatorTest(t *testing.T, policy RegistrationPolicy) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Aggregator{}, &domain.Battery{}))
	return &Service{
		DB:        db,
		Batteries: &batteries.Service{DB: db},
		Policy:    policy,
	}
}

func TestCreate_CommissionRateBounds(t *testing.T) {
	svc := setupAggregatorTest(t, AdminOnly{})

	_, err := svc.Create(context.Background(), "a", uuid.New(), -1)
	assert.ErrorIs(t, err, ErrInvalidCommissionRate)

	_, err = svc.Create(context.Background(), "a", uuid.New(), 101)
	assert.ErrorIs(t, err, ErrInvalidCommissionRate)

	agg, err := svc.Create(context.Background(), "a", uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.CommissionRatePct)

	agg, err = svc.Create(context.Background(), "b", uuid.New(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), agg.CommissionRatePct)
}

func TestGet_NotFound(t *testing.T) {
	svc := setupAggregatorTest(t, AdminOnly{})
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAggregatorNotFound)
}

func TestRegisterBattery_AdminOnly(t *testing.T) {
	svc := setupAggregatorTest(t, AdminOnly{})
	admin := uuid.New()
	owner := uuid.New()

	agg, err := svc.Create(context.Background(), "fleet", admin, 5)
	require.NoError(t, err)

	// owner self-registration refused
	_, err = svc.RegisterBattery(context.Background(), agg.AggregatorID, owner, owner, 100, 80)
	assert.ErrorIs(t, err, ErrRegistrationRefused)

	// admin registers on behalf of the owner
	battery, err := svc.RegisterBattery(context.Background(), agg.AggregatorID, admin, owner, 100, 80)
	require.NoError(t, err)
	assert.Equal(t, owner, battery.OwnerID)
	assert.Equal(t, agg.AggregatorID, battery.AggregatorID)
}

func TestRegisterBattery_SelfService(t *testing.T) {
	svc := setupAggregatorTest(t, SelfService{})
	admin := uuid.New()
	owner := uuid.New()
	stranger := uuid.New()

	agg, err := svc.Create(context.Background(), "fleet", admin, 5)
	require.NoError(t, err)

	_, err = svc.RegisterBattery(context.Background(), agg.AggregatorID, owner, owner, 100, 80)
	assert.NoError(t, err)

	_, err = svc.RegisterBattery(context.Background(), agg.AggregatorID, admin, owner, 120, 70)
	assert.NoError(t, err)

	_, err = svc.RegisterBattery(context.Background(), agg.AggregatorID, stranger, owner, 100, 80)
	assert.ErrorIs(t, err, ErrRegistrationRefused)
}

func TestRegisterBattery_UnknownAggregator(t *testing.T) {
	svc := setupAggregatorTest(t, AdminOnly{})
	_, err := svc.RegisterBattery(context.Background(), uuid.New(), uuid.New(), uuid.New(), 100, 80)
	assert.ErrorIs(t, err, ErrAggregatorNotFound)
}
