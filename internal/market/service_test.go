package market

import (
	"context"
	"testing"
	"time"

	"gridreserve-backend/internal/domain"
	"gridreserve-backend/internal/pkg/clock"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	tOpen    = int64(1000)
	tClose   = int64(2000)
	tResults = int64(3000)
)

func setupMarketTest(t *testing.T) (*Service, *clock.Fixed) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MarketSession{}, &domain.Bid{}, &domain.Battery{}))
	fc := &clock.Fixed{T: time.Unix(tOpen, 0)}
	return &Service{DB: db, Clock: fc}, fc
}

func seedSession(t *testing.T, svc *Service) *domain.MarketSession {
	session, err := svc.Configure(context.Background(), tOpen, tClose, tResults, 500, domain.ReservePositive)
	require.NoError(t, err)
	return session
}

func seedBattery(t *testing.T, svc *Service, aggregatorID uuid.UUID) uuid.UUID {
	owner := uuid.New()
	require.NoError(t, svc.DB.Create(&domain.Battery{
		OwnerID:      owner,
		AggregatorID: aggregatorID,
		CapacityKwh:  100,
		Soc:          80,
	}).Error)
	return owner
}

func TestPhaseAt(t *testing.T) {
	s := domain.MarketSession{OpenAt: tOpen, CloseAt: tClose, ResultsAt: tResults}
	cases := []struct {
		ts   int64
		want domain.Phase
	}{
		{tOpen - 1, domain.PhasePreOpen},
		{tOpen, domain.PhaseOpen},
		{tClose - 1, domain.PhaseOpen},
		{tClose, domain.PhaseClosed},
		{tResults - 1, domain.PhaseClosed},
		{tResults, domain.PhaseResultsReady},
		{tResults + 100000, domain.PhaseResultsReady},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.PhaseAt(time.Unix(tc.ts, 0)), "ts=%d", tc.ts)
	}
}

func TestConfigure_Validation(t *testing.T) {
	svc, _ := setupMarketTest(t)

	_, err := svc.Configure(context.Background(), tClose, tOpen, tResults, 500, domain.ReservePositive)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	// equal timestamps are rejected too
	_, err = svc.Configure(context.Background(), tOpen, tOpen, tResults, 500, domain.ReservePositive)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.Configure(context.Background(), tOpen, tClose, tResults, 500, "sideways")
	assert.ErrorIs(t, err, ErrInvalidReserve)

	_, err = svc.Configure(context.Background(), tOpen, tClose, tResults, 0, domain.ReserveNegative)
	assert.ErrorIs(t, err, ErrInvalidDemand)
}

func TestReconfigure(t *testing.T) {
	svc, fc := setupMarketTest(t)
	session := seedSession(t, svc)

	updated, err := svc.Reconfigure(context.Background(), session.SessionID, tOpen+10, tClose+10, tResults+10)
	require.NoError(t, err)
	assert.Equal(t, tOpen+10, updated.OpenAt)

	// once a bid exists the schedule is frozen
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)
	fc.T = time.Unix(tOpen+20, 0)
	_, err = svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, 10)
	require.NoError(t, err)

	_, err = svc.Reconfigure(context.Background(), session.SessionID, tOpen+30, tClose+30, tResults+30)
	assert.ErrorIs(t, err, ErrSessionHasBids)
}

func TestReconfigure_NotFound(t *testing.T) {
	svc, _ := setupMarketTest(t)
	_, err := svc.Reconfigure(context.Background(), uuid.New(), tOpen, tClose, tResults)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// Placement outside the open window must not grow the ledger.
func TestPlaceBid_PhaseGating(t *testing.T) {
	svc, fc := setupMarketTest(t)
	session := seedSession(t, svc)
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)

	fc.T = time.Unix(tOpen-1, 0)
	_, err := svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, 10)
	assert.ErrorIs(t, err, ErrMarketClosed)

	fc.T = time.Unix(tClose, 0)
	_, err = svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, 10)
	assert.ErrorIs(t, err, ErrMarketClosed)

	bids, err := svc.ListBids(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestPlaceBid_SequentialIDs(t *testing.T) {
	svc, _ := setupMarketTest(t)
	session := seedSession(t, svc)
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)

	for i := 0; i < 3; i++ {
		bid, err := svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, int64(10+i))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), bid.BidID)
		assert.Equal(t, domain.BidStatusPlaced, bid.Status)
	}

	bids, err := svc.ListBids(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	for i, b := range bids {
		assert.Equal(t, int64(i+1), b.BidID)
	}
}

func TestPlaceBid_Validation(t *testing.T) {
	svc, _ := setupMarketTest(t)
	session := seedSession(t, svc)
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)

	_, err := svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidBid)

	_, err = svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, -1)
	assert.ErrorIs(t, err, ErrInvalidBid)
}

func TestPlaceBid_OwnerMustBelongToAggregator(t *testing.T) {
	svc, _ := setupMarketTest(t)
	session := seedSession(t, svc)
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)

	// unregistered owner
	_, err := svc.PlaceBid(context.Background(), session.SessionID, agg, uuid.New(), 50, 10)
	assert.ErrorIs(t, err, ErrUnauthorizedOwner)

	// owner registered under a different aggregator
	_, err = svc.PlaceBid(context.Background(), session.SessionID, uuid.New(), owner, 50, 10)
	assert.ErrorIs(t, err, ErrUnauthorizedOwner)
}

func TestSelectBid_GatedUntilClose(t *testing.T) {
	svc, fc := setupMarketTest(t)
	session := seedSession(t, svc)
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)
	operator := uuid.New()

	bid, err := svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, 10)
	require.NoError(t, err)

	_, err = svc.SelectBid(context.Background(), session.SessionID, bid.BidID, operator)
	assert.ErrorIs(t, err, ErrMarketStillOpen)

	fc.T = time.Unix(tClose, 0)
	selected, err := svc.SelectBid(context.Background(), session.SessionID, bid.BidID, operator)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusSelected, selected.Status)
	require.NotNil(t, selected.AcceptedBy)
	assert.Equal(t, operator, *selected.AcceptedBy)
}

func TestSelectBid_DoubleSelect(t *testing.T) {
	svc, fc := setupMarketTest(t)
	session := seedSession(t, svc)
	agg := uuid.New()
	owner := seedBattery(t, svc, agg)

	bid, err := svc.PlaceBid(context.Background(), session.SessionID, agg, owner, 50, 10)
	require.NoError(t, err)

	fc.T = time.Unix(tClose, 0)
	_, err = svc.SelectBid(context.Background(), session.SessionID, bid.BidID, uuid.New())
	require.NoError(t, err)

	_, err = svc.SelectBid(context.Background(), session.SessionID, bid.BidID, uuid.New())
	assert.ErrorIs(t, err, ErrAlreadySelected)
}

func TestSelectBid_NotFound(t *testing.T) {
	svc, fc := setupMarketTest(t)
	session := seedSession(t, svc)
	fc.T = time.Unix(tResults, 0)

	_, err := svc.SelectBid(context.Background(), session.SessionID, 42, uuid.New())
	assert.ErrorIs(t, err, ErrBidNotFound)
}

func TestGet_ReportsPhase(t *testing.T) {
	svc, fc := setupMarketTest(t)
	session := seedSession(t, svc)

	fc.T = time.Unix(tOpen-1, 0)
	_, phase, err := svc.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePreOpen, phase)

	fc.T = time.Unix(tResults, 0)
	_, phase, err = svc.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseResultsReady, phase)
}
