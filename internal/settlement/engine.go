package settlement

import (
	"context"
	"time"

	"gridreserve-backend/internal/audit"
	"gridreserve-backend/internal/batteries"
	"gridreserve-backend/internal/domain"
	"gridreserve-backend/internal/observability/metrics"
	"gridreserve-backend/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Engine settles accepted bids: it computes the commission split, credits
// the balance ledger and applies the SoC delta in one transaction per bid.
// A single engine instance is the mutual-exclusion domain for settlement.
type Engine struct {
	DB        *gorm.DB
	Batteries *batteries.Service
	Clock     clock.Clock
	Audit     audit.Recorder
}

// Result reports one settlement. commission + net == gross always.
type Result struct {
	BidID          int64     `json:"bid_id"`
	BatteryOwnerID uuid.UUID `json:"battery_owner_id"`
	AggregatorID   uuid.UUID `json:"aggregator_id"`
	Gross          int64     `json:"gross"`
	Commission     int64     `json:"commission"`
	Net            int64     `json:"net"`
	OldSoc         int64     `json:"old_soc"`
	NewSoc         int64     `json:"new_soc"`
}

func (e *Engine) sink() audit.Recorder {
	if e.Audit != nil {
		return e.Audit
	}
	return audit.Discard{}
}

// Settle pays out one selected bid. paymentValue is the value supplied by
// the caller; it must cover the bid's gross. Balance credits, the SoC
// mutation and the settled transition commit together or not at all.
func (e *Engine) Settle(ctx context.Context, sessionID uuid.UUID, bidID int64, paymentValue int64) (*Result, error) {
	start := time.Now()
	var res Result

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session domain.MarketSession
		if err := tx.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSessionNotFound
			}
			return err
		}
		if session.PhaseAt(e.Clock.Now()) != domain.PhaseResultsReady {
			return ErrTooEarly
		}

		var bid domain.Bid
		if err := tx.Where("bid_id = ? AND session_id = ?", bidID, sessionID).First(&bid).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrBidNotFound
			}
			return err
		}
		switch bid.Status {
		case domain.BidStatusSettled:
			return ErrAlreadySettled
		case domain.BidStatusSelected:
			// proceed
		default:
			return ErrNotSelected
		}

		gross := bid.Gross()
		if paymentValue < gross {
			return ErrInsufficientPayment
		}

		var agg domain.Aggregator
		if err := tx.Where("aggregator_id = ?", bid.AggregatorID).First(&agg).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrAggregatorNotFound
			}
			return err
		}

		// Floor division: the remainder stays with the beneficiary so
		// commission + net == gross exactly.
		commission := gross * agg.CommissionRatePct / 100
		net := gross - commission

		if err := creditBalance(tx, bid.BatteryOwnerID, net); err != nil {
			return err
		}
		if err := creditBalance(tx, bid.AggregatorID, commission); err != nil {
			return err
		}

		battery, err := batteryForOwner(tx, bid.BatteryOwnerID)
		if err != nil {
			return err
		}
		// Capacity-normalized percentage of the battery's own capacity.
		deltaMag := bid.AmountKwh * 100 / battery.CapacityKwh
		delta := -deltaMag
		if session.Reserve == domain.ReserveNegative {
			delta = deltaMag
		}
		oldSoc, newSoc, err := e.Batteries.ApplySoCDelta(tx, bid.BatteryOwnerID, delta)
		if err != nil {
			return err
		}

		bid.Status = domain.BidStatusSettled
		if err := tx.Save(&bid).Error; err != nil {
			return err
		}

		records := []domain.SettlementRecord{
			{BidID: bid.BidID, PayeeID: bid.BatteryOwnerID, Kind: domain.RecordOwnerPayout, Amount: net},
			{BidID: bid.BidID, PayeeID: bid.AggregatorID, Kind: domain.RecordAggregatorCommission, Amount: commission},
		}
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}

		res = Result{
			BidID:          bid.BidID,
			BatteryOwnerID: bid.BatteryOwnerID,
			AggregatorID:   bid.AggregatorID,
			Gross:          gross,
			Commission:     commission,
			Net:            net,
			OldSoc:         oldSoc,
			NewSoc:         newSoc,
		}
		return nil
	})
	if err != nil {
		metrics.ObserveSettlement(metrics.ResultRejected, time.Since(start))
		return nil, err
	}

	metrics.ObserveSettlement(metrics.ResultSuccess, time.Since(start))
	e.emitSettled(ctx, &res)
	return &res, nil
}

func (e *Engine) emitSettled(ctx context.Context, res *Result) {
	sink := e.sink()
	sink.Record(ctx, audit.Event{
		Kind:  audit.KindPaymentToAggregator,
		BidID: &res.BidID,
		Fields: map[string]interface{}{
			"aggregator": res.AggregatorID.String(),
			"amount":     res.Commission,
		},
	})
	sink.Record(ctx, audit.Event{
		Kind:  audit.KindPaymentToBatteryOwner,
		BidID: &res.BidID,
		Fields: map[string]interface{}{
			"battery_owner": res.BatteryOwnerID.String(),
			"amount":        res.Net,
		},
	})
	sink.Record(ctx, audit.Event{
		Kind:  audit.KindBatterySoCUpdated,
		BidID: &res.BidID,
		Fields: map[string]interface{}{
			"owner":   res.BatteryOwnerID.String(),
			"old_soc": res.OldSoc,
			"new_soc": res.NewSoc,
		},
	})
}

// Balance returns the accrued balance of an account (zero if none).
func (e *Engine) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var bal domain.Balance
	err := e.DB.WithContext(ctx).Where("account_id = ?", accountID).First(&bal).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

func sessionByID(ctx context.Context, e *Engine, sessionID uuid.UUID) (*domain.MarketSession, error) {
	var session domain.MarketSession
	if err := e.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func creditBalance(tx *gorm.DB, accountID uuid.UUID, amount int64) error {
	var bal domain.Balance
	err := tx.Where("account_id = ?", accountID).First(&bal).Error
	if err == gorm.ErrRecordNotFound {
		bal = domain.Balance{AccountID: accountID, Amount: amount}
		return tx.Create(&bal).Error
	}
	if err != nil {
		return err
	}
	bal.Amount += amount
	return tx.Save(&bal).Error
}

func batteryForOwner(tx *gorm.DB, ownerID uuid.UUID) (*domain.Battery, error) {
	var battery domain.Battery
	if err := tx.Where("owner_id = ?", ownerID).First(&battery).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, batteries.ErrBatteryNotFound
		}
		return nil, err
	}
	return &battery, nil
}
