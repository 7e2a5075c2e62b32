package settlement

import (
	"context"

	"gridreserve-backend/internal/domain"
	"gridreserve-backend/internal/observability/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ValueTransferrer is the external value-transfer rail. The core only
// consumes the success/failure result; finality beyond that is the rail's
// business.
type ValueTransferrer interface {
	Transfer(ctx context.Context, to uuid.UUID, amount int64) error
}

// LogTransferrer stands in for the external rail in deployments without one:
// it records the transfer and reports success.
type LogTransferrer struct {
	Logger zerolog.Logger
}

func (l *LogTransferrer) Transfer(ctx context.Context, to uuid.UUID, amount int64) error {
	l.Logger.Info().Str("to", to.String()).Int64("amount", amount).Msg("value transfer")
	return nil
}

// PayoutResult reports one account's payout attempt.
type PayoutResult struct {
	AccountID uuid.UUID `json:"account_id"`
	Amount    int64     `json:"amount"`
	Paid      bool      `json:"paid"`
	Error     string    `json:"error,omitempty"`
}

// PayOut moves every non-zero balance through the transfer rail. The
// transfer call is a suspend point: the balance row is re-read afterwards
// and only the transferred amount is deducted, so settlements that credit
// the account meanwhile are preserved. A failed transfer leaves that
// account's balance intact.
func (e *Engine) PayOut(ctx context.Context, rail ValueTransferrer) ([]PayoutResult, error) {
	var balances []domain.Balance
	if err := e.DB.WithContext(ctx).Where("amount > 0").Find(&balances).Error; err != nil {
		return nil, err
	}

	results := make([]PayoutResult, 0, len(balances))
	for _, bal := range balances {
		out := PayoutResult{AccountID: bal.AccountID, Amount: bal.Amount}

		if err := rail.Transfer(ctx, bal.AccountID, bal.Amount); err != nil {
			metrics.IncPayoutTransfer(metrics.ResultError)
			out.Error = err.Error()
			results = append(results, out)
			continue
		}

		err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current domain.Balance
			if err := tx.Where("account_id = ?", bal.AccountID).First(&current).Error; err != nil {
				return err
			}
			current.Amount -= bal.Amount
			if current.Amount < 0 {
				current.Amount = 0
			}
			return tx.Save(&current).Error
		})
		if err != nil {
			metrics.IncPayoutTransfer(metrics.ResultError)
			out.Error = err.Error()
			results = append(results, out)
			continue
		}

		metrics.IncPayoutTransfer(metrics.ResultSuccess)
		out.Paid = true
		results = append(results, out)
	}
	return results, nil
}
