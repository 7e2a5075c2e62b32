package audit

import (
	"context"
)

// Event kinds emitted by the core. Observers only; no core logic depends on
// a recorder succeeding.
const (
	KindBidPlaced             = "bid_placed"
	KindBidSelected           = "bid_selected"
	KindPaymentToAggregator   = "payment_to_aggregator_recorded"
	KindPaymentToBatteryOwner = "payment_to_battery_owner_recorded"
	KindBatterySoCUpdated     = "battery_soc_updated"
)

// Event is one audit record. Fields holds the kind-specific payload
// (bid id, payee, amounts, old/new SoC).
type Event struct {
	Kind   string
	BidID  *int64
	Fields map[string]interface{}
}

// Recorder receives audit events.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Multi fans one event out to several recorders.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, ev Event) {
	for _, r := range m {
		r.Record(ctx, ev)
	}
}

// Discard ignores every event. Used where no sink is wired.
type Discard struct{}

func (Discard) Record(ctx context.Context, ev Event) {}
