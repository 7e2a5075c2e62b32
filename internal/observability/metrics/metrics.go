package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "gridreserve_"

	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	registerOnce sync.Once

	bidsPlaced   *prometheus.CounterVec
	bidsSelected *prometheus.CounterVec

	settlements       *prometheus.CounterVec
	settlementLatency prometheus.Histogram

	payoutTransfers *prometheus.CounterVec
)

// Init registers marketplace metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		bidsPlaced = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bids_placed_total",
				Help: "Total bid placements by result",
			},
			[]string{"result"},
		)
		bidsSelected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bids_selected_total",
				Help: "Total bid selections by result",
			},
			[]string{"result"},
		)
		settlements = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlements_total",
				Help: "Total settlement attempts by result",
			},
			[]string{"result"},
		)
		settlementLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_latency_seconds",
				Help:    "Settlement transaction latency",
				Buckets: prometheus.DefBuckets,
			},
		)
		payoutTransfers = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payout_transfers_total",
				Help: "Total payout transfer calls by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			bidsPlaced,
			bidsSelected,
			settlements,
			settlementLatency,
			payoutTransfers,
		)
	})
}

func IncBidPlaced(result string) {
	if bidsPlaced != nil {
		bidsPlaced.WithLabelValues(result).Inc()
	}
}

func IncBidSelected(result string) {
	if bidsSelected != nil {
		bidsSelected.WithLabelValues(result).Inc()
	}
}

func ObserveSettlement(result string, elapsed time.Duration) {
	if settlements != nil {
		settlements.WithLabelValues(result).Inc()
	}
	if settlementLatency != nil {
		settlementLatency.Observe(elapsed.Seconds())
	}
}

func IncPayoutTransfer(result string) {
	if payoutTransfers != nil {
		payoutTransfers.WithLabelValues(result).Inc()
	}
}
