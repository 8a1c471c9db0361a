package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorder_RecordOrder(t *testing.T) {
	r := NewRecorder()

	r.RecordOrder("AAPL", "BUY", "filled")
	r.RecordOrder("AAPL", "SELL", "open")
	r.RecordOrder("MSFT", "BUY", "filled")
}

func TestRecorder_RecordOptionOrder(t *testing.T) {
	r := NewRecorder()

	r.RecordOptionOrder("AAPL", "BUY", "filled")
	r.RecordOptionOrder("SPY", "SELL", "filled")
}

func TestRecorder_RecordTrade(t *testing.T) {
	r := NewRecorder()

	r.RecordTrade("AAPL", "BUY")
	r.RecordTrade("AAPL250117C00150000", "SELL")
}

func TestRecorder_RecordReject(t *testing.T) {
	r := NewRecorder()

	r.RecordReject("validation")
	r.RecordReject("position_violation")
	r.RecordReject("limit_not_met")
}

func TestRecorder_RecordSweep(t *testing.T) {
	r := NewRecorder()

	r.RecordSweep(0, 5*time.Millisecond)
	r.RecordSweep(3, 12*time.Millisecond)
}

func TestRecorder_RecordQuote(t *testing.T) {
	r := NewRecorder()

	r.RecordQuoteError("AAPL")
	r.RecordQuoteLatency(80 * time.Millisecond)
}

func TestMetricsRegistered(t *testing.T) {
	// Registration happens via promauto at init; a duplicate registration
	// would have panicked before this test runs.
	metrics := []prometheus.Collector{
		OrdersTotal,
		OptionOrdersTotal,
		TradesTotal,
		OrderRejectsTotal,
		SweepsTotal,
		SweepFillsTotal,
		SweepDuration,
		QuoteErrorsTotal,
		QuoteLatency,
	}

	for _, m := range metrics {
		if m == nil {
			t.Error("nil metric collector")
		}
	}
}
