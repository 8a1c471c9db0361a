package metrics

import "time"

// Recorder provides methods for recording metrics.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordOrder records an equity order and its resulting status.
func (r *Recorder) RecordOrder(symbol, side, status string) {
	OrdersTotal.WithLabelValues(symbol, side, status).Inc()
}

// RecordOptionOrder records an option order and its resulting status.
func (r *Recorder) RecordOptionOrder(symbol, side, status string) {
	OptionOrdersTotal.WithLabelValues(symbol, side, status).Inc()
}

// RecordTrade records a fill.
func (r *Recorder) RecordTrade(symbol, side string) {
	TradesTotal.WithLabelValues(symbol, side).Inc()
}

// RecordReject records a rejected order.
func (r *Recorder) RecordReject(reason string) {
	OrderRejectsTotal.WithLabelValues(reason).Inc()
}

// RecordSweep records a completed sweep with its fill count and duration.
func (r *Recorder) RecordSweep(fills int, duration time.Duration) {
	SweepsTotal.Inc()
	SweepFillsTotal.Add(float64(fills))
	SweepDuration.Observe(duration.Seconds())
}

// RecordQuoteError records a failed quote lookup.
func (r *Recorder) RecordQuoteError(symbol string) {
	QuoteErrorsTotal.WithLabelValues(symbol).Inc()
}

// RecordQuoteLatency records quote lookup latency.
func (r *Recorder) RecordQuoteLatency(duration time.Duration) {
	QuoteLatency.Observe(duration.Seconds())
}
