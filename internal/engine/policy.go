package engine

import (
	"github.com/shopspring/decimal"

	"papertrader/internal/types"
)

// FillPrice decides whether an order is executable against the quoted
// price and at what price it fills. It is a pure function of the order
// and the quote; stop-trigger state is re-derived on every evaluation
// rather than persisted.
//
// MARKET fills at the quote. LIMIT fills at the limit price when
// marketable (BUY: quote <= limit, SELL: quote >= limit). STOP fills at
// the quote once the stop level is crossed (BUY: quote >= stop, SELL:
// quote <= stop). STOP_LIMIT applies the LIMIT rule after the STOP
// trigger.
func FillPrice(order types.Order, quote decimal.Decimal) (decimal.Decimal, bool) {
	switch order.Type {
	case types.OrderTypeMarket:
		return quote, true
	case types.OrderTypeLimit:
		return limitFill(order, quote)
	case types.OrderTypeStop:
		if stopTriggered(order, quote) {
			return quote, true
		}
	case types.OrderTypeStopLimit:
		if stopTriggered(order, quote) {
			return limitFill(order, quote)
		}
	}
	return decimal.Zero, false
}

// limitFill reports whether the order is marketable at the quote. The
// fill price is the limit price, not the quote: price improvement is
// never passed through, matching the option engine's convention.
func limitFill(order types.Order, quote decimal.Decimal) (decimal.Decimal, bool) {
	if order.Side == types.SideBuy {
		if quote.LessThanOrEqual(order.LimitPrice) {
			return order.LimitPrice, true
		}
		return decimal.Zero, false
	}
	if quote.GreaterThanOrEqual(order.LimitPrice) {
		return order.LimitPrice, true
	}
	return decimal.Zero, false
}

func stopTriggered(order types.Order, quote decimal.Decimal) bool {
	if order.Side == types.SideBuy {
		return quote.GreaterThanOrEqual(order.StopPrice)
	}
	return quote.LessThanOrEqual(order.StopPrice)
}
