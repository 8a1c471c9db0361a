// Package quote provides best-effort market quotes for equities and
// option contracts. Providers are stateless from the engine's point of
// view: no caching, no retries, no default prices.
package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"papertrader/internal/types"
)

// ErrNoData indicates the provider has no usable data for the request.
var ErrNoData = errors.New("no market data")

// OptionQuote is a best-effort quote for a single option contract.
type OptionQuote struct {
	Bid  decimal.Decimal
	Ask  decimal.Decimal
	Last decimal.Decimal
}

// Mid returns the reference price for the quote: the bid/ask midpoint when
// both sides are positive, else the last traded price. A non-positive
// result means the quote is unusable.
func (q OptionQuote) Mid() decimal.Decimal {
	if q.Bid.Sign() > 0 && q.Ask.Sign() > 0 {
		return q.Bid.Add(q.Ask).Div(decimal.NewFromInt(2))
	}
	return q.Last
}

// Provider defines the interface for quote lookup.
type Provider interface {
	// LastPrice returns the current best-effort price for a symbol.
	// Returns an error wrapping ErrNoData when no price is available.
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// OptionQuote returns the bid/ask/last for a contract. Returns an
	// error wrapping types.ErrContractNotFound when the contract is
	// absent from the chain, or ErrNoData when the chain itself is
	// unavailable.
	OptionQuote(ctx context.Context, contract types.Contract) (OptionQuote, error)
}
