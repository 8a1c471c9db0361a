package quote

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"papertrader/internal/types"
)

// Static is an in-memory quote provider for tests and offline use.
// Prices are keyed by symbol, option quotes by OCC contract symbol.
type Static struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
	chain  map[string]OptionQuote
}

// NewStatic creates an empty static provider.
func NewStatic() *Static {
	return &Static{
		prices: make(map[string]decimal.Decimal),
		chain:  make(map[string]OptionQuote),
	}
}

// SetPrice sets the price returned for a symbol.
func (s *Static) SetPrice(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

// RemovePrice removes a symbol so lookups fail with ErrNoData.
func (s *Static) RemovePrice(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prices, symbol)
}

// SetOptionQuote sets the quote returned for a contract.
func (s *Static) SetOptionQuote(contract types.Contract, q OptionQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain[contract.OCC()] = q
}

// LastPrice implements Provider.
func (s *Static) LastPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return price, nil
}

// OptionQuote implements Provider.
func (s *Static) OptionQuote(_ context.Context, contract types.Contract) (OptionQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.chain[contract.OCC()]
	if !ok {
		return OptionQuote{}, fmt.Errorf("%w: %s", types.ErrContractNotFound, contract.OCC())
	}
	return q, nil
}

// Ensure Static implements Provider.
var _ Provider = (*Static)(nil)
