// Package options implements the single-leg option order engine. Unlike
// equities there is no open-and-wait path: every option order either fills
// synchronously or is rejected outright.
package options

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrader/internal/ledger"
	"papertrader/internal/metrics"
	"papertrader/internal/quote"
	"papertrader/internal/types"
)

// OrderRequest is a single-leg option order submission. Qty is a contract
// count; only MARKET and LIMIT order types exist for options.
type OrderRequest struct {
	AccountID  int64
	Contract   types.Contract
	Side       types.Side
	Qty        int64
	Type       types.OrderType
	LimitPrice decimal.Decimal
}

// Engine validates and fills option orders.
type Engine struct {
	store    ledger.Store
	quotes   quote.Provider
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// New creates a new option order engine.
func New(store ledger.Store, quotes quote.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		quotes:   quotes,
		logger:   logger,
		recorder: metrics.NewRecorder(),
	}
}

func validate(req OrderRequest) error {
	if strings.TrimSpace(req.Contract.Symbol) == "" {
		return fmt.Errorf("%w: underlying symbol is required", types.ErrInvalidOrder)
	}
	if _, err := time.Parse("2006-01-02", req.Contract.Expiry); err != nil {
		return fmt.Errorf("%w: expiry must be YYYY-MM-DD", types.ErrInvalidOrder)
	}
	if req.Contract.Strike.Sign() <= 0 {
		return fmt.Errorf("%w: strike must be positive", types.ErrInvalidOrder)
	}
	if req.Qty <= 0 {
		return fmt.Errorf("%w: qty must be positive", types.ErrInvalidOrder)
	}
	switch req.Type {
	case types.OrderTypeMarket:
	case types.OrderTypeLimit:
		if req.LimitPrice.Sign() <= 0 {
			return fmt.Errorf("%w: LIMIT requires a positive limit price", types.ErrInvalidOrder)
		}
	default:
		return fmt.Errorf("%w: options support MARKET and LIMIT only", types.ErrInvalidOrder)
	}
	return nil
}

// PlaceOrder looks up the contract's quote, derives the mid reference
// price and fills the order: MARKET at mid, LIMIT at the limit price when
// marketable. Non-marketable LIMIT orders are rejected with ErrLimitNotMet;
// nothing is persisted on any rejection.
func (e *Engine) PlaceOrder(ctx context.Context, req OrderRequest) (int64, error) {
	if err := validate(req); err != nil {
		e.recorder.RecordReject("validation")
		return 0, err
	}

	contract := req.Contract
	contract.Symbol = strings.ToUpper(strings.TrimSpace(contract.Symbol))

	quoteStart := time.Now()
	q, err := e.quotes.OptionQuote(ctx, contract)
	e.recorder.RecordQuoteLatency(time.Since(quoteStart))
	if err != nil {
		e.recorder.RecordQuoteError(contract.Symbol)
		e.logger.Warn("option quote lookup failed", "contract", contract.OCC(), "err", err)
		return 0, err
	}

	mid := q.Mid()
	if mid.Sign() <= 0 {
		e.recorder.RecordQuoteError(contract.Symbol)
		return 0, fmt.Errorf("%w: %s", types.ErrNoQuote, contract.OCC())
	}

	fillPrice := mid
	if req.Type == types.OrderTypeLimit {
		if req.Side == types.SideBuy && mid.GreaterThan(req.LimitPrice) {
			e.recorder.RecordReject("limit_not_met")
			return 0, fmt.Errorf("%w: BUY mid %s > limit %s", types.ErrLimitNotMet, mid, req.LimitPrice)
		}
		if req.Side == types.SideSell && mid.LessThan(req.LimitPrice) {
			e.recorder.RecordReject("limit_not_met")
			return 0, fmt.Errorf("%w: SELL mid %s < limit %s", types.ErrLimitNotMet, mid, req.LimitPrice)
		}
		fillPrice = req.LimitPrice
	}

	order := types.OptionOrder{
		AccountID:     req.AccountID,
		ClientOrderID: uuid.New().String(),
		Contract:      contract,
		Side:          req.Side,
		Qty:           req.Qty,
		Type:          req.Type,
		LimitPrice:    req.LimitPrice,
		Status:        types.OrderStatusFilled,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := e.store.ApplyOptionFill(ctx, order, fillPrice)
	if err != nil {
		return 0, fmt.Errorf("apply option fill: %w", err)
	}

	e.recorder.RecordOptionOrder(contract.Symbol, req.Side.String(), "filled")
	e.recorder.RecordTrade(contract.OCC(), req.Side.String())
	e.logger.Info("option order filled",
		"order_id", id,
		"contract", contract.OCC(),
		"side", req.Side,
		"qty", req.Qty,
		"price", fillPrice,
	)
	return id, nil
}
