// Package engine implements the equity order engine: admission, fill
// determination and delegation to the ledger store.
package engine

import (
	"context"
	"errors"
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

// OrderRequest is a validated-on-entry equity order submission.
type OrderRequest struct {
	AccountID  int64
	Symbol     string
	Side       types.Side
	Qty        decimal.Decimal
	Type       types.OrderType
	LimitPrice decimal.Decimal
	StopPrice  decimal.Decimal
}

// Engine validates and attempts to fill equity orders.
type Engine struct {
	store    ledger.Store
	quotes   quote.Provider
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// New creates a new equity order engine.
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
	if strings.TrimSpace(req.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", types.ErrInvalidOrder)
	}
	if req.Qty.Sign() <= 0 {
		return fmt.Errorf("%w: qty must be positive", types.ErrInvalidOrder)
	}
	switch req.Type {
	case types.OrderTypeLimit, types.OrderTypeStopLimit:
		if req.LimitPrice.Sign() <= 0 {
			return fmt.Errorf("%w: %s requires a positive limit price", types.ErrInvalidOrder, req.Type)
		}
	}
	switch req.Type {
	case types.OrderTypeStop, types.OrderTypeStopLimit:
		if req.StopPrice.Sign() <= 0 {
			return fmt.Errorf("%w: %s requires a positive stop price", types.ErrInvalidOrder, req.Type)
		}
	}
	return nil
}

// PlaceOrder validates the request, fetches a quote and either fills the
// order immediately or persists it OPEN for a later sweep. The quote is
// fetched before any store transaction is opened. A SELL whose fill would
// exceed the held quantity is persisted OPEN and returned together with
// ErrPositionViolation.
func (e *Engine) PlaceOrder(ctx context.Context, req OrderRequest) (int64, error) {
	if err := validate(req); err != nil {
		e.recorder.RecordReject("validation")
		return 0, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	quoteStart := time.Now()
	price, err := e.quotes.LastPrice(ctx, symbol)
	e.recorder.RecordQuoteLatency(time.Since(quoteStart))
	if err != nil {
		e.recorder.RecordQuoteError(symbol)
		e.logger.Warn("quote lookup failed", "symbol", symbol, "err", err)
		return 0, fmt.Errorf("quote %s: %w", symbol, types.ErrQuoteUnavailable)
	}

	order := types.Order{
		AccountID:     req.AccountID,
		ClientOrderID: uuid.New().String(),
		Symbol:        symbol,
		Side:          req.Side,
		Qty:           req.Qty,
		Type:          req.Type,
		LimitPrice:    req.LimitPrice,
		StopPrice:     req.StopPrice,
		Status:        types.OrderStatusOpen,
		CreatedAt:     time.Now().UTC(),
	}

	fillPrice, ok := FillPrice(order, price)
	if !ok {
		id, err := e.store.InsertOpenOrder(ctx, order)
		if err != nil {
			return 0, fmt.Errorf("persist open order: %w", err)
		}
		e.recorder.RecordOrder(symbol, req.Side.String(), "open")
		e.logger.Info("order persisted open",
			"order_id", id,
			"symbol", symbol,
			"side", req.Side,
			"type", req.Type,
			"qty", req.Qty,
			"quote", price,
		)
		return id, nil
	}

	id, err := e.store.ApplyFill(ctx, order, fillPrice)
	if err != nil {
		if errors.Is(err, types.ErrPositionViolation) {
			e.recorder.RecordReject("position_violation")
			openID, insertErr := e.store.InsertOpenOrder(ctx, order)
			if insertErr != nil {
				return 0, fmt.Errorf("persist open order after rejected fill: %w", insertErr)
			}
			e.recorder.RecordOrder(symbol, req.Side.String(), "open")
			e.logger.Warn("fill rejected, order left open",
				"order_id", openID,
				"symbol", symbol,
				"side", req.Side,
				"qty", req.Qty,
			)
			return openID, err
		}
		return 0, fmt.Errorf("apply fill: %w", err)
	}

	e.recorder.RecordOrder(symbol, req.Side.String(), "filled")
	e.recorder.RecordTrade(symbol, req.Side.String())
	e.logger.Info("order filled",
		"order_id", id,
		"symbol", symbol,
		"side", req.Side,
		"type", req.Type,
		"qty", req.Qty,
		"price", fillPrice,
	)
	return id, nil
}
