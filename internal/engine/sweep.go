package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/types"
)

// SweepResult summarizes one re-evaluation sweep.
type SweepResult struct {
	Evaluated int
	Filled    int
	Skipped   int
}

// ReEvaluateOpenOrders re-attempts fill of every OPEN equity order for the
// account against fresh quotes. Each symbol is quoted once per sweep and
// every order is evaluated against that single quote. A quote failure for
// one symbol skips its orders for this pass only and never aborts the
// others; per-order failures are collected and returned joined.
func (e *Engine) ReEvaluateOpenOrders(ctx context.Context, accountID int64) (SweepResult, error) {
	start := time.Now()

	orders, err := e.store.OpenOrders(ctx, accountID)
	if err != nil {
		return SweepResult{}, fmt.Errorf("load open orders: %w", err)
	}

	prices := make(map[string]decimal.Decimal)
	failed := make(map[string]bool)
	var errs []error
	var result SweepResult

	for _, order := range orders {
		result.Evaluated++

		if failed[order.Symbol] {
			result.Skipped++
			continue
		}
		price, ok := prices[order.Symbol]
		if !ok {
			price, err = e.quotes.LastPrice(ctx, order.Symbol)
			if err != nil {
				failed[order.Symbol] = true
				e.recorder.RecordQuoteError(order.Symbol)
				errs = append(errs, fmt.Errorf("quote %s: %w", order.Symbol, types.ErrQuoteUnavailable))
				result.Skipped++
				continue
			}
			prices[order.Symbol] = price
		}

		fillPrice, eligible := FillPrice(order, price)
		if !eligible {
			continue
		}

		if _, err := e.store.ApplyFill(ctx, order, fillPrice); err != nil {
			if errors.Is(err, types.ErrPositionViolation) {
				e.recorder.RecordReject("position_violation")
			}
			errs = append(errs, fmt.Errorf("fill order %d: %w", order.ID, err))
			continue
		}

		result.Filled++
		e.recorder.RecordTrade(order.Symbol, order.Side.String())
		e.logger.Info("open order filled by sweep",
			"order_id", order.ID,
			"symbol", order.Symbol,
			"side", order.Side,
			"type", order.Type,
			"qty", order.Qty,
			"price", fillPrice,
		)
	}

	e.recorder.RecordSweep(result.Filled, time.Since(start))
	e.logger.Info("sweep complete",
		"account_id", accountID,
		"evaluated", result.Evaluated,
		"filled", result.Filled,
		"skipped", result.Skipped,
	)
	return result, errors.Join(errs...)
}
