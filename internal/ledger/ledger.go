// Package ledger provides durable account, order, trade and position
// bookkeeping backed by SQLite.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"papertrader/internal/types"
)

// Store defines the interface for ledger persistence. A fill is applied as
// one atomic unit covering the order row, the trade row, the cash ledger
// entry and the position update; either all four mutations commit or none.
type Store interface {
	// Account operations
	CreateAccount(ctx context.Context, name string, startingCash decimal.Decimal) (types.Account, error)
	GetOrCreateAccount(ctx context.Context, name string, startingCash decimal.Decimal) (types.Account, error)
	Account(ctx context.Context, id int64) (types.Account, error)
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, note string) error
	CashBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	Entries(ctx context.Context, accountID int64) ([]types.LedgerEntry, error)

	// Equity order operations
	ApplyFill(ctx context.Context, order types.Order, price decimal.Decimal) (int64, error)
	InsertOpenOrder(ctx context.Context, order types.Order) (int64, error)
	CancelOrder(ctx context.Context, orderID int64) error
	OpenOrders(ctx context.Context, accountID int64) ([]types.Order, error)
	Orders(ctx context.Context, accountID int64) ([]types.Order, error)
	Trades(ctx context.Context, accountID int64) ([]types.Trade, error)
	Position(ctx context.Context, accountID int64, symbol string) (*types.Position, error)
	Positions(ctx context.Context, accountID int64) ([]types.Position, error)

	// Option order operations
	ApplyOptionFill(ctx context.Context, order types.OptionOrder, price decimal.Decimal) (int64, error)
	OptionOrders(ctx context.Context, accountID int64) ([]types.OptionOrder, error)
	OptionTrades(ctx context.Context, accountID int64) ([]types.OptionTrade, error)
	OptionPosition(ctx context.Context, accountID int64, contract types.Contract) (*types.OptionPosition, error)
	OptionPositions(ctx context.Context, accountID int64) ([]types.OptionPosition, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Reset(ctx context.Context) error
	Close() error
}
