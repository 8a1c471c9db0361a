// Package types defines shared types used across the paper trading system.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the direction of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return "SELL"
	default:
		return "BUY"
	}
}

// ParseSide parses a side string (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return SideBuy, fmt.Errorf("unknown side %q", s)
	}
}

// OrderType represents how an order is priced and triggered.
type OrderType int

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	default:
		return "MARKET"
	}
}

// ParseOrderType parses an order type string (case-insensitive).
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MARKET":
		return OrderTypeMarket, nil
	case "LIMIT":
		return OrderTypeLimit, nil
	case "STOP":
		return OrderTypeStop, nil
	case "STOP_LIMIT":
		return OrderTypeStopLimit, nil
	default:
		return OrderTypeMarket, fmt.Errorf("unknown order type %q", s)
	}
}

// OrderStatus represents the state of an order.
type OrderStatus int

const (
	OrderStatusOpen OrderStatus = iota
	OrderStatusFilled
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusFilled:
		return "FILLED"
	case OrderStatusCancelled:
		return "CANCELLED"
	default:
		return "OPEN"
	}
}

// Right represents an option right.
type Right int

const (
	RightCall Right = iota
	RightPut
)

func (r Right) String() string {
	if r == RightPut {
		return "P"
	}
	return "C"
}

// ParseRight parses an option right ("C"/"CALL" or "P"/"PUT").
func ParseRight(s string) (Right, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CALL":
		return RightCall, nil
	case "P", "PUT":
		return RightPut, nil
	default:
		return RightCall, fmt.Errorf("unknown option right %q", s)
	}
}

// Ledger entry kinds.
const (
	EntryKindDeposit   = "deposit"
	EntryKindTradeBuy  = "trade_buy"
	EntryKindTradeSell = "trade_sell"
)

// Account represents a trading account. Immutable after creation; all
// cash movement happens through ledger entries.
type Account struct {
	ID           int64
	Name         string
	StartingCash decimal.Decimal
	CreatedAt    time.Time
}

// LedgerEntry is a single signed cash movement. Append-only: the cash
// balance of an account is the sum of its entries, never stored.
type LedgerEntry struct {
	ID        int64
	AccountID int64
	Kind      string
	Amount    decimal.Decimal
	Note      string
	Timestamp time.Time
}

// Order is an equity order. Orders fill in full or not at all.
type Order struct {
	ID            int64
	AccountID     int64
	ClientOrderID string
	Symbol        string
	Side          Side
	Qty           decimal.Decimal
	Type          OrderType
	LimitPrice    decimal.Decimal
	StopPrice     decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
	FilledQty     decimal.Decimal
	AvgFillPrice  decimal.Decimal
}

// Trade is an immutable equity fill record. One trade per filled order.
type Trade struct {
	ID        int64
	OrderID   int64
	Symbol    string
	Qty       decimal.Decimal
	Price     decimal.Decimal
	Timestamp time.Time
}

// Position is an equity holding, unique per (account, symbol). Quantity
// is never negative; the row is deleted when quantity returns to zero.
type Position struct {
	ID        int64
	AccountID int64
	Symbol    string
	Qty       decimal.Decimal
	AvgPrice  decimal.Decimal
}

// Contract identifies a single-leg option contract.
type Contract struct {
	Symbol string // underlying
	Expiry string // YYYY-MM-DD
	Right  Right
	Strike decimal.Decimal
}

// OCC renders the contract as a canonical OCC-style symbol:
// UPPER(symbol) + YYMMDD + right + strike*1000 zero-padded to 8 digits.
// Used for display and ledger notes only, never as a storage key.
func (c Contract) OCC() string {
	date := strings.ReplaceAll(c.Expiry, "-", "")
	if len(date) == 8 {
		date = date[2:]
	}
	strike := c.Strike.Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
	return fmt.Sprintf("%s%s%s%08d", strings.ToUpper(c.Symbol), date, c.Right, strike)
}

// OptionOrder is a single-leg option order. Quantity is a contract count.
type OptionOrder struct {
	ID            int64
	AccountID     int64
	ClientOrderID string
	Contract      Contract
	Side          Side
	Qty           int64
	Type          OrderType
	LimitPrice    decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
	FilledQty     int64
	AvgFillPrice  decimal.Decimal
}

// OptionTrade is an immutable option fill record. Price is the premium
// per contract; cash impact is price * qty * 100.
type OptionTrade struct {
	ID        int64
	OrderID   int64
	Contract  Contract
	Qty       int64
	Price     decimal.Decimal
	Timestamp time.Time
}

// OptionPosition is an option holding, unique per
// (account, symbol, expiry, right, strike).
type OptionPosition struct {
	ID        int64
	AccountID int64
	Contract  Contract
	Qty       int64
	AvgPrice  decimal.Decimal
}

// ContractMultiplier is the equity option multiplier applied to premium
// when computing notional cash value.
var ContractMultiplier = decimal.NewFromInt(100)
