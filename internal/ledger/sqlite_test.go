package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"papertrader/internal/types"
)

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "papertrader-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	store, err := NewSQLiteStore(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("create store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(path)
	}

	return store, cleanup
}

func newTestAccount(t *testing.T, store *SQLiteStore, startingCash int64) types.Account {
	t.Helper()
	account, err := store.CreateAccount(context.Background(), "default", decimal.NewFromInt(startingCash))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func marketOrder(accountID int64, symbol string, side types.Side, qty int64) types.Order {
	return types.Order{
		AccountID:     accountID,
		ClientOrderID: symbol + "-" + side.String() + "-" + decimal.NewFromInt(qty).String(),
		Symbol:        symbol,
		Side:          side,
		Qty:           decimal.NewFromInt(qty),
		Type:          types.OrderTypeMarket,
		Status:        types.OrderStatusOpen,
	}
}

func TestSQLiteStore_CreateAccount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if account.ID == 0 {
		t.Fatal("expected non-zero account id")
	}

	// Starting cash arrives as the initial deposit ledger entry.
	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100_000)) {
		t.Errorf("balance = %s, want 100000", balance)
	}

	entries, err := store.Entries(ctx, account.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Kind != types.EntryKindDeposit {
		t.Errorf("entry kind = %s, want deposit", entries[0].Kind)
	}
}

func TestSQLiteStore_GetOrCreateAccount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	first, err := store.GetOrCreateAccount(ctx, "default", decimal.NewFromInt(50_000))
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	second, err := store.GetOrCreateAccount(ctx, "default", decimal.NewFromInt(90_000))
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same account, got %d and %d", first.ID, second.ID)
	}
	if !second.StartingCash.Equal(decimal.NewFromInt(50_000)) {
		t.Errorf("starting cash = %s, want the original 50000", second.StartingCash)
	}
}

func TestSQLiteStore_Deposit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if err := store.Deposit(ctx, account.ID, decimal.NewFromInt(5_000), "top up"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := store.Deposit(ctx, account.ID, decimal.NewFromInt(-2_000), "withdrawal"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(103_000)) {
		t.Errorf("balance = %s, want 103000", balance)
	}

	entries, err := store.Entries(ctx, account.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}

func TestSQLiteStore_ApplyFill_Buy(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	order := marketOrder(account.ID, "AAPL", types.SideBuy, 10)
	price := decimal.NewFromInt(150)

	orderID, err := store.ApplyFill(ctx, order, price)
	if err != nil {
		t.Fatalf("apply fill: %v", err)
	}
	if orderID == 0 {
		t.Fatal("expected non-zero order id")
	}

	orders, err := store.Orders(ctx, account.ID)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	o := orders[0]
	if o.Status != types.OrderStatusFilled {
		t.Errorf("status = %s, want FILLED", o.Status)
	}
	if !o.FilledQty.Equal(order.Qty) {
		t.Errorf("filled qty = %s, want %s", o.FilledQty, order.Qty)
	}
	if !o.AvgFillPrice.Equal(price) {
		t.Errorf("avg fill price = %s, want %s", o.AvgFillPrice, price)
	}

	// Exactly one trade matching the order's fill.
	trades, err := store.Trades(ctx, account.ID)
	if err != nil {
		t.Fatalf("trades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	if trades[0].OrderID != orderID {
		t.Errorf("trade order id = %d, want %d", trades[0].OrderID, orderID)
	}
	if !trades[0].Qty.Equal(o.FilledQty) || !trades[0].Price.Equal(o.AvgFillPrice) {
		t.Errorf("trade %s@%s does not match order fill %s@%s",
			trades[0].Qty, trades[0].Price, o.FilledQty, o.AvgFillPrice)
	}

	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(98_500)) {
		t.Errorf("balance = %s, want 98500", balance)
	}

	pos, err := store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos == nil {
		t.Fatal("expected position")
	}
	if !pos.Qty.Equal(decimal.NewFromInt(10)) || !pos.AvgPrice.Equal(price) {
		t.Errorf("position %s@%s, want 10@150", pos.Qty, pos.AvgPrice)
	}
}

func TestSQLiteStore_WeightedAverage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if _, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideBuy, 10), decimal.NewFromInt(150)); err != nil {
		t.Fatalf("first fill: %v", err)
	}
	order2 := marketOrder(account.ID, "AAPL", types.SideBuy, 10)
	order2.ClientOrderID = "second"
	if _, err := store.ApplyFill(ctx, order2, decimal.NewFromInt(160)); err != nil {
		t.Fatalf("second fill: %v", err)
	}

	pos, err := store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos == nil {
		t.Fatal("expected position")
	}
	// (10*150 + 10*160) / 20 = 155
	if !pos.Qty.Equal(decimal.NewFromInt(20)) {
		t.Errorf("qty = %s, want 20", pos.Qty)
	}
	if !pos.AvgPrice.Equal(decimal.NewFromInt(155)) {
		t.Errorf("avg = %s, want 155", pos.AvgPrice)
	}
}

func TestSQLiteStore_SellKeepsAverage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if _, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideBuy, 10), decimal.NewFromInt(150)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideSell, 5), decimal.NewFromInt(160)); err != nil {
		t.Fatalf("sell: %v", err)
	}

	pos, err := store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos == nil {
		t.Fatal("expected position")
	}
	if !pos.Qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("qty = %s, want 5", pos.Qty)
	}
	// A decreasing fill never moves the average.
	if !pos.AvgPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("avg = %s, want 150", pos.AvgPrice)
	}

	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	// 100000 - 1500 + 800
	if !balance.Equal(decimal.NewFromInt(99_300)) {
		t.Errorf("balance = %s, want 99300", balance)
	}
}

func TestSQLiteStore_SellToZeroDeletesPosition(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if _, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideBuy, 10), decimal.NewFromInt(150)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideSell, 10), decimal.NewFromInt(160)); err != nil {
		t.Fatalf("sell: %v", err)
	}

	pos, err := store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos != nil {
		t.Fatalf("expected no position row, got %s@%s", pos.Qty, pos.AvgPrice)
	}

	// A fresh buy starts a fresh average at its own fill price.
	rebuy := marketOrder(account.ID, "AAPL", types.SideBuy, 5)
	rebuy.ClientOrderID = "rebuy"
	if _, err := store.ApplyFill(ctx, rebuy, decimal.NewFromInt(200)); err != nil {
		t.Fatalf("rebuy: %v", err)
	}
	pos, err = store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position after rebuy: %v", err)
	}
	if pos == nil {
		t.Fatal("expected position after rebuy")
	}
	if !pos.AvgPrice.Equal(decimal.NewFromInt(200)) {
		t.Errorf("avg = %s, want 200", pos.AvgPrice)
	}
}

func TestSQLiteStore_OversellRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if _, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideBuy, 10), decimal.NewFromInt(150)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	_, err := store.ApplyFill(ctx, marketOrder(account.ID, "AAPL", types.SideSell, 15), decimal.NewFromInt(160))
	if !errors.Is(err, types.ErrPositionViolation) {
		t.Fatalf("err = %v, want ErrPositionViolation", err)
	}

	// Nothing from the rejected fill may survive: not the order, not the
	// trade, not the cash movement, not the position change.
	orders, err := store.Orders(ctx, account.ID)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("orders = %d, want 1", len(orders))
	}
	trades, err := store.Trades(ctx, account.ID)
	if err != nil {
		t.Fatalf("trades: %v", err)
	}
	if len(trades) != 1 {
		t.Errorf("trades = %d, want 1", len(trades))
	}
	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(98_500)) {
		t.Errorf("balance = %s, want 98500", balance)
	}
	pos, err := store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos == nil || !pos.Qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("position changed by rejected fill: %+v", pos)
	}
}

func TestSQLiteStore_SellWithoutPosition(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	_, err := store.ApplyFill(ctx, marketOrder(account.ID, "TSLA", types.SideSell, 1), decimal.NewFromInt(200))
	if !errors.Is(err, types.ErrPositionViolation) {
		t.Fatalf("err = %v, want ErrPositionViolation", err)
	}
}

func TestSQLiteStore_OpenOrderLifecycle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	order := types.Order{
		AccountID:     account.ID,
		ClientOrderID: "open-1",
		Symbol:        "AAPL",
		Side:          types.SideBuy,
		Qty:           decimal.NewFromInt(10),
		Type:          types.OrderTypeLimit,
		LimitPrice:    decimal.NewFromInt(140),
	}
	id, err := store.InsertOpenOrder(ctx, order)
	if err != nil {
		t.Fatalf("insert open order: %v", err)
	}

	open, err := store.OpenOrders(ctx, account.ID)
	if err != nil {
		t.Fatalf("open orders: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open orders = %d, want 1", len(open))
	}
	if !open[0].FilledQty.IsZero() {
		t.Errorf("open order filled qty = %s, want 0", open[0].FilledQty)
	}
	if !open[0].LimitPrice.Equal(decimal.NewFromInt(140)) {
		t.Errorf("limit price = %s, want 140", open[0].LimitPrice)
	}

	// Sweep-style transition: fill the existing OPEN row.
	open[0].Status = types.OrderStatusOpen
	gotID, err := store.ApplyFill(ctx, open[0], decimal.NewFromInt(140))
	if err != nil {
		t.Fatalf("apply fill: %v", err)
	}
	if gotID != id {
		t.Errorf("fill returned order %d, want %d", gotID, id)
	}

	// A second fill attempt on the same order must fail.
	if _, err := store.ApplyFill(ctx, open[0], decimal.NewFromInt(140)); !errors.Is(err, types.ErrOrderNotFound) {
		t.Errorf("refill err = %v, want ErrOrderNotFound", err)
	}

	remaining, err := store.OpenOrders(ctx, account.ID)
	if err != nil {
		t.Fatalf("open orders: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("open orders after fill = %d, want 0", len(remaining))
	}
}

func TestSQLiteStore_CancelOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	order := types.Order{
		AccountID:     account.ID,
		ClientOrderID: "cancel-1",
		Symbol:        "AAPL",
		Side:          types.SideBuy,
		Qty:           decimal.NewFromInt(10),
		Type:          types.OrderTypeLimit,
		LimitPrice:    decimal.NewFromInt(140),
	}
	id, err := store.InsertOpenOrder(ctx, order)
	if err != nil {
		t.Fatalf("insert open order: %v", err)
	}

	if err := store.CancelOrder(ctx, id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := store.CancelOrder(ctx, id); !errors.Is(err, types.ErrOrderNotFound) {
		t.Errorf("second cancel err = %v, want ErrOrderNotFound", err)
	}

	open, err := store.OpenOrders(ctx, account.ID)
	if err != nil {
		t.Fatalf("open orders: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("cancelled order still open")
	}
}

func optionOrder(accountID int64, side types.Side, qty int64) types.OptionOrder {
	return types.OptionOrder{
		AccountID:     accountID,
		ClientOrderID: "opt-" + side.String() + "-" + decimal.NewFromInt(qty).String(),
		Contract: types.Contract{
			Symbol: "AAPL",
			Expiry: "2026-09-18",
			Right:  types.RightCall,
			Strike: decimal.NewFromInt(150),
		},
		Side:   side,
		Qty:    qty,
		Type:   types.OrderTypeMarket,
		Status: types.OrderStatusFilled,
	}
}

func TestSQLiteStore_ApplyOptionFill(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	price := decimal.RequireFromString("2.50")
	if _, err := store.ApplyOptionFill(ctx, optionOrder(account.ID, types.SideBuy, 2), price); err != nil {
		t.Fatalf("option fill: %v", err)
	}

	// Notional is premium * contracts * 100.
	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(99_500)) {
		t.Errorf("balance = %s, want 99500", balance)
	}

	pos, err := store.OptionPosition(ctx, account.ID, optionOrder(account.ID, types.SideBuy, 2).Contract)
	if err != nil {
		t.Fatalf("option position: %v", err)
	}
	if pos == nil {
		t.Fatal("expected option position")
	}
	if pos.Qty != 2 || !pos.AvgPrice.Equal(price) {
		t.Errorf("position %d@%s, want 2@2.5", pos.Qty, pos.AvgPrice)
	}

	// Selling every contract removes the row.
	if _, err := store.ApplyOptionFill(ctx, optionOrder(account.ID, types.SideSell, 2), decimal.NewFromInt(3)); err != nil {
		t.Fatalf("option sell: %v", err)
	}
	pos, err = store.OptionPosition(ctx, account.ID, optionOrder(account.ID, types.SideSell, 2).Contract)
	if err != nil {
		t.Fatalf("option position: %v", err)
	}
	if pos != nil {
		t.Errorf("expected no option position, got %d@%s", pos.Qty, pos.AvgPrice)
	}

	balance, err = store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	// 100000 - 500 + 600
	if !balance.Equal(decimal.NewFromInt(100_100)) {
		t.Errorf("balance = %s, want 100100", balance)
	}
}

func TestSQLiteStore_OptionOversellRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if _, err := store.ApplyOptionFill(ctx, optionOrder(account.ID, types.SideBuy, 1), decimal.NewFromInt(2)); err != nil {
		t.Fatalf("option buy: %v", err)
	}
	_, err := store.ApplyOptionFill(ctx, optionOrder(account.ID, types.SideSell, 3), decimal.NewFromInt(2))
	if !errors.Is(err, types.ErrPositionViolation) {
		t.Fatalf("err = %v, want ErrPositionViolation", err)
	}

	orders, err := store.OptionOrders(ctx, account.ID)
	if err != nil {
		t.Fatalf("option orders: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("option orders = %d, want 1", len(orders))
	}
	trades, err := store.OptionTrades(ctx, account.ID)
	if err != nil {
		t.Fatalf("option trades: %v", err)
	}
	if len(trades) != 1 {
		t.Errorf("option trades = %d, want 1", len(trades))
	}
	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(99_800)) {
		t.Errorf("balance = %s, want 99800", balance)
	}
}

// Two fills racing on the same account must serialize: exactly one SELL
// of the full position can succeed, the loser sees ErrPositionViolation
// and writes nothing.
func TestSQLiteStore_ConcurrentOversell(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	buy := marketOrder(account.ID, "AAPL", types.SideBuy, 10)
	if _, err := store.ApplyFill(ctx, buy, decimal.NewFromInt(150)); err != nil {
		t.Fatalf("buy: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		sell := marketOrder(account.ID, "AAPL", types.SideSell, 10)
		sell.ClientOrderID = fmt.Sprintf("race-sell-%d", i)
		wg.Add(1)
		go func(order types.Order) {
			defer wg.Done()
			_, err := store.ApplyFill(ctx, order, decimal.NewFromInt(160))
			results <- err
		}(sell)
	}
	wg.Wait()
	close(results)

	var succeeded, violated int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, types.ErrPositionViolation):
			violated++
		default:
			t.Fatalf("unexpected fill error: %v", err)
		}
	}
	if succeeded != 1 || violated != 1 {
		t.Fatalf("succeeded = %d, violated = %d, want exactly one of each", succeeded, violated)
	}

	// The winner emptied the position; the loser wrote nothing.
	pos, err := store.Position(ctx, account.ID, "AAPL")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos != nil {
		t.Errorf("position = %+v, want row deleted", pos)
	}

	trades, err := store.Trades(ctx, account.ID)
	if err != nil {
		t.Fatalf("trades: %v", err)
	}
	if len(trades) != 2 {
		t.Errorf("trades = %d, want 2 (buy + one sell)", len(trades))
	}

	// 100000 - 10*150 + 10*160
	balance, err := store.CashBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cash balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100_100)) {
		t.Errorf("balance = %s, want 100100", balance)
	}
}

func TestSQLiteStore_CashConservation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	fills := []struct {
		side  types.Side
		qty   int64
		price string
	}{
		{types.SideBuy, 10, "150.25"},
		{types.SideBuy, 7, "149.10"},
		{types.SideSell, 12, "151.33"},
		{types.SideBuy, 3, "148.00"},
		{types.SideSell, 8, "152.75"},
	}

	expected := decimal.NewFromInt(100_000)
	for i, f := range fills {
		order := marketOrder(account.ID, "AAPL", f.side, f.qty)
		order.ClientOrderID = order.ClientOrderID + "-" + decimal.NewFromInt(int64(i)).String()
		price := decimal.RequireFromString(f.price)
		if _, err := store.ApplyFill(ctx, order, price); err != nil {
			t.Fatalf("fill %d: %v", i, err)
		}
		notional := price.Mul(decimal.NewFromInt(f.qty))
		if f.side == types.SideBuy {
			expected = expected.Sub(notional)
		} else {
			expected = expected.Add(notional)
		}

		balance, err := store.CashBalance(ctx, account.ID)
		if err != nil {
			t.Fatalf("cash balance after fill %d: %v", i, err)
		}
		if !balance.Equal(expected) {
			t.Fatalf("balance after fill %d = %s, want %s", i, balance, expected)
		}

		pos, err := store.Position(ctx, account.ID, "AAPL")
		if err != nil {
			t.Fatalf("position after fill %d: %v", i, err)
		}
		if pos != nil && pos.Qty.Sign() < 0 {
			t.Fatalf("negative position after fill %d: %s", i, pos.Qty)
		}
	}
}

func TestSQLiteStore_Reset(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	account := newTestAccount(t, store, 100_000)

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := store.Account(ctx, account.ID); !errors.Is(err, types.ErrAccountNotFound) {
		t.Errorf("account survived reset: %v", err)
	}
}
