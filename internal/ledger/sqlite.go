package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/types"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite ledger store. Transactions are opened
// with an immediate write lock so that concurrent fills against the same
// database serialize instead of deadlocking on lock upgrade.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		starting_cash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT,
		timestamp DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger(account_id)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		client_order_id TEXT UNIQUE NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		qty TEXT NOT NULL,
		order_type TEXT NOT NULL,
		limit_price TEXT,
		stop_price TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		filled_qty TEXT NOT NULL DEFAULT '0',
		avg_fill_price TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_account_status ON orders(account_id, status)`,

	`CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id),
		symbol TEXT NOT NULL,
		qty TEXT NOT NULL,
		price TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_order ON trades(order_id)`,

	`CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		symbol TEXT NOT NULL,
		qty TEXT NOT NULL,
		avg_price TEXT NOT NULL,
		UNIQUE(account_id, symbol)
	)`,

	`CREATE TABLE IF NOT EXISTS option_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		client_order_id TEXT UNIQUE NOT NULL,
		symbol TEXT NOT NULL,
		expiry TEXT NOT NULL,
		right TEXT NOT NULL,
		strike TEXT NOT NULL,
		side TEXT NOT NULL,
		qty INTEGER NOT NULL,
		order_type TEXT NOT NULL,
		limit_price TEXT,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		filled_qty INTEGER NOT NULL DEFAULT 0,
		avg_fill_price TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_option_orders_account ON option_orders(account_id)`,

	`CREATE TABLE IF NOT EXISTS option_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES option_orders(id),
		symbol TEXT NOT NULL,
		expiry TEXT NOT NULL,
		right TEXT NOT NULL,
		strike TEXT NOT NULL,
		qty INTEGER NOT NULL,
		price TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS option_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		symbol TEXT NOT NULL,
		expiry TEXT NOT NULL,
		right TEXT NOT NULL,
		strike TEXT NOT NULL,
		qty INTEGER NOT NULL,
		avg_price TEXT NOT NULL,
		UNIQUE(account_id, symbol, expiry, right, strike)
	)`,
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Reset drops all tables and recreates the schema.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tables := []string{
		"option_positions", "option_trades", "option_orders",
		"positions", "trades", "orders", "ledger", "accounts",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return s.Migrate(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateAccount creates an account and records its starting cash as the
// initial deposit ledger entry, in one transaction.
func (s *SQLiteStore) CreateAccount(ctx context.Context, name string, startingCash decimal.Decimal) (types.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Account{}, fmt.Errorf("begin create account: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (name, starting_cash, created_at) VALUES (?, ?, ?)`,
		name, startingCash.String(), now)
	if err != nil {
		return types.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Account{}, fmt.Errorf("account id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger (account_id, kind, amount, note, timestamp) VALUES (?, ?, ?, ?, ?)`,
		id, types.EntryKindDeposit, startingCash.String(), "Initial cash", now)
	if err != nil {
		return types.Account{}, fmt.Errorf("insert initial deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Account{}, fmt.Errorf("commit create account: %w", err)
	}

	return types.Account{ID: id, Name: name, StartingCash: startingCash, CreatedAt: now}, nil
}

// GetOrCreateAccount returns the named account, creating it with the given
// starting cash if it does not exist.
func (s *SQLiteStore) GetOrCreateAccount(ctx context.Context, name string, startingCash decimal.Decimal) (types.Account, error) {
	account, err := s.accountByName(ctx, name)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, types.ErrAccountNotFound) {
		return types.Account{}, err
	}
	return s.CreateAccount(ctx, name, startingCash)
}

// Account returns the account with the given id.
func (s *SQLiteStore) Account(ctx context.Context, id int64) (types.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, starting_cash, created_at FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (s *SQLiteStore) accountByName(ctx context.Context, name string) (types.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, starting_cash, created_at FROM accounts WHERE name = ?`, name)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (types.Account, error) {
	var a types.Account
	var cash string
	err := row.Scan(&a.ID, &a.Name, &cash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Account{}, types.ErrAccountNotFound
	}
	if err != nil {
		return types.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.StartingCash, err = decimal.NewFromString(cash)
	if err != nil {
		return types.Account{}, fmt.Errorf("parse starting cash: %w", err)
	}
	return a, nil
}

// Deposit appends a manual cash movement to the ledger.
func (s *SQLiteStore) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, note string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger (account_id, kind, amount, note, timestamp) VALUES (?, ?, ?, ?, ?)`,
		accountID, types.EntryKindDeposit, amount.String(), note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// CashBalance returns the sum of all ledger entries for the account. The
// balance is always recomputed from the entries, never stored. Summation
// happens in decimal arithmetic to keep the balance exact.
func (s *SQLiteStore) CashBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount FROM ledger WHERE account_id = ?`, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount: %w", err)
		}
		balance = balance.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate ledger: %w", err)
	}
	return balance, nil
}

// Entries returns all ledger entries for the account, newest first.
func (s *SQLiteStore) Entries(ctx context.Context, accountID int64) ([]types.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, kind, amount, COALESCE(note, ''), timestamp
		 FROM ledger WHERE account_id = ? ORDER BY id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []types.LedgerEntry
	for rows.Next() {
		var e types.LedgerEntry
		var amount string
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Kind, &amount, &e.Note, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ApplyFill applies an equity fill as one atomic unit: order row to FILLED,
// trade row inserted, signed cash delta appended to the ledger, position
// updated by the weighted-average rule. If the resulting position would be
// negative the transaction rolls back and ErrPositionViolation is returned
// with no partial state written. A zero order ID inserts a new FILLED order;
// a non-zero ID transitions an existing OPEN order.
func (s *SQLiteStore) ApplyFill(ctx context.Context, order types.Order, price decimal.Decimal) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin fill: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	orderID := order.ID
	if orderID == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO orders (account_id, client_order_id, symbol, side, qty, order_type,
				limit_price, stop_price, status, created_at, filled_qty, avg_fill_price)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.AccountID, order.ClientOrderID, order.Symbol, order.Side.String(),
			order.Qty.String(), order.Type.String(),
			nullDecimal(order.LimitPrice), nullDecimal(order.StopPrice),
			types.OrderStatusFilled.String(), now, order.Qty.String(), price.String())
		if err != nil {
			return 0, fmt.Errorf("insert filled order: %w", err)
		}
		orderID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("order id: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, filled_qty = ?, avg_fill_price = ?
			 WHERE id = ? AND status = ?`,
			types.OrderStatusFilled.String(), order.Qty.String(), price.String(),
			orderID, types.OrderStatusOpen.String())
		if err != nil {
			return 0, fmt.Errorf("update order: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return 0, types.ErrOrderNotFound
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trades (order_id, symbol, qty, price, timestamp) VALUES (?, ?, ?, ?, ?)`,
		orderID, order.Symbol, order.Qty.String(), price.String(), now)
	if err != nil {
		return 0, fmt.Errorf("insert trade: %w", err)
	}

	notional := price.Mul(order.Qty)
	qtyDelta := order.Qty
	amount := notional.Neg()
	kind := types.EntryKindTradeBuy
	if order.Side == types.SideSell {
		qtyDelta = order.Qty.Neg()
		amount = notional
		kind = types.EntryKindTradeSell
	}
	note := fmt.Sprintf("%s %s %s @ %s", order.Side, order.Qty, order.Symbol, price.StringFixed(2))

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger (account_id, kind, amount, note, timestamp) VALUES (?, ?, ?, ?, ?)`,
		order.AccountID, kind, amount.String(), note, now)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := applyPositionDelta(ctx, tx, order.AccountID, order.Symbol, qtyDelta, price); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit fill: %w", err)
	}
	return orderID, nil
}

// applyPositionDelta updates the (account, symbol) position inside tx.
// Increasing deltas reprice the position to the quantity-weighted average;
// decreasing deltas leave the average untouched. A delta that would take the
// quantity negative returns ErrPositionViolation; a quantity of exactly zero
// deletes the row.
func applyPositionDelta(ctx context.Context, tx *sql.Tx, accountID int64, symbol string, delta, price decimal.Decimal) error {
	var id int64
	var qtyRaw, avgRaw string
	err := tx.QueryRowContext(ctx,
		`SELECT id, qty, avg_price FROM positions WHERE account_id = ? AND symbol = ?`,
		accountID, symbol).Scan(&id, &qtyRaw, &avgRaw)
	if errors.Is(err, sql.ErrNoRows) {
		if delta.Sign() < 0 {
			return types.ErrPositionViolation
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO positions (account_id, symbol, qty, avg_price) VALUES (?, ?, ?, ?)`,
			accountID, symbol, delta.String(), price.String())
		if err != nil {
			return fmt.Errorf("insert position: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("select position: %w", err)
	}

	qty, err := decimal.NewFromString(qtyRaw)
	if err != nil {
		return fmt.Errorf("parse position qty: %w", err)
	}
	avg, err := decimal.NewFromString(avgRaw)
	if err != nil {
		return fmt.Errorf("parse position avg: %w", err)
	}

	newQty := qty.Add(delta)
	if newQty.Sign() < 0 {
		return types.ErrPositionViolation
	}

	if newQty.IsZero() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete position: %w", err)
		}
		return nil
	}

	newAvg := avg
	if delta.Sign() > 0 {
		newAvg = qty.Mul(avg).Add(delta.Mul(price)).Div(newQty)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE positions SET qty = ?, avg_price = ? WHERE id = ?`,
		newQty.String(), newAvg.String(), id)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

// InsertOpenOrder persists an order as OPEN with zero filled quantity.
func (s *SQLiteStore) InsertOpenOrder(ctx context.Context, order types.Order) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (account_id, client_order_id, symbol, side, qty, order_type,
			limit_price, stop_price, status, created_at, filled_qty, avg_fill_price)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '0', NULL)`,
		order.AccountID, order.ClientOrderID, order.Symbol, order.Side.String(),
		order.Qty.String(), order.Type.String(),
		nullDecimal(order.LimitPrice), nullDecimal(order.StopPrice),
		types.OrderStatusOpen.String(), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert open order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}
	return id, nil
}

// CancelOrder marks an OPEN order CANCELLED. Cancelled orders are never
// revisited by the re-evaluation sweep.
func (s *SQLiteStore) CancelOrder(ctx context.Context, orderID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		types.OrderStatusCancelled.String(), orderID, types.OrderStatusOpen.String())
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return types.ErrOrderNotFound
	}
	return nil
}

const orderColumns = `id, account_id, client_order_id, symbol, side, qty, order_type,
	limit_price, stop_price, status, created_at, filled_qty, avg_fill_price`

// OpenOrders returns all OPEN equity orders for the account, oldest first.
func (s *SQLiteStore) OpenOrders(ctx context.Context, accountID int64) ([]types.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE account_id = ? AND status = ? ORDER BY id`,
		accountID, types.OrderStatusOpen.String())
}

// Orders returns all equity orders for the account, newest first.
func (s *SQLiteStore) Orders(ctx context.Context, accountID int64) ([]types.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE account_id = ? ORDER BY id DESC`, accountID)
}

func (s *SQLiteStore) queryOrders(ctx context.Context, query string, args ...any) ([]types.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []types.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(rows *sql.Rows) (types.Order, error) {
	var o types.Order
	var side, qty, orderType, status string
	var limitPrice, stopPrice, avgFill sql.NullString
	var filledQty string
	err := rows.Scan(&o.ID, &o.AccountID, &o.ClientOrderID, &o.Symbol, &side, &qty,
		&orderType, &limitPrice, &stopPrice, &status, &o.CreatedAt, &filledQty, &avgFill)
	if err != nil {
		return types.Order{}, fmt.Errorf("scan order: %w", err)
	}
	if o.Side, err = types.ParseSide(side); err != nil {
		return types.Order{}, err
	}
	if o.Type, err = types.ParseOrderType(orderType); err != nil {
		return types.Order{}, err
	}
	o.Status = parseStatus(status)
	if o.Qty, err = decimal.NewFromString(qty); err != nil {
		return types.Order{}, fmt.Errorf("parse qty: %w", err)
	}
	if o.FilledQty, err = decimal.NewFromString(filledQty); err != nil {
		return types.Order{}, fmt.Errorf("parse filled qty: %w", err)
	}
	if o.LimitPrice, err = parseNullDecimal(limitPrice); err != nil {
		return types.Order{}, err
	}
	if o.StopPrice, err = parseNullDecimal(stopPrice); err != nil {
		return types.Order{}, err
	}
	if o.AvgFillPrice, err = parseNullDecimal(avgFill); err != nil {
		return types.Order{}, err
	}
	return o, nil
}

// Trades returns all equity trades for the account, newest first.
func (s *SQLiteStore) Trades(ctx context.Context, accountID int64) ([]types.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.order_id, t.symbol, t.qty, t.price, t.timestamp
		 FROM trades t JOIN orders o ON o.id = t.order_id
		 WHERE o.account_id = ? ORDER BY t.id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var t types.Trade
		var qty, price string
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Symbol, &qty, &price, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		if t.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("parse trade qty: %w", err)
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse trade price: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Position returns the (account, symbol) position, or nil if none is held.
func (s *SQLiteStore) Position(ctx context.Context, accountID int64, symbol string) (*types.Position, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, symbol, qty, avg_price FROM positions
		 WHERE account_id = ? AND symbol = ?`, accountID, symbol)

	var p types.Position
	var qty, avg string
	err := row.Scan(&p.ID, &p.AccountID, &p.Symbol, &qty, &avg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan position: %w", err)
	}
	if p.Qty, err = decimal.NewFromString(qty); err != nil {
		return nil, fmt.Errorf("parse position qty: %w", err)
	}
	if p.AvgPrice, err = decimal.NewFromString(avg); err != nil {
		return nil, fmt.Errorf("parse position avg: %w", err)
	}
	return &p, nil
}

// Positions returns all equity positions for the account.
func (s *SQLiteStore) Positions(ctx context.Context, accountID int64) ([]types.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, symbol, qty, avg_price FROM positions
		 WHERE account_id = ? ORDER BY symbol`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var positions []types.Position
	for rows.Next() {
		var p types.Position
		var qty, avg string
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Symbol, &qty, &avg); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if p.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("parse position qty: %w", err)
		}
		if p.AvgPrice, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("parse position avg: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// ApplyOptionFill applies an option fill as one atomic unit, mirroring
// ApplyFill. Cash delta is price * qty * 100 per the contract multiplier,
// and the ledger note carries the OCC-style contract symbol.
func (s *SQLiteStore) ApplyOptionFill(ctx context.Context, order types.OptionOrder, price decimal.Decimal) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin option fill: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	c := order.Contract
	res, err := tx.ExecContext(ctx,
		`INSERT INTO option_orders (account_id, client_order_id, symbol, expiry, right, strike,
			side, qty, order_type, limit_price, status, created_at, filled_qty, avg_fill_price)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.AccountID, order.ClientOrderID, c.Symbol, c.Expiry, c.Right.String(), c.Strike.String(),
		order.Side.String(), order.Qty, order.Type.String(), nullDecimal(order.LimitPrice),
		types.OrderStatusFilled.String(), now, order.Qty, price.String())
	if err != nil {
		return 0, fmt.Errorf("insert option order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("option order id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO option_trades (order_id, symbol, expiry, right, strike, qty, price, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		orderID, c.Symbol, c.Expiry, c.Right.String(), c.Strike.String(), order.Qty, price.String(), now)
	if err != nil {
		return 0, fmt.Errorf("insert option trade: %w", err)
	}

	notional := price.Mul(decimal.NewFromInt(order.Qty)).Mul(types.ContractMultiplier)
	qtyDelta := order.Qty
	amount := notional.Neg()
	kind := types.EntryKindTradeBuy
	if order.Side == types.SideSell {
		qtyDelta = -order.Qty
		amount = notional
		kind = types.EntryKindTradeSell
	}
	note := fmt.Sprintf("OPT %s %d %s @ %s", order.Side, order.Qty, c.OCC(), price.StringFixed(2))

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger (account_id, kind, amount, note, timestamp) VALUES (?, ?, ?, ?, ?)`,
		order.AccountID, kind, amount.String(), note, now)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := applyOptionPositionDelta(ctx, tx, order.AccountID, c, qtyDelta, price); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit option fill: %w", err)
	}
	return orderID, nil
}

func applyOptionPositionDelta(ctx context.Context, tx *sql.Tx, accountID int64, c types.Contract, delta int64, price decimal.Decimal) error {
	var id, qty int64
	var avgRaw string
	err := tx.QueryRowContext(ctx,
		`SELECT id, qty, avg_price FROM option_positions
		 WHERE account_id = ? AND symbol = ? AND expiry = ? AND right = ? AND strike = ?`,
		accountID, c.Symbol, c.Expiry, c.Right.String(), c.Strike.String()).Scan(&id, &qty, &avgRaw)
	if errors.Is(err, sql.ErrNoRows) {
		if delta < 0 {
			return types.ErrPositionViolation
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO option_positions (account_id, symbol, expiry, right, strike, qty, avg_price)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			accountID, c.Symbol, c.Expiry, c.Right.String(), c.Strike.String(), delta, price.String())
		if err != nil {
			return fmt.Errorf("insert option position: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("select option position: %w", err)
	}

	avg, err := decimal.NewFromString(avgRaw)
	if err != nil {
		return fmt.Errorf("parse option position avg: %w", err)
	}

	newQty := qty + delta
	if newQty < 0 {
		return types.ErrPositionViolation
	}
	if newQty == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM option_positions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete option position: %w", err)
		}
		return nil
	}

	newAvg := avg
	if delta > 0 {
		held := decimal.NewFromInt(qty)
		added := decimal.NewFromInt(delta)
		newAvg = held.Mul(avg).Add(added.Mul(price)).Div(decimal.NewFromInt(newQty))
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE option_positions SET qty = ?, avg_price = ? WHERE id = ?`,
		newQty, newAvg.String(), id)
	if err != nil {
		return fmt.Errorf("update option position: %w", err)
	}
	return nil
}

// OptionOrders returns all option orders for the account, newest first.
func (s *SQLiteStore) OptionOrders(ctx context.Context, accountID int64) ([]types.OptionOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, client_order_id, symbol, expiry, right, strike, side, qty,
			order_type, limit_price, status, created_at, filled_qty, avg_fill_price
		 FROM option_orders WHERE account_id = ? ORDER BY id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query option orders: %w", err)
	}
	defer rows.Close()

	var orders []types.OptionOrder
	for rows.Next() {
		var o types.OptionOrder
		var right, strike, side, orderType, status string
		var limitPrice, avgFill sql.NullString
		err := rows.Scan(&o.ID, &o.AccountID, &o.ClientOrderID, &o.Contract.Symbol,
			&o.Contract.Expiry, &right, &strike, &side, &o.Qty, &orderType,
			&limitPrice, &status, &o.CreatedAt, &o.FilledQty, &avgFill)
		if err != nil {
			return nil, fmt.Errorf("scan option order: %w", err)
		}
		if o.Contract.Right, err = types.ParseRight(right); err != nil {
			return nil, err
		}
		if o.Contract.Strike, err = decimal.NewFromString(strike); err != nil {
			return nil, fmt.Errorf("parse strike: %w", err)
		}
		if o.Side, err = types.ParseSide(side); err != nil {
			return nil, err
		}
		if o.Type, err = types.ParseOrderType(orderType); err != nil {
			return nil, err
		}
		o.Status = parseStatus(status)
		if o.LimitPrice, err = parseNullDecimal(limitPrice); err != nil {
			return nil, err
		}
		if o.AvgFillPrice, err = parseNullDecimal(avgFill); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// OptionTrades returns all option trades for the account, newest first.
func (s *SQLiteStore) OptionTrades(ctx context.Context, accountID int64) ([]types.OptionTrade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.order_id, t.symbol, t.expiry, t.right, t.strike, t.qty, t.price, t.timestamp
		 FROM option_trades t JOIN option_orders o ON o.id = t.order_id
		 WHERE o.account_id = ? ORDER BY t.id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query option trades: %w", err)
	}
	defer rows.Close()

	var trades []types.OptionTrade
	for rows.Next() {
		var t types.OptionTrade
		var right, strike, price string
		err := rows.Scan(&t.ID, &t.OrderID, &t.Contract.Symbol, &t.Contract.Expiry,
			&right, &strike, &t.Qty, &price, &t.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan option trade: %w", err)
		}
		if t.Contract.Right, err = types.ParseRight(right); err != nil {
			return nil, err
		}
		if t.Contract.Strike, err = decimal.NewFromString(strike); err != nil {
			return nil, fmt.Errorf("parse strike: %w", err)
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse option trade price: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// OptionPosition returns the position for a contract, or nil if none is held.
func (s *SQLiteStore) OptionPosition(ctx context.Context, accountID int64, c types.Contract) (*types.OptionPosition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, symbol, expiry, right, strike, qty, avg_price
		 FROM option_positions
		 WHERE account_id = ? AND symbol = ? AND expiry = ? AND right = ? AND strike = ?`,
		accountID, c.Symbol, c.Expiry, c.Right.String(), c.Strike.String())

	p, err := scanOptionPositionRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OptionPositions returns all option positions for the account.
func (s *SQLiteStore) OptionPositions(ctx context.Context, accountID int64) ([]types.OptionPosition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, symbol, expiry, right, strike, qty, avg_price
		 FROM option_positions WHERE account_id = ? ORDER BY symbol, expiry, strike`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query option positions: %w", err)
	}
	defer rows.Close()

	var positions []types.OptionPosition
	for rows.Next() {
		p, err := scanOptionPositionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *p)
	}
	return positions, rows.Err()
}

func scanOptionPositionRow(scan func(...any) error) (*types.OptionPosition, error) {
	var p types.OptionPosition
	var right, strike, avg string
	err := scan(&p.ID, &p.AccountID, &p.Contract.Symbol, &p.Contract.Expiry,
		&right, &strike, &p.Qty, &avg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan option position: %w", err)
	}
	if p.Contract.Right, err = types.ParseRight(right); err != nil {
		return nil, err
	}
	if p.Contract.Strike, err = decimal.NewFromString(strike); err != nil {
		return nil, fmt.Errorf("parse strike: %w", err)
	}
	if p.AvgPrice, err = decimal.NewFromString(avg); err != nil {
		return nil, fmt.Errorf("parse option position avg: %w", err)
	}
	return &p, nil
}

func parseStatus(s string) types.OrderStatus {
	switch s {
	case "FILLED":
		return types.OrderStatusFilled
	case "CANCELLED":
		return types.OrderStatusCancelled
	default:
		return types.OrderStatusOpen
	}
}

// nullDecimal stores a zero decimal as NULL for optional price columns.
func nullDecimal(d decimal.Decimal) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func parseNullDecimal(ns sql.NullString) (decimal.Decimal, error) {
	if !ns.Valid {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal: %w", err)
	}
	return d, nil
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
