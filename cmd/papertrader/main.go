// Package main is the entry point for the paper trading CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"papertrader/internal/config"
	"papertrader/internal/engine"
	"papertrader/internal/ledger"
	"papertrader/internal/metrics"
	"papertrader/internal/options"
	"papertrader/internal/quote"
	"papertrader/internal/types"
)

// Version information (set by build flags).
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	case "init":
		cmdInit(os.Args[2:])
	case "buy":
		cmdOrder(os.Args[2:], types.SideBuy)
	case "sell":
		cmdOrder(os.Args[2:], types.SideSell)
	case "option":
		cmdOption(os.Args[2:])
	case "sweep":
		cmdSweep(os.Args[2:])
	case "deposit":
		cmdDeposit(os.Args[2:])
	case "cancel":
		cmdCancel(os.Args[2:])
	case "balance":
		cmdBalance(os.Args[2:])
	case "positions":
		cmdPositions(os.Args[2:])
	case "orders":
		cmdOrders(os.Args[2:])
	case "ledger":
		cmdLedger(os.Args[2:])
	case "reset":
		cmdReset(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Paper Trader - Simulated Equity & Option Trading

Usage:
  papertrader <command> [options]

Commands:
  init       Create the database and the default account
  buy        Place an equity BUY order
  sell       Place an equity SELL order
  option     Place a single-leg option order
  sweep      Re-evaluate all OPEN equity orders against fresh quotes
  deposit    Add or withdraw cash (negative amount withdraws)
  cancel     Cancel an OPEN equity order
  balance    Show the account cash balance
  positions  Show equity and option positions
  orders     Show equity and option orders
  ledger     Show the cash ledger
  reset      Drop and recreate all tables
  serve      Run the metrics/health HTTP server
  version    Show version information
  help       Show this help message

Examples:
  papertrader buy --symbol AAPL --qty 10
  papertrader buy --symbol AAPL --qty 10 --type LIMIT --limit 140
  papertrader option --symbol AAPL --expiry 2026-09-18 --right C --strike 150 --side BUY --qty 1
  papertrader sweep

Use "papertrader <command> --help" for more information about a command.`)
}

func cmdVersion() {
	fmt.Printf("papertrader version %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

// app bundles the wired components behind every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *ledger.SQLiteStore
	quotes  quote.Provider
	account types.Account
}

func setup(configPath string) (*app, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	store, err := ledger.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	var quotes quote.Provider
	switch cfg.Quote.Provider {
	case "static":
		quotes = quote.NewStatic()
	default:
		quotes = quote.NewYahoo(quote.YahooConfig{
			BaseURL:           cfg.Quote.BaseURL,
			RequestsPerSecond: cfg.Quote.RequestsPerSecond,
			Timeout:           time.Duration(cfg.Quote.TimeoutSec) * time.Second,
		}, logger)
	}

	account, err := store.GetOrCreateAccount(context.Background(),
		cfg.Account.Name, decimal.NewFromFloat(cfg.Account.StartingCash))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("get or create account: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store, quotes: quotes, account: account}, nil
}

func (a *app) close() {
	_ = a.store.Close()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	balance, err := a.store.CashBalance(context.Background(), a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Account %q (#%d) ready, cash balance $%s\n", a.account.Name, a.account.ID, balance.StringFixed(2))
}

func cmdOrder(args []string, side types.Side) {
	name := "buy"
	if side == types.SideSell {
		name = "sell"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	symbol := fs.String("symbol", "", "equity symbol")
	qty := fs.String("qty", "", "quantity")
	orderType := fs.String("type", "MARKET", "order type: MARKET, LIMIT, STOP, STOP_LIMIT")
	limitPrice := fs.String("limit", "", "limit price (LIMIT, STOP_LIMIT)")
	stopPrice := fs.String("stop", "", "stop price (STOP, STOP_LIMIT)")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	req := engine.OrderRequest{AccountID: a.account.ID, Symbol: *symbol, Side: side}
	if req.Qty, err = parseDecimal(*qty, "qty"); err != nil {
		fatal(err)
	}
	if req.Type, err = types.ParseOrderType(*orderType); err != nil {
		fatal(err)
	}
	if *limitPrice != "" {
		if req.LimitPrice, err = parseDecimal(*limitPrice, "limit"); err != nil {
			fatal(err)
		}
	}
	if *stopPrice != "" {
		if req.StopPrice, err = parseDecimal(*stopPrice, "stop"); err != nil {
			fatal(err)
		}
	}

	eng := engine.New(a.store, a.quotes, a.logger)
	id, err := eng.PlaceOrder(context.Background(), req)
	if err != nil {
		if errors.Is(err, types.ErrPositionViolation) {
			fmt.Fprintf(os.Stderr, "Order #%d left open: %v\n", id, err)
			os.Exit(1)
		}
		fatal(err)
	}
	fmt.Printf("Order #%d submitted\n", id)
}

func cmdOption(args []string) {
	fs := flag.NewFlagSet("option", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	symbol := fs.String("symbol", "", "underlying symbol")
	expiry := fs.String("expiry", "", "expiry (YYYY-MM-DD)")
	right := fs.String("right", "C", "option right: C or P")
	strike := fs.String("strike", "", "strike price")
	side := fs.String("side", "BUY", "side: BUY or SELL")
	qty := fs.Int64("qty", 1, "contract count")
	orderType := fs.String("type", "MARKET", "order type: MARKET or LIMIT")
	limitPrice := fs.String("limit", "", "limit price (premium per contract)")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	req := options.OrderRequest{AccountID: a.account.ID, Qty: *qty}
	req.Contract.Symbol = *symbol
	req.Contract.Expiry = *expiry
	if req.Contract.Right, err = types.ParseRight(*right); err != nil {
		fatal(err)
	}
	if req.Contract.Strike, err = parseDecimal(*strike, "strike"); err != nil {
		fatal(err)
	}
	if req.Side, err = types.ParseSide(*side); err != nil {
		fatal(err)
	}
	if req.Type, err = types.ParseOrderType(*orderType); err != nil {
		fatal(err)
	}
	if *limitPrice != "" {
		if req.LimitPrice, err = parseDecimal(*limitPrice, "limit"); err != nil {
			fatal(err)
		}
	}

	eng := options.New(a.store, a.quotes, a.logger)
	id, err := eng.PlaceOrder(context.Background(), req)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Option order #%d filled\n", id)
}

func cmdSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	eng := engine.New(a.store, a.quotes, a.logger)
	result, err := eng.ReEvaluateOpenOrders(context.Background(), a.account.ID)
	fmt.Printf("Sweep: %d evaluated, %d filled, %d skipped\n", result.Evaluated, result.Filled, result.Skipped)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep errors:\n%v\n", err)
		os.Exit(1)
	}
}

func cmdDeposit(args []string) {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	amount := fs.String("amount", "", "cash amount (negative withdraws)")
	note := fs.String("note", "Manual deposit", "ledger note")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	amt, err := parseDecimal(*amount, "amount")
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	if err := a.store.Deposit(ctx, a.account.ID, amt, *note); err != nil {
		fatal(err)
	}
	balance, err := a.store.CashBalance(ctx, a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Ledger updated, cash balance $%s\n", balance.StringFixed(2))
}

func cmdCancel(args []string) {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	id := fs.Int64("id", 0, "order id")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	if err := a.store.CancelOrder(context.Background(), *id); err != nil {
		fatal(err)
	}
	fmt.Printf("Order #%d cancelled\n", *id)
}

func cmdBalance(args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	balance, err := a.store.CashBalance(context.Background(), a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Cash balance: $%s\n", balance.StringFixed(2))
}

func cmdPositions(args []string) {
	fs := flag.NewFlagSet("positions", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	ctx := context.Background()
	positions, err := a.store.Positions(ctx, a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Println("Equity positions:")
	if len(positions) == 0 {
		fmt.Println("  (none)")
	}
	for _, p := range positions {
		fmt.Printf("  %-8s qty %-10s avg $%s\n", p.Symbol, p.Qty, p.AvgPrice.StringFixed(2))
	}

	optPositions, err := a.store.OptionPositions(ctx, a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Println("Option positions:")
	if len(optPositions) == 0 {
		fmt.Println("  (none)")
	}
	for _, p := range optPositions {
		fmt.Printf("  %-24s qty %-6d avg $%s\n", p.Contract.OCC(), p.Qty, p.AvgPrice.StringFixed(2))
	}
}

func cmdOrders(args []string) {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	ctx := context.Background()
	orders, err := a.store.Orders(ctx, a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Println("Equity orders:")
	if len(orders) == 0 {
		fmt.Println("  (none)")
	}
	for _, o := range orders {
		line := fmt.Sprintf("  #%-5d %-4s %-10s %-8s %-10s %s", o.ID, o.Side, o.Qty, o.Symbol, o.Type, o.Status)
		if o.Status == types.OrderStatusFilled {
			line += fmt.Sprintf(" @ $%s", o.AvgFillPrice.StringFixed(2))
		}
		fmt.Println(line)
	}

	optOrders, err := a.store.OptionOrders(ctx, a.account.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Println("Option orders:")
	if len(optOrders) == 0 {
		fmt.Println("  (none)")
	}
	for _, o := range optOrders {
		fmt.Printf("  #%-5d %-4s %-6d %-24s %-8s %s @ $%s\n",
			o.ID, o.Side, o.Qty, o.Contract.OCC(), o.Type, o.Status, o.AvgFillPrice.StringFixed(2))
	}
}

func cmdLedger(args []string) {
	fs := flag.NewFlagSet("ledger", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	entries, err := a.store.Entries(context.Background(), a.account.ID)
	if err != nil {
		fatal(err)
	}
	for _, e := range entries {
		fmt.Printf("  #%-5d %-12s %12s  %s\n", e.ID, e.Kind, e.Amount.StringFixed(2), e.Note)
	}
}

func cmdReset(args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	if err := a.store.Reset(context.Background()); err != nil {
		fatal(err)
	}
	fmt.Println("Database reset.")
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args)

	a, err := setup(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	srv := metrics.NewServer(a.cfg.Metrics, a.logger)

	srv.RegisterHealthCheck("ledger", func() metrics.Check {
		if _, err := a.store.CashBalance(context.Background(), a.account.ID); err != nil {
			return metrics.Check{Status: "unhealthy", Message: err.Error()}
		}
		return metrics.Check{Status: "healthy"}
	})

	if err := srv.Start(); err != nil {
		fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fatal(err)
	}
}

func parseDecimal(s, name string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("--%s is required", name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return d, nil
}
