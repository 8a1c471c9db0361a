package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"papertrader/internal/types"
)

// YahooConfig holds Yahoo quote client configuration.
type YahooConfig struct {
	BaseURL           string
	RequestsPerSecond int
	Timeout           time.Duration
}

// DefaultYahooConfig returns default Yahoo client configuration.
func DefaultYahooConfig() YahooConfig {
	return YahooConfig{
		BaseURL:           "https://query1.finance.yahoo.com",
		RequestsPerSecond: 4,
		Timeout:           10 * time.Second,
	}
}

// Yahoo fetches quotes from the Yahoo Finance JSON API. Requests are
// rate-limited; responses are never cached.
type Yahoo struct {
	cfg     YahooConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewYahoo creates a new Yahoo quote client.
func NewYahoo(cfg YahooConfig, logger *slog.Logger) *Yahoo {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultYahooConfig().BaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultYahooConfig().RequestsPerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultYahooConfig().Timeout
	}

	return &Yahoo{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		logger:  logger,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Symbol             string  `json:"symbol"`
			} `json:"meta"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type optionChainResponse struct {
	OptionChain struct {
		Result []struct {
			Options []struct {
				Calls []chainEntry `json:"calls"`
				Puts  []chainEntry `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"optionChain"`
}

type chainEntry struct {
	Strike    float64 `json:"strike"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	LastPrice float64 `json:"lastPrice"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// LastPrice returns the current regular market price for a symbol.
func (y *Yahoo) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", y.cfg.BaseURL, url.PathEscape(symbol))

	var resp chartResponse
	if err := y.get(ctx, endpoint, &resp); err != nil {
		return decimal.Zero, err
	}
	if resp.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoData, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty chart for %s", ErrNoData, symbol)
	}

	price := resp.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", ErrNoData, symbol)
	}
	return decimal.NewFromFloat(price), nil
}

// OptionQuote returns the bid/ask/last for a contract by scanning the
// chain for the contract's expiry.
func (y *Yahoo) OptionQuote(ctx context.Context, contract types.Contract) (OptionQuote, error) {
	expiry, err := time.Parse("2006-01-02", contract.Expiry)
	if err != nil {
		return OptionQuote{}, fmt.Errorf("parse expiry %q: %w", contract.Expiry, err)
	}
	endpoint := fmt.Sprintf("%s/v7/finance/options/%s?date=%d",
		y.cfg.BaseURL, url.PathEscape(contract.Symbol), expiry.UTC().Unix())

	var resp optionChainResponse
	if err := y.get(ctx, endpoint, &resp); err != nil {
		return OptionQuote{}, err
	}
	if resp.OptionChain.Error != nil {
		return OptionQuote{}, fmt.Errorf("%w: %s", ErrNoData, resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return OptionQuote{}, fmt.Errorf("%w: empty chain for %s %s", ErrNoData, contract.Symbol, contract.Expiry)
	}

	entries := resp.OptionChain.Result[0].Options[0].Calls
	if contract.Right == types.RightPut {
		entries = resp.OptionChain.Result[0].Options[0].Puts
	}
	for _, e := range entries {
		if contract.Strike.Equal(decimal.NewFromFloat(e.Strike)) {
			return OptionQuote{
				Bid:  decimal.NewFromFloat(e.Bid),
				Ask:  decimal.NewFromFloat(e.Ask),
				Last: decimal.NewFromFloat(e.LastPrice),
			}, nil
		}
	}
	return OptionQuote{}, fmt.Errorf("%w: %s", types.ErrContractNotFound, contract.OCC())
}

func (y *Yahoo) get(ctx context.Context, endpoint string, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "papertrader/1.0")

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d", ErrNoData, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote request failed: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ensure Yahoo implements Provider.
var _ Provider = (*Yahoo)(nil)
