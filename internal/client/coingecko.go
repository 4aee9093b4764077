package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
)

// RateClient fetches the fiat price of a coin from CoinGecko
type RateClient struct {
	baseURL  string
	coinID   string
	currency string
	client   *http.Client
}

// NewRateClient creates a CoinGecko client pricing coinID in currency
func NewRateClient(coinID, currency string) *RateClient {
	return &RateClient{
		baseURL:  coingeckoAPI,
		coinID:   strings.ToLower(coinID),
		currency: strings.ToLower(currency),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Currency returns the fiat currency code rates are quoted in
func (c *RateClient) Currency() string {
	return c.currency
}

// Rate gets the price of one coin in the configured currency
func (c *RateClient) Rate(ctx context.Context) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", c.coinID)
	q.Set("vs_currencies", c.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to build rate request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to get rate")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	// {"warthog": {"usd": 0.0123}}
	var prices map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to decode rate")
	}

	price, ok := prices[c.coinID][c.currency]
	if !ok {
		return decimal.Zero, errors.Errorf("no %s rate for %s", c.currency, c.coinID)
	}

	rate, err := decimal.NewFromString(price.String())
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to parse rate")
	}
	return rate, nil
}
