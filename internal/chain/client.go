// Package chain fetches and cleans options-chain data, and derives the
// forward implied variance used as the simulation input.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
	"decay-monitor/pkg/utils"
)

// DefaultBaseURL is the marketdata.app options chain endpoint.
const DefaultBaseURL = "https://api.marketdata.app/v1/options/chain"

// Provider supplies an options chain for a symbol.
type Provider interface {
	FetchChain(ctx context.Context, symbol string) (*models.OptionChain, error)
}

// Client is an HTTP Provider backed by the marketdata.app API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      utils.RetryConfig
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc utils.RetryConfig) ClientOption {
	return func(c *Client) { c.retry = rc }
}

// NewClient creates a chain client with the given API token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      utils.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chainResponse mirrors the column-oriented payload of the chain endpoint:
// one array per field, aligned by index.
type chainResponse struct {
	Status          string    `json:"s"`
	OptionSymbol    []string  `json:"optionSymbol"`
	Underlying      []string  `json:"underlying"`
	Expiration      []int64   `json:"expiration"` // unix seconds
	Side            []string  `json:"side"`
	Strike          []float64 `json:"strike"`
	Bid             []float64 `json:"bid"`
	Ask             []float64 `json:"ask"`
	IV              []float64 `json:"iv"`
	Delta           []float64 `json:"delta"`
	Gamma           []float64 `json:"gamma"`
	Volume          []int64   `json:"volume"`
	OpenInterest    []int64   `json:"openInterest"`
	UnderlyingPrice []float64 `json:"underlyingPrice"`
}

// FetchChain retrieves the raw chain for a symbol and converts it to row form.
func (c *Client) FetchChain(ctx context.Context, symbol string) (*models.OptionChain, error) {
	if c.token == "" {
		return nil, errors.Wrap(errors.ErrMissingCredential, "marketdata API token")
	}

	url := fmt.Sprintf("%s/%s/", c.baseURL, symbol)

	resp, err := utils.RetryWithResult(ctx, c.retry, func() (*chainResponse, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		return nil, errors.NewDataError("options_chain", symbol, "fetching chain", err)
	}

	return convertChain(symbol, resp)
}

func (c *Client) fetch(ctx context.Context, url string) (*chainResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrChainUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", errors.ErrChainUnavailable, resp.StatusCode, body)
	}

	var parsed chainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding chain response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("%w: status %q", errors.ErrChainUnavailable, parsed.Status)
	}
	return &parsed, nil
}

func convertChain(symbol string, resp *chainResponse) (*models.OptionChain, error) {
	n := len(resp.OptionSymbol)
	if n == 0 {
		return nil, errors.NewDataError("options_chain", symbol, "empty chain", errors.ErrEmptyChain)
	}

	chain := &models.OptionChain{
		Symbol:    symbol,
		FetchedAt: time.Now(),
		Contracts: make([]models.OptionContract, 0, n),
	}
	if len(resp.UnderlyingPrice) > 0 {
		chain.SpotPrice = resp.UnderlyingPrice[0]
	}

	at := func(vals []float64, i int) float64 {
		if i < len(vals) {
			return vals[i]
		}
		return 0
	}
	atInt := func(vals []int64, i int) int64 {
		if i < len(vals) {
			return vals[i]
		}
		return 0
	}
	atStr := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}

	for i := 0; i < n; i++ {
		chain.Contracts = append(chain.Contracts, models.OptionContract{
			Symbol:       resp.OptionSymbol[i],
			Underlying:   atStr(resp.Underlying, i),
			Side:         models.OptionSide(atStr(resp.Side, i)),
			Strike:       at(resp.Strike, i),
			Expiration:   time.Unix(atInt(resp.Expiration, i), 0).UTC(),
			Bid:          at(resp.Bid, i),
			Ask:          at(resp.Ask, i),
			IV:           at(resp.IV, i),
			Delta:        at(resp.Delta, i),
			Gamma:        at(resp.Gamma, i),
			Volume:       atInt(resp.Volume, i),
			OpenInterest: atInt(resp.OpenInterest, i),
		})
	}

	return chain, nil
}
