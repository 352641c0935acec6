// Package dmarket is the REST client for the DMarket trading API.
package dmarket

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dkotenko/skinarb/internal/domain"
)

const defaultBaseURL = "https://api.dmarket.com"

// maxAttempts bounds retries on rate-limited requests.
const maxAttempts = 3

// Client is the DMarket REST client. Requests are HMAC-SHA256 signed when an
// API secret is configured; public market endpoints work unsigned.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewClient creates a DMarket client. An empty baseURL selects the
// production API.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMarketItems fetches a page of market items for a game. currency
// defaults to USD.
func (c *Client) GetMarketItems(ctx context.Context, gameID string, limit, offset int, currency string) ([]RawItem, error) {
	if currency == "" {
		currency = "USD"
	}
	params := url.Values{}
	params.Set("gameId", gameID)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("currency", currency)

	path := "/exchange/v1/market/items?" + params.Encode()

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("dmarket: get market items: %w", err)
	}

	var resp struct {
		Objects []RawItem `json:"objects"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("dmarket: decode market items: %w", err)
	}
	return resp.Objects, nil
}

// GetBalance returns the account USD balance in cents.
func (c *Client) GetBalance(ctx context.Context) (int64, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/account/v1/balance", nil)
	if err != nil {
		return 0, fmt.Errorf("dmarket: get balance: %w", err)
	}

	var resp struct {
		USD string `json:"usd"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("dmarket: decode balance: %w", err)
	}
	cents, err := strconv.ParseInt(resp.USD, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dmarket: parse balance %q: %w", resp.USD, err)
	}
	return cents, nil
}

// doRequest builds, signs, sends, and reads an HTTP request, retrying
// rate-limited calls with exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	var jsonBody []byte
	if reqBody != nil {
		var err error
		jsonBody, err = json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.doOnce(ctx, method, path, jsonBody)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, jsonBody []byte) ([]byte, error) {
	var bodyReader io.Reader
	if jsonBody != nil {
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.signRequest(req, method, path, jsonBody)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// signRequest adds the DMarket authentication headers: the signature is
// HMAC-SHA256 over METHOD + path + body + timestamp, keyed by the API
// secret. Unsigned requests go out bare when no secret is configured.
func (c *Client) signRequest(req *http.Request, method, path string, jsonBody []byte) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if c.apiSecret == "" {
		return
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	message := method + path
	if len(jsonBody) > 0 {
		message += string(jsonBody)
	}
	message += ts

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(message))

	req.Header.Set("X-Sign-Date", ts)
	req.Header.Set("X-Request-Sign", hex.EncodeToString(mac.Sum(nil)))
}

// checkStatus maps non-2xx responses onto the domain error taxonomy.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s (%s)", domain.ErrUnauthorized, apiErr.Message, apiErr.Code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s (%s)", domain.ErrRateLimited, apiErr.Message, apiErr.Code)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s (%s)", domain.ErrNotFound, apiErr.Message, apiErr.Code)
	default:
		if statusCode >= 500 {
			return fmt.Errorf("%w: HTTP %d: %s (%s)", domain.ErrNetwork, statusCode, apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("dmarket: HTTP %d: %s (%s)", statusCode, apiErr.Message, apiErr.Code)
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrNetwork)
}
