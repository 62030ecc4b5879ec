package psp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/niiodoi/venda/pkg/types"
)

// PaystackClient re-verifies payment references against the Paystack API.
// Webhook deliveries are never trusted on their own; the verify endpoint is
// the source of truth for whether money actually moved.
type PaystackClient struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

func NewPaystackClient(secretKey, baseURL string, timeout time.Duration) *PaystackClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PaystackClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     90 * time.Second,
				DisableKeepAlives:   false,
			},
		},
		secretKey: secretKey,
		baseURL:   baseURL,
	}
}

// VerifyTransaction confirms a reference is genuinely paid. Any outcome other
// than an HTTP 200 envelope with Data.Status == "success" is an error: the
// caller treats transport failures, timeouts and malformed bodies the same as
// an explicit rejection.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*types.VerifyTransactionResponse, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference is empty")
	}

	path := "/transaction/verify/" + url.PathEscape(reference)
	respBody, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var resp types.VerifyTransactionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !resp.Status {
		return nil, fmt.Errorf("paystack error: %s", resp.Message)
	}
	if resp.Data.Status != types.PaymentVerified {
		return nil, fmt.Errorf("payment not verified: status=%s gateway=%s", resp.Data.Status, resp.Data.GatewayResponse)
	}

	return &resp, nil
}

func (c *PaystackClient) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create HTTP request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		log.Error().Err(err).
			Str("method", method).
			Str("url", url).
			Int64("duration_ms", duration).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).
			Str("method", method).
			Str("url", url).
			Int64("duration_ms", duration).
			Msg("Failed to read response body")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("url", url).
			Int64("duration_ms", duration).
			Str("body", string(respBody)).
			Msg("Paystack API error response")
		return nil, fmt.Errorf("paystack error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Str("method", method).
		Str("url", url).
		Int64("duration_ms", duration).
		Msg("Paystack API request successful")

	return respBody, nil
}
