package fulfillment

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/niiodoi/venda/pkg/types"
)

// BytewaveClient places bundle purchase orders with the fulfillment provider.
type BytewaveClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewBytewaveClient builds the provider client. insecureTLS disables
// certificate verification for this client only; callers must log the
// relaxation at startup so it never happens silently.
func NewBytewaveClient(apiKey, baseURL string, timeout time.Duration, insecureTLS bool) *BytewaveClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &BytewaveClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// PlaceOrder submits one purchase order. The order reference is the
// provider-side deduplication anchor, so it is sent on every attempt. Any
// non-success response or transport failure is an error for the caller to
// classify; no retries happen here.
func (c *BytewaveClient) PlaceOrder(ctx context.Context, order *types.Order) (*types.OrderAck, error) {
	respBody, err := c.doRequest(ctx, http.MethodPost, "/order", order)
	if err != nil {
		return nil, err
	}

	var ack types.OrderAck
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if ack.Status != types.OrderAccepted {
		return nil, fmt.Errorf("bytewave rejected order: status=%s message=%s", ack.Status, ack.Message)
	}

	return &ack, nil
}

func (c *BytewaveClient) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal request body")
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create HTTP request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
			Msg("Bytewave API error response")
		return nil, fmt.Errorf("bytewave error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Str("method", method).
		Str("url", url).
		Int64("duration_ms", duration).
		Msg("Bytewave API request successful")

	return respBody, nil
}
