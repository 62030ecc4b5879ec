package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niiodoi/venda/internal/ledger"
	"github.com/niiodoi/venda/internal/network"
	"github.com/niiodoi/venda/internal/pipeline"
	"github.com/niiodoi/venda/internal/pricing"
	"github.com/niiodoi/venda/pkg/types"
)

type stubVerifier struct {
	err error
}

func (s *stubVerifier) VerifyTransaction(context.Context, string) (*types.VerifyTransactionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.VerifyTransactionResponse{Status: true}, nil
}

type stubSubmitter struct {
	err error
}

func (s *stubSubmitter) PlaceOrder(context.Context, *types.Order) (*types.OrderAck, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.OrderAck{Status: types.OrderAccepted}, nil
}

type stubDedup struct{}

func (stubDedup) FirstSubmission(context.Context, string) (bool, error) { return true, nil }
func (stubDedup) Forget(context.Context, string) error                  { return nil }

func newHandler(verifier *stubVerifier, submitter *stubSubmitter) (*WebhookHandler, *ledger.MemoryStore) {
	store := ledger.NewMemoryStore()
	pipe := pipeline.New(verifier, submitter, network.NewDefaultClassifier(), pricing.NewDefaultTable(), store, stubDedup{})
	return NewWebhookHandler(pipe), store
}

func postEvent(t *testing.T, h *WebhookHandler, event *types.PaystackWebhookEvent) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func chargeEvent(reference, phone string, amountMinor int64) *types.PaystackWebhookEvent {
	return &types.PaystackWebhookEvent{
		Event: types.ChargeSuccess,
		Data: types.PaystackWebhookData{
			Reference: reference,
			Amount:    amountMinor,
			Customer:  types.PaystackCustomer{Phone: phone},
		},
	}
}

func TestHandleWebhookSuccess(t *testing.T) {
	h, store := newHandler(&stubVerifier{}, &stubSubmitter{})

	rec := postEvent(t, h, chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "success")

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTransactions)
}

func TestHandleWebhookIgnoredEvent(t *testing.T) {
	h, store := newHandler(&stubVerifier{}, &stubSubmitter{})

	event := chargeEvent("ref-1", "0241234567", 600)
	event.Event = "subscription.create"
	rec := postEvent(t, h, event)

	assert.Equal(t, http.StatusOK, rec.Code)

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTransactions)
}

func TestHandleWebhookUnverified(t *testing.T) {
	h, _ := newHandler(&stubVerifier{err: errors.New("not verified")}, &stubSubmitter{})

	rec := postEvent(t, h, chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhookNoBundleMatch(t *testing.T) {
	h, _ := newHandler(&stubVerifier{}, &stubSubmitter{})

	rec := postEvent(t, h, chargeEvent("ref-1", "0241234567", 777))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhookProviderError(t *testing.T) {
	h, _ := newHandler(&stubVerifier{}, &stubSubmitter{err: errors.New("bytewave down")})

	rec := postEvent(t, h, chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleWebhookInvalidJSON(t *testing.T) {
	h, store := newHandler(&stubVerifier{}, &stubSubmitter{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	summary, err := store.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTransactions)
}
