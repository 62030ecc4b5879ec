package psp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTransactionSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","reference":"ref-1","amount":600,"currency":"GHS"}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient("sk_test_secret", srv.URL, 2*time.Second)

	resp, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", resp.Data.Reference)
	assert.Equal(t, int64(600), resp.Data.Amount)
}

func TestVerifyTransactionRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"message":"ok","data":{"status":"failed","reference":"ref-1","gateway_response":"Declined"}}`))
	}))
	defer srv.Close()

	client := NewPaystackClient("sk_test_secret", srv.URL, 2*time.Second)

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment not verified")
}

func TestVerifyTransactionEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	client := NewPaystackClient("sk_test_secret", srv.URL, 2*time.Second)

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transaction reference not found")
}

func TestVerifyTransactionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewPaystackClient("bad_key", srv.URL, 2*time.Second)

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
}

func TestVerifyTransactionMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewPaystackClient("sk_test_secret", srv.URL, 2*time.Second)

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
}

func TestVerifyTransactionTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewPaystackClient("sk_test_secret", srv.URL, 50*time.Millisecond)

	_, err := client.VerifyTransaction(context.Background(), "ref-1")
	require.Error(t, err)
}

func TestVerifyTransactionEmptyReference(t *testing.T) {
	client := NewPaystackClient("sk_test_secret", "http://localhost:0", 2*time.Second)

	_, err := client.VerifyTransaction(context.Background(), "")
	require.Error(t, err)
}
