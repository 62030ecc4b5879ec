package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niiodoi/venda/internal/ledger"
	"github.com/niiodoi/venda/internal/network"
	"github.com/niiodoi/venda/internal/pricing"
	"github.com/niiodoi/venda/pkg/types"
)

type mockVerifier struct {
	mu         sync.Mutex
	VerifyFunc func(ctx context.Context, reference string) (*types.VerifyTransactionResponse, error)
	calls      int
}

func (m *mockVerifier) VerifyTransaction(ctx context.Context, reference string) (*types.VerifyTransactionResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, reference)
	}
	return &types.VerifyTransactionResponse{Status: true}, nil
}

type mockSubmitter struct {
	mu             sync.Mutex
	PlaceOrderFunc func(ctx context.Context, order *types.Order) (*types.OrderAck, error)
	calls          int
	lastOrder      *types.Order
}

func (m *mockSubmitter) PlaceOrder(ctx context.Context, order *types.Order) (*types.OrderAck, error) {
	m.mu.Lock()
	m.calls++
	m.lastOrder = order
	m.mu.Unlock()
	if m.PlaceOrderFunc != nil {
		return m.PlaceOrderFunc(ctx, order)
	}
	return &types.OrderAck{Status: types.OrderAccepted, OrderID: "order-1"}, nil
}

func (m *mockSubmitter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memoryDedup mirrors the Redis submitted-reference set for tests.
type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{seen: make(map[string]bool)}
}

func (d *memoryDedup) FirstSubmission(_ context.Context, reference string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.seen[reference] {
		return false, nil
	}
	d.seen[reference] = true
	return true, nil
}

func (d *memoryDedup) Forget(_ context.Context, reference string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, reference)
	return nil
}

type fixture struct {
	pipeline  *Pipeline
	verifier  *mockVerifier
	submitter *mockSubmitter
	store     *ledger.MemoryStore
	dedup     *memoryDedup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		verifier:  &mockVerifier{},
		submitter: &mockSubmitter{},
		store:     ledger.NewMemoryStore(),
		dedup:     newMemoryDedup(),
	}
	f.pipeline = New(f.verifier, f.submitter, network.NewDefaultClassifier(), pricing.NewDefaultTable(), f.store, f.dedup)
	return f
}

func chargeEvent(reference, phone string, amountMinor int64) *types.PaystackWebhookEvent {
	return &types.PaystackWebhookEvent{
		Event: types.ChargeSuccess,
		Data: types.PaystackWebhookData{
			Reference: reference,
			Amount:    amountMinor,
			Status:    "success",
			Currency:  "GHS",
			Customer:  types.PaystackCustomer{Phone: phone},
		},
	}
}

func TestProcessSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 600 pesewas buys the 6 cedi MTN bundle at a 4.50 wholesale cost.
	result := f.pipeline.Process(ctx, chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, ledger.StatusSuccess, result.Record.Status)
	assert.Equal(t, network.MTN, result.Record.Network)
	assert.True(t, result.Record.AmountPaid.Equal(decimal.RequireFromString("6")))
	assert.True(t, result.Record.WholesaleCost.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, result.Record.Profit.Equal(decimal.RequireFromString("1.5")))

	require.NotNil(t, f.submitter.lastOrder)
	assert.Equal(t, "ref-1", f.submitter.lastOrder.Reference)
	assert.Equal(t, "0241234567", f.submitter.lastOrder.MSISDN)
	assert.Equal(t, "MTN", f.submitter.lastOrder.Network)
	assert.Equal(t, 1, f.submitter.lastOrder.CapacityGB)
}

func TestProcessNormalizesInternationalPhone(t *testing.T) {
	f := newFixture(t)

	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "+233541234567", 600))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "0541234567", f.submitter.lastOrder.MSISDN)
}

func TestProcessIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)

	event := chargeEvent("ref-1", "0241234567", 600)
	event.Event = "transfer.success"

	result := f.pipeline.Process(context.Background(), event)

	assert.Equal(t, OutcomeIgnored, result.Outcome)
	assert.Nil(t, result.Record)
	assert.Equal(t, 0, f.verifier.calls)
	assert.Equal(t, 0, f.submitter.callCount())

	summary, err := f.store.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTransactions)
}

func TestProcessUnverifiedPayment(t *testing.T) {
	f := newFixture(t)
	f.verifier.VerifyFunc = func(ctx context.Context, reference string) (*types.VerifyTransactionResponse, error) {
		return nil, errors.New("payment not verified: status=failed")
	}

	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, OutcomeUnverified, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, ledger.StatusPaymentUnverified, result.Record.Status)
	assert.True(t, result.Record.AmountPaid.IsZero())
	assert.True(t, result.Record.Profit.IsZero())

	// The submitter must never be reached on an unverified payment.
	assert.Equal(t, 0, f.submitter.callCount())
}

func TestProcessMalformedEvent(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		event *types.PaystackWebhookEvent
	}{
		{name: "missing phone", event: chargeEvent("ref-1", "", 600)},
		{name: "missing reference", event: chargeEvent("", "0241234567", 600)},
		{name: "zero amount", event: chargeEvent("ref-1", "0241234567", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := f.pipeline.Process(context.Background(), tt.event)

			assert.Equal(t, OutcomeMalformed, result.Outcome)
			require.NotNil(t, result.Record)
			assert.Equal(t, ledger.StatusUnknown, result.Record.Status)
		})
	}

	assert.Equal(t, 0, f.verifier.calls)
	assert.Equal(t, 0, f.submitter.callCount())
}

func TestProcessUnknownNetwork(t *testing.T) {
	f := newFixture(t)

	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0301234567", 600))

	assert.Equal(t, OutcomeNoBundle, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, ledger.StatusNoBundleMatch, result.Record.Status)
	assert.Equal(t, network.Unknown, result.Record.Network)
	assert.True(t, result.Record.AmountPaid.Equal(decimal.RequireFromString("6")))
	assert.Equal(t, 0, f.submitter.callCount())
}

func TestProcessNoPriceMatch(t *testing.T) {
	f := newFixture(t)

	// 7 GHS matches no MTN offer under exact pricing.
	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 700))

	assert.Equal(t, OutcomeNoBundle, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, ledger.StatusNoBundleMatch, result.Record.Status)
	assert.Equal(t, network.MTN, result.Record.Network)
	assert.True(t, result.Record.AmountPaid.Equal(decimal.RequireFromString("7")))
	assert.True(t, result.Record.WholesaleCost.IsZero())
	assert.True(t, result.Record.Profit.IsZero())
	assert.Equal(t, 0, f.submitter.callCount())
}

func TestProcessProviderError(t *testing.T) {
	f := newFixture(t)
	f.submitter.PlaceOrderFunc = func(ctx context.Context, order *types.Order) (*types.OrderAck, error) {
		return nil, errors.New("bytewave error: status=502")
	}

	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, OutcomeProviderError, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, ledger.StatusProviderError, result.Record.Status)
	assert.True(t, result.Record.AmountPaid.Equal(decimal.RequireFromString("6")))
	assert.True(t, result.Record.WholesaleCost.IsZero())
	assert.True(t, result.Record.Profit.IsZero())
}

func TestProcessProviderErrorReleasesClaim(t *testing.T) {
	f := newFixture(t)
	f.submitter.PlaceOrderFunc = func(ctx context.Context, order *types.Order) (*types.OrderAck, error) {
		return nil, errors.New("bytewave error: status=502")
	}

	_ = f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 600))

	// Paystack redelivers; the provider has recovered. The claim must have
	// been released so the retry goes through.
	f.submitter.PlaceOrderFunc = nil
	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 2, f.submitter.callCount())
}

func TestProcessDuplicateReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.pipeline.Process(ctx, chargeEvent("ref-1", "0241234567", 600))
	second := f.pipeline.Process(ctx, chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, OutcomeSuccess, first.Outcome)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Nil(t, second.Record)
	assert.Equal(t, 1, f.submitter.callCount())

	summary, err := f.store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTransactions)
}

func TestProcessDedupOutageFallsBackToProvider(t *testing.T) {
	f := newFixture(t)
	f.dedup.err = errors.New("redis unreachable")

	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 600))

	// Dedup is best-effort; the provider dedups on the forwarded reference.
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, f.submitter.callCount())
}

func TestProcessRecoversFromPanic(t *testing.T) {
	f := newFixture(t)
	f.verifier.VerifyFunc = func(ctx context.Context, reference string) (*types.VerifyTransactionResponse, error) {
		panic("boom")
	}

	result := f.pipeline.Process(context.Background(), chargeEvent("ref-1", "0241234567", 600))

	assert.Equal(t, OutcomeInternal, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Equal(t, ledger.StatusUnknown, result.Record.Status)
}

func TestProcessConcurrentDistinctReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const deliveries = 20
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.pipeline.Process(ctx, chargeEvent(fmt.Sprintf("ref-%d", i), "0241234567", 600))
		}(i)
	}
	wg.Wait()

	summary, err := f.store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, deliveries, summary.TotalTransactions)

	// Total profit equals the sum of per-record profits.
	want := decimal.RequireFromString("1.5").Mul(decimal.NewFromInt(deliveries))
	assert.True(t, summary.TotalProfit.Equal(want), "got %s want %s", summary.TotalProfit, want)
	for _, rec := range summary.Transactions {
		assert.Equal(t, ledger.StatusSuccess, rec.Status)
		assert.True(t, rec.Profit.Equal(rec.AmountPaid.Sub(rec.WholesaleCost)))
	}
}
