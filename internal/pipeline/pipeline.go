package pipeline

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/niiodoi/venda/internal/ledger"
	"github.com/niiodoi/venda/internal/middleware"
	"github.com/niiodoi/venda/internal/network"
	"github.com/niiodoi/venda/internal/pricing"
	"github.com/niiodoi/venda/pkg/types"
)

// Outcome classifies how a webhook delivery finished. The HTTP layer maps
// it to a response code; the ledger effect is already applied by the time
// Process returns.
type Outcome string

const (
	// OutcomeIgnored - not a charge.success event; nothing to do.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeDuplicate - reference already submitted to the provider.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeSuccess - bundle ordered and recorded with profit.
	OutcomeSuccess Outcome = "success"
	// OutcomeMalformed - event missing reference, phone or a positive amount.
	OutcomeMalformed Outcome = "malformed"
	// OutcomeUnverified - Paystack did not confirm the payment.
	OutcomeUnverified Outcome = "payment_unverified"
	// OutcomeNoBundle - unresolved network or no exact price match.
	OutcomeNoBundle Outcome = "no_bundle_match"
	// OutcomeProviderError - Bytewave rejected the order or the call failed.
	OutcomeProviderError Outcome = "provider_error"
	// OutcomeInternal - uncategorized failure caught at the pipeline boundary.
	OutcomeInternal Outcome = "internal_error"
)

// Result is what a single Process invocation produced. Record is nil for
// outcomes that leave no ledger entry (ignored, duplicate).
type Result struct {
	Outcome Outcome
	Record  *ledger.Record
}

// Verifier confirms a payment reference with the payment processor.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*types.VerifyTransactionResponse, error)
}

// Submitter places a bundle purchase order with the fulfillment provider.
type Submitter interface {
	PlaceOrder(ctx context.Context, order *types.Order) (*types.OrderAck, error)
}

// Dedup is the local submitted-reference set consulted before the provider
// call. FirstSubmission returns true at most once per reference; Forget
// releases a claim whose order never went through.
type Dedup interface {
	FirstSubmission(ctx context.Context, reference string) (bool, error)
	Forget(ctx context.Context, reference string) error
}

// Pipeline derives a bundle order from a payment webhook: verify the
// payment, classify the payer's network, match the paid amount to an offer,
// submit the order, and record the outcome. Each invocation is independent;
// the only shared state is the ledger append and the dedup set.
type Pipeline struct {
	verifier   Verifier
	submitter  Submitter
	classifier *network.Classifier
	table      *pricing.Table
	store      ledger.Store
	dedup      Dedup
	validate   *validator.Validate
}

func New(verifier Verifier, submitter Submitter, classifier *network.Classifier, table *pricing.Table, store ledger.Store, dedup Dedup) *Pipeline {
	return &Pipeline{
		verifier:   verifier,
		submitter:  submitter,
		classifier: classifier,
		table:      table,
		store:      store,
		dedup:      dedup,
		validate:   validator.New(),
	}
}

// Process runs one webhook delivery to a terminal outcome. It never
// returns an error and never panics: every failure is converted into an
// outcome plus a ledger record, and the record is written even when the
// inbound connection has gone away.
func (p *Pipeline) Process(ctx context.Context, event *types.PaystackWebhookEvent) (result Result) {
	logger := middleware.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("reference", event.Data.Reference).
				Str("phone", event.Data.Customer.Phone).
				Msg("pipeline panic recovered")
			result = Result{Outcome: OutcomeInternal}
			result.Record = p.record(ctx, &ledger.Record{
				Reference:  event.Data.Reference,
				Phone:      event.Data.Customer.Phone,
				Network:    network.Unknown,
				AmountPaid: decimal.Zero,
				Status:     ledger.StatusUnknown,
			})
		}
	}()

	if event.Event != types.ChargeSuccess {
		logger.Debug().Str("event", event.Event).Msg("ignoring non-charge webhook event")
		return Result{Outcome: OutcomeIgnored}
	}

	if err := p.validate.Struct(&event.Data); err != nil {
		logger.Warn().Err(err).
			Str("reference", event.Data.Reference).
			Msg("webhook payload missing required fields")
		rec := &ledger.Record{
			Reference: event.Data.Reference,
			Phone:     event.Data.Customer.Phone,
			Network:   network.Unknown,
			Status:    ledger.StatusUnknown,
		}
		if event.Data.Amount > 0 {
			rec.AmountPaid = fromMinorUnits(event.Data.Amount)
		}
		return Result{Outcome: OutcomeMalformed, Record: p.record(ctx, rec)}
	}

	reference := event.Data.Reference
	phone := event.Data.Customer.Phone
	amountPaid := fromMinorUnits(event.Data.Amount)

	logger.Info().
		Str("reference", reference).
		Str("phone", phone).
		Str("amount", amountPaid.String()).
		Msg("payment received")

	if _, err := p.verifier.VerifyTransaction(ctx, reference); err != nil {
		logger.Warn().Err(err).Str("reference", reference).Msg("payment verification failed")
		rec := &ledger.Record{
			Reference: reference,
			Phone:     phone,
			Network:   network.Unknown,
			Status:    ledger.StatusPaymentUnverified,
		}
		return Result{Outcome: OutcomeUnverified, Record: p.record(ctx, rec)}
	}

	net := p.classifier.Classify(phone)
	if net == network.Unknown {
		logger.Warn().Str("reference", reference).Str("phone", phone).Msg("could not resolve network")
		rec := &ledger.Record{
			Reference:  reference,
			Phone:      phone,
			Network:    network.Unknown,
			AmountPaid: amountPaid,
			Status:     ledger.StatusNoBundleMatch,
		}
		return Result{Outcome: OutcomeNoBundle, Record: p.record(ctx, rec)}
	}
	msisdn, _ := network.Normalize(phone)

	offer, ok := p.table.Lookup(net, amountPaid)
	if !ok {
		logger.Warn().
			Str("reference", reference).
			Str("network", string(net)).
			Str("amount", amountPaid.String()).
			Msg("no bundle matches paid amount")
		rec := &ledger.Record{
			Reference:  reference,
			Phone:      msisdn,
			Network:    net,
			AmountPaid: amountPaid,
			Status:     ledger.StatusNoBundleMatch,
		}
		return Result{Outcome: OutcomeNoBundle, Record: p.record(ctx, rec)}
	}

	first, err := p.dedup.FirstSubmission(ctx, reference)
	if err != nil {
		// If the dedup set is unreachable we still submit: the reference
		// travels with the order and Bytewave deduplicates on its side.
		logger.Warn().Err(err).Str("reference", reference).Msg("dedup check failed, relying on provider-side dedup")
	} else if !first {
		logger.Info().Str("reference", reference).Msg("reference already submitted, skipping")
		return Result{Outcome: OutcomeDuplicate}
	}

	order := &types.Order{
		Network:    string(net),
		Reference:  reference,
		MSISDN:     msisdn,
		CapacityGB: offer.CapacityGB,
	}
	if _, err := p.submitter.PlaceOrder(ctx, order); err != nil {
		logger.Error().Err(err).
			Str("reference", reference).
			Str("network", string(net)).
			Int("capacity_gb", offer.CapacityGB).
			Msg("provider order failed")
		// Release the claim so a redelivery of this reference can retry.
		if ferr := p.dedup.Forget(ctx, reference); ferr != nil {
			logger.Warn().Err(ferr).Str("reference", reference).Msg("failed to release submitted claim")
		}
		rec := &ledger.Record{
			Reference:  reference,
			Phone:      msisdn,
			Network:    net,
			AmountPaid: amountPaid,
			Status:     ledger.StatusProviderError,
		}
		return Result{Outcome: OutcomeProviderError, Record: p.record(ctx, rec)}
	}

	profit := amountPaid.Sub(offer.Cost)
	logger.Info().
		Str("reference", reference).
		Str("network", string(net)).
		Int("capacity_gb", offer.CapacityGB).
		Str("profit", profit.String()).
		Msg("bundle ordered")

	rec := &ledger.Record{
		Reference:     reference,
		Phone:         msisdn,
		Network:       net,
		AmountPaid:    amountPaid,
		WholesaleCost: offer.Cost,
		Profit:        profit,
		Status:        ledger.StatusSuccess,
	}
	return Result{Outcome: OutcomeSuccess, Record: p.record(ctx, rec)}
}

// record appends and returns the record; a storage failure is logged but
// does not change the pipeline outcome.
func (p *Pipeline) record(ctx context.Context, rec *ledger.Record) *ledger.Record {
	if err := p.store.Append(ctx, rec); err != nil {
		middleware.GetLogger(ctx).Error().Err(err).
			Str("reference", rec.Reference).
			Str("status", string(rec.Status)).
			Msg("failed to append ledger record")
	}
	return rec
}

// fromMinorUnits converts pesewas to cedis.
func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
