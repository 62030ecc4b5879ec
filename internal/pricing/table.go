package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/niiodoi/venda/internal/network"
)

// BundleOffer is a single sellable bundle: the retail price a customer pays,
// the wholesale cost venda pays Bytewave, and the data allowance delivered.
type BundleOffer struct {
	Network    network.Network
	Price      decimal.Decimal
	Cost       decimal.Decimal
	CapacityGB int
}

// Table maps (network, exact amount paid) to an offer. It is immutable after
// construction and safe for concurrent readers.
type Table struct {
	offers map[network.Network][]BundleOffer
}

// NewTable validates and indexes a list of offers. Construction fails on a
// duplicate (network, price) pair, a non-positive price or capacity, or a
// retail price below wholesale cost, so a successful lookup can never yield
// a negative margin.
func NewTable(offers []BundleOffer) (*Table, error) {
	indexed := make(map[network.Network][]BundleOffer)
	for _, o := range offers {
		if o.Network == network.Unknown || o.Network == "" {
			return nil, fmt.Errorf("offer has no network: %+v", o)
		}
		if !o.Price.IsPositive() {
			return nil, fmt.Errorf("offer price must be positive: %s %s", o.Network, o.Price)
		}
		if o.CapacityGB <= 0 {
			return nil, fmt.Errorf("offer capacity must be positive: %s %s", o.Network, o.Price)
		}
		if o.Price.LessThan(o.Cost) {
			return nil, fmt.Errorf("offer priced below cost: %s price=%s cost=%s", o.Network, o.Price, o.Cost)
		}
		for _, existing := range indexed[o.Network] {
			if existing.Price.Equal(o.Price) {
				return nil, fmt.Errorf("duplicate offer for %s at %s", o.Network, o.Price)
			}
		}
		indexed[o.Network] = append(indexed[o.Network], o)
	}
	return &Table{offers: indexed}, nil
}

// NewDefaultTable builds the table from DefaultOffers.
func NewDefaultTable() *Table {
	t, err := NewTable(DefaultOffers())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the offer whose retail price exactly equals amountPaid.
// Exact matching is deliberate: a payment that is merely "close" to a bundle
// price is an operator problem to surface, not an entitlement to round down.
func (t *Table) Lookup(net network.Network, amountPaid decimal.Decimal) (BundleOffer, bool) {
	for _, o := range t.offers[net] {
		if o.Price.Equal(amountPaid) {
			return o, true
		}
	}
	return BundleOffer{}, false
}

// Networks returns the networks the table carries offers for.
func (t *Table) Networks() []network.Network {
	nets := make([]network.Network, 0, len(t.offers))
	for n := range t.offers {
		nets = append(nets, n)
	}
	return nets
}

// Offers returns the offers listed for a network.
func (t *Table) Offers(net network.Network) []BundleOffer {
	return t.offers[net]
}

func offer(net network.Network, price, cost string, capacityGB int) BundleOffer {
	return BundleOffer{
		Network:    net,
		Price:      decimal.RequireFromString(price),
		Cost:       decimal.RequireFromString(cost),
		CapacityGB: capacityGB,
	}
}

// DefaultOffers is the reseller catalog. Wholesale costs track the current
// Bytewave price sheets per network.
func DefaultOffers() []BundleOffer {
	return []BundleOffer{
		offer(network.MTN, "6", "4.5", 1),
		offer(network.MTN, "10", "9", 2),
		offer(network.MTN, "15", "13", 3),
		offer(network.MTN, "20", "17", 4),
		offer(network.MTN, "25", "21", 5),
		offer(network.MTN, "30", "25.8", 6),
		offer(network.MTN, "40", "34", 8),
		offer(network.MTN, "48", "41.5", 10),
		offer(network.MTN, "68", "59.5", 15),
		offer(network.MTN, "90", "79", 20),
		offer(network.MTN, "110", "97.25", 25),
		offer(network.MTN, "135", "118", 30),
		offer(network.MTN, "175", "156", 40),
		offer(network.MTN, "215", "193", 50),

		offer(network.Telecel, "45", "39", 10),
		offer(network.Telecel, "65", "58", 15),
		offer(network.Telecel, "85", "76", 20),
		offer(network.Telecel, "120", "110", 30),
		offer(network.Telecel, "160", "146", 40),
		offer(network.Telecel, "200", "182", 50),

		offer(network.AT, "6", "4.3", 1),
		offer(network.AT, "10", "8.4", 2),
		offer(network.AT, "14", "12", 3),
		offer(network.AT, "18", "16", 4),
		offer(network.AT, "22", "19.25", 5),
		offer(network.AT, "27", "24", 6),
		offer(network.AT, "31", "27.5", 7),
		offer(network.AT, "36", "31.5", 8),
		offer(network.AT, "45", "39", 10),
	}
}
