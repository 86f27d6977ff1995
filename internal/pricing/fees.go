package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DeliveryInput carries the destination facts a fee policy may use.
type DeliveryInput struct {
	District     string
	AddressLine  string
	DeliveryDate string
}

// FeePolicy computes the delivery fee for a destination. Policies are
// pluggable so zone-based pricing can replace the flat fee without
// touching quote assembly.
type FeePolicy interface {
	Fee(ctx context.Context, delivery DeliveryInput) (decimal.Decimal, error)
}

type flatFeePolicy struct {
	fee decimal.Decimal
}

// NewFlatFeePolicy builds a policy charging the same fee city-wide.
// The amount comes from configuration as a decimal string.
func NewFlatFeePolicy(amount string) (FeePolicy, error) {
	fee, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing flat delivery fee %q: %w", amount, err)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("flat delivery fee must not be negative")
	}
	return &flatFeePolicy{fee: fee.Round(2)}, nil
}

func (p *flatFeePolicy) Fee(_ context.Context, _ DeliveryInput) (decimal.Decimal, error) {
	return p.fee, nil
}
