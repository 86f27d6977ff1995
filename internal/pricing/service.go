package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/petalpost/florist-backend/internal/catalog"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// Card types a customer can attach to an item. Premium cards carry a
// fixed surcharge folded into the line's unit price.
const (
	CardTypeNone     = ""
	CardTypeStandard = "standard"
	CardTypePremium  = "premium"
)

var premiumCardSurcharge = decimal.NewFromInt(25)

// CartLine is one requested item before pricing resolution.
type CartLine struct {
	BouquetID   uuid.UUID
	SizeKey     string
	Qty         int
	CardType    string
	CardMessage string
	Wrapping    string
}

// QuoteItem is a fully resolved, priced line ready to freeze onto an order.
type QuoteItem struct {
	BouquetID   uuid.UUID
	BouquetName string
	SizeKey     string
	UnitPrice   decimal.Decimal
	Qty         int
	CardType    string
	CardMessage string
	Wrapping    string
	ImageURL    string
}

// Quote is the server-computed price of a cart. Totals are rounded to
// two decimal places; clients never supply amounts.
type Quote struct {
	Items       []QuoteItem
	ItemsTotal  decimal.Decimal
	DeliveryFee decimal.Decimal
	GrandTotal  decimal.Decimal
}

// Service resolves cart lines against the live catalog and computes totals.
type Service interface {
	Quote(ctx context.Context, lines []CartLine, delivery DeliveryInput) (*Quote, error)
}

type service struct {
	catalog catalog.Repository
	fees    FeePolicy
	logg    *logger.Logger
}

// NewService wires a pricing service.
func NewService(catalogRepo catalog.Repository, fees FeePolicy, logg *logger.Logger) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if fees == nil {
		return nil, fmt.Errorf("fee policy is required")
	}
	return &service{catalog: catalogRepo, fees: fees, logg: logg}, nil
}

func (s *service) Quote(ctx context.Context, lines []CartLine, delivery DeliveryInput) (*Quote, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}

	quote := &Quote{
		Items:      make([]QuoteItem, 0, len(lines)),
		ItemsTotal: decimal.Zero,
	}

	for i, line := range lines {
		item, err := s.resolveLine(ctx, i, line)
		if err != nil {
			return nil, err
		}
		quote.Items = append(quote.Items, *item)
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty)))
		quote.ItemsTotal = quote.ItemsTotal.Add(lineTotal)
	}

	fee, err := s.fees.Fee(ctx, delivery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing delivery fee")
	}

	quote.ItemsTotal = quote.ItemsTotal.Round(2)
	quote.DeliveryFee = fee.Round(2)
	quote.GrandTotal = quote.ItemsTotal.Add(quote.DeliveryFee).Round(2)
	return quote, nil
}

func (s *service) resolveLine(ctx context.Context, idx int, line CartLine) (*QuoteItem, error) {
	if line.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be at least 1", idx))
	}
	switch line.CardType {
	case CardTypeNone, CardTypeStandard, CardTypePremium:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unknown card type %q", idx, line.CardType))
	}

	bouquet, err := s.catalog.FindActiveByID(ctx, line.BouquetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: bouquet is no longer available", idx))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading bouquet")
	}

	var unitPrice decimal.Decimal
	found := false
	for _, size := range bouquet.Sizes {
		if size.SizeKey == line.SizeKey {
			unitPrice = size.Price
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: size %q is not offered for %s", idx, line.SizeKey, bouquet.Name))
	}

	if line.CardType == CardTypePremium {
		unitPrice = unitPrice.Add(premiumCardSurcharge)
	}

	return &QuoteItem{
		BouquetID:   bouquet.ID,
		BouquetName: bouquet.Name,
		SizeKey:     line.SizeKey,
		UnitPrice:   unitPrice.Round(2),
		Qty:         line.Qty,
		CardType:    line.CardType,
		CardMessage: line.CardMessage,
		Wrapping:    line.Wrapping,
		ImageURL:    bouquet.ImageURL,
	}, nil
}
