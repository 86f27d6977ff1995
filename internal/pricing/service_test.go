package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/petalpost/florist-backend/pkg/db/models"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

type stubCatalog struct {
	bouquets map[uuid.UUID]*models.Bouquet
}

func (s *stubCatalog) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Bouquet, error) {
	bouquet, ok := s.bouquets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return bouquet, nil
}

func newQuoteService(t *testing.T, bouquets ...*models.Bouquet) Service {
	t.Helper()
	catalogStub := &stubCatalog{bouquets: map[uuid.UUID]*models.Bouquet{}}
	for _, b := range bouquets {
		catalogStub.bouquets[b.ID] = b
	}
	fees, err := NewFlatFeePolicy("100.00")
	require.NoError(t, err)
	svc, err := NewService(catalogStub, fees, nil)
	require.NoError(t, err)
	return svc
}

func peonyBouquet() *models.Bouquet {
	id := uuid.New()
	return &models.Bouquet{
		ID:     id,
		Name:   "Blush Peony",
		Active: true,
		Sizes: []models.BouquetSize{
			{BouquetID: id, SizeKey: "s", Price: decimal.RequireFromString("350.00")},
			{BouquetID: id, SizeKey: "m", Price: decimal.RequireFromString("500.00")},
		},
	}
}

func TestQuoteRejectsEmptyCart(t *testing.T) {
	svc := newQuoteService(t)

	_, err := svc.Quote(context.Background(), nil, DeliveryInput{District: "Watthana"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteComputesTotals(t *testing.T) {
	bouquet := peonyBouquet()
	svc := newQuoteService(t, bouquet)

	quote, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: bouquet.ID, SizeKey: "m", Qty: 1},
	}, DeliveryInput{District: "Watthana"})
	require.NoError(t, err)

	assert.True(t, quote.ItemsTotal.Equal(decimal.RequireFromString("500.00")), quote.ItemsTotal)
	assert.True(t, quote.DeliveryFee.Equal(decimal.RequireFromString("100.00")), quote.DeliveryFee)
	assert.True(t, quote.GrandTotal.Equal(decimal.RequireFromString("600.00")), quote.GrandTotal)
	require.Len(t, quote.Items, 1)
	assert.Equal(t, "Blush Peony", quote.Items[0].BouquetName)
}

func TestQuoteMultipliesQuantity(t *testing.T) {
	bouquet := peonyBouquet()
	svc := newQuoteService(t, bouquet)

	quote, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: bouquet.ID, SizeKey: "s", Qty: 3},
	}, DeliveryInput{District: "Watthana"})
	require.NoError(t, err)

	assert.True(t, quote.ItemsTotal.Equal(decimal.RequireFromString("1050.00")), quote.ItemsTotal)
}

func TestQuotePremiumCardSurcharge(t *testing.T) {
	bouquet := peonyBouquet()
	svc := newQuoteService(t, bouquet)

	quote, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: bouquet.ID, SizeKey: "m", Qty: 2, CardType: CardTypePremium, CardMessage: "Happy anniversary"},
	}, DeliveryInput{District: "Watthana"})
	require.NoError(t, err)

	// Surcharge folds into the unit price, so it applies per item.
	require.Len(t, quote.Items, 1)
	assert.True(t, quote.Items[0].UnitPrice.Equal(decimal.RequireFromString("525.00")), quote.Items[0].UnitPrice)
	assert.True(t, quote.ItemsTotal.Equal(decimal.RequireFromString("1050.00")), quote.ItemsTotal)
}

func TestQuoteRejectsUnknownCardType(t *testing.T) {
	bouquet := peonyBouquet()
	svc := newQuoteService(t, bouquet)

	_, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: bouquet.ID, SizeKey: "m", Qty: 1, CardType: "glitter"},
	}, DeliveryInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteRejectsZeroQuantity(t *testing.T) {
	bouquet := peonyBouquet()
	svc := newQuoteService(t, bouquet)

	_, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: bouquet.ID, SizeKey: "m", Qty: 0},
	}, DeliveryInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestQuoteUnavailableBouquetIsValidationError(t *testing.T) {
	svc := newQuoteService(t)

	_, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: uuid.New(), SizeKey: "m", Qty: 1},
	}, DeliveryInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Message(), "no longer available")
}

func TestQuoteRejectsMissingSize(t *testing.T) {
	bouquet := peonyBouquet()
	svc := newQuoteService(t, bouquet)

	_, err := svc.Quote(context.Background(), []CartLine{
		{BouquetID: bouquet.ID, SizeKey: "xl", Qty: 1},
	}, DeliveryInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestFlatFeePolicyValidation(t *testing.T) {
	_, err := NewFlatFeePolicy("not-a-number")
	assert.Error(t, err)

	_, err = NewFlatFeePolicy("-10")
	assert.Error(t, err)

	policy, err := NewFlatFeePolicy("100.005")
	require.NoError(t, err)
	fee, err := policy.Fee(context.Background(), DeliveryInput{})
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.RequireFromString("100.01")), fee)
}
