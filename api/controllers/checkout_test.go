package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/petalpost/florist-backend/internal/orders"
	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
)

type stubOrderService struct {
	order     *models.Order
	err       error
	created   int
	lastInput orders.CreateInput
}

func (s *stubOrderService) Create(_ context.Context, input orders.CreateInput) (*models.Order, error) {
	s.created++
	s.lastInput = input
	return s.order, s.err
}

func (s *stubOrderService) GetByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) GetByPublicCode(_ context.Context, _ string) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(_ context.Context, _ orders.Actor, _ orders.ListFilter) ([]models.Order, int64, error) {
	return nil, 0, s.err
}

func (s *stubOrderService) SetOrderStatus(_ context.Context, _ orders.SetOrderStatusInput) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) SetPaymentStatus(_ context.Context, _ orders.SetPaymentStatusInput) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) MarkPaid(_ context.Context, _ orders.MarkPaidInput) (*orders.MarkPaidResult, error) {
	return nil, s.err
}

func (s *stubOrderService) ConfirmWebhookPayment(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func (s *stubOrderService) FailWebhookPayment(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func (s *stubOrderService) UpdateCosts(_ context.Context, _ orders.UpdateCostsInput) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Remove(_ context.Context, _ orders.RemoveInput) error {
	return s.err
}

func (s *stubOrderService) Export(_ context.Context, _ orders.ExportInput, _ io.Writer) (int, error) {
	return 0, s.err
}

func pricedOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		PublicCode:    "PP-PUB00001",
		OrderStatus:   enums.OrderStatusNew,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodPromptPay,
		ItemsTotal:    decimal.NewFromInt(500),
		DeliveryFee:   decimal.NewFromInt(100),
		GrandTotal:    decimal.NewFromInt(600),
	}
}

func checkoutBody(extra string) string {
	base := `"payment_method":"promptpay",` +
		`"items":[{"bouquet_id":"` + uuid.NewString() + `","size_key":"m","qty":1}],` +
		`"recipient_name":"Malee S.","recipient_phone":"+66-81-000-0000",` +
		`"address_line":"88/1 Soi Thonglor 5","district":"Watthana"`
	if extra != "" {
		base += "," + extra
	}
	return "{" + base + "}"
}

func TestCheckoutIgnoresClientSuppliedTotals(t *testing.T) {
	svc := &stubOrderService{order: pricedOrder()}
	rec := httptest.NewRecorder()

	// A tampered storefront sends its own totals; the server must drop
	// them and price the cart against the catalog.
	body := checkoutBody(`"grand_total":1,"items_total":1,"delivery_fee":0`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	Checkout(svc, nil)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.created != 1 {
		t.Fatalf("created = %d", svc.created)
	}

	var envelope struct {
		Data struct {
			PublicCode string `json:"public_code"`
			ItemsTotal string `json:"items_total"`
			GrandTotal string `json:"grand_total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.GrandTotal != "600" || envelope.Data.ItemsTotal != "500" {
		t.Fatalf("totals = %s/%s, want catalog-derived 500/600",
			envelope.Data.ItemsTotal, envelope.Data.GrandTotal)
	}
}

func TestCheckoutStillValidatesDeclaredFields(t *testing.T) {
	svc := &stubOrderService{order: pricedOrder()}
	rec := httptest.NewRecorder()

	body := checkoutBody(`"grand_total":1`)
	body = strings.Replace(body, `"promptpay"`, `"iou"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/public/checkout", strings.NewReader(body))
	Checkout(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.created != 0 {
		t.Fatalf("order must not be created")
	}
}

func trackRequest(code string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/public/orders/"+code, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("code", code)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestTrackOrderFlagsTerminalStates(t *testing.T) {
	cases := []struct {
		status enums.OrderStatus
		final  bool
	}{
		{enums.OrderStatusNew, false},
		{enums.OrderStatusOutForDelivery, false},
		{enums.OrderStatusDelivered, true},
		{enums.OrderStatusCanceled, true},
		{enums.OrderStatusRefunded, true},
	}
	for _, tc := range cases {
		order := pricedOrder()
		order.OrderStatus = tc.status
		svc := &stubOrderService{order: order}
		rec := httptest.NewRecorder()

		TrackOrder(svc, nil)(rec, trackRequest(order.PublicCode))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.status, rec.Code)
		}
		var envelope struct {
			Data struct {
				Final bool `json:"final"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("%s: decode: %v", tc.status, err)
		}
		if envelope.Data.Final != tc.final {
			t.Fatalf("%s: final = %v, want %v", tc.status, envelope.Data.Final, tc.final)
		}
	}
}
