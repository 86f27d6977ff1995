package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/petalpost/florist-backend/api/responses"
	"github.com/petalpost/florist-backend/api/validators"
	"github.com/petalpost/florist-backend/internal/orders"
	"github.com/petalpost/florist-backend/internal/pricing"
	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

type checkoutItem struct {
	BouquetID   string `json:"bouquet_id" validate:"required,uuid"`
	SizeKey     string `json:"size_key" validate:"required"`
	Qty         int    `json:"qty" validate:"required,min=1,max=50"`
	CardType    string `json:"card_type" validate:"omitempty,oneof=standard premium"`
	CardMessage string `json:"card_message" validate:"omitempty,max=500"`
	Wrapping    string `json:"wrapping" validate:"omitempty,max=100"`
}

type checkoutRequest struct {
	PaymentMethod  string         `json:"payment_method" validate:"required,oneof=stripe promptpay bank_transfer"`
	Items          []checkoutItem `json:"items" validate:"required,min=1,max=20,dive"`
	RecipientName  string         `json:"recipient_name" validate:"required,max=200"`
	RecipientPhone string         `json:"recipient_phone" validate:"required,max=30"`
	AddressLine    string         `json:"address_line" validate:"required,max=500"`
	District       string         `json:"district" validate:"required,max=100"`
	DeliveryDate   string         `json:"delivery_date" validate:"omitempty"`
	DeliveryWindow string         `json:"delivery_window" validate:"omitempty,max=50"`
}

type checkoutResponse struct {
	PublicCode    string          `json:"public_code"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	ItemsTotal    decimal.Decimal `json:"items_total"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Checkout creates an order from the customer's cart. All prices are
// resolved server-side against the live catalog.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		// Lenient decode: any client-supplied totals are dropped here and
		// recomputed from the catalog by the pricing service.
		var body checkoutRequest
		if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateInput(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			PublicCode:    order.PublicCode,
			OrderStatus:   order.OrderStatus.String(),
			PaymentStatus: order.PaymentStatus.String(),
			PaymentMethod: order.PaymentMethod.String(),
			ItemsTotal:    order.ItemsTotal,
			DeliveryFee:   order.DeliveryFee,
			GrandTotal:    order.GrandTotal,
			CreatedAt:     order.CreatedAt,
		})
	}
}

func buildCreateInput(body checkoutRequest) (*orders.CreateInput, error) {
	method, err := enums.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	lines := make([]pricing.CartLine, 0, len(body.Items))
	for _, item := range body.Items {
		bouquetID, err := uuid.Parse(item.BouquetID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bouquet id is malformed")
		}
		lines = append(lines, pricing.CartLine{
			BouquetID:   bouquetID,
			SizeKey:     item.SizeKey,
			Qty:         item.Qty,
			CardType:    item.CardType,
			CardMessage: item.CardMessage,
			Wrapping:    item.Wrapping,
		})
	}

	var deliveryDate *time.Time
	if raw := strings.TrimSpace(body.DeliveryDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date must be YYYY-MM-DD")
		}
		deliveryDate = &parsed
	}

	return &orders.CreateInput{
		Lines:          lines,
		PaymentMethod:  method,
		RecipientName:  body.RecipientName,
		RecipientPhone: body.RecipientPhone,
		AddressLine:    body.AddressLine,
		District:       body.District,
		DeliveryDate:   deliveryDate,
		DeliveryWindow: body.DeliveryWindow,
	}, nil
}

type trackingItem struct {
	BouquetName string `json:"bouquet_name"`
	SizeKey     string `json:"size_key"`
	Qty         int    `json:"qty"`
}

type trackingResponse struct {
	PublicCode    string         `json:"public_code"`
	OrderStatus   string         `json:"order_status"`
	PaymentStatus string         `json:"payment_status"`
	Final         bool           `json:"final"`
	Items         []trackingItem `json:"items"`
	DeliveryDate  *time.Time     `json:"delivery_date,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TrackOrder is the customer-facing status lookup by public code. It
// deliberately exposes no money, address or contact details.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order code is required"))
			return
		}

		order, err := svc.GetByPublicCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toTrackingResponse(order))
	}
}

func toTrackingResponse(order *models.Order) trackingResponse {
	items := make([]trackingItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, trackingItem{
			BouquetName: item.BouquetName,
			SizeKey:     item.SizeKey,
			Qty:         item.Qty,
		})
	}
	return trackingResponse{
		PublicCode:    order.PublicCode,
		OrderStatus:   order.OrderStatus.String(),
		PaymentStatus: order.PaymentStatus.String(),
		// Terminal orders will not move again; the storefront stops polling.
		Final: order.OrderStatus.IsTerminal(),
		Items: items,
		DeliveryDate:  order.DeliveryDate,
		CreatedAt:     order.CreatedAt,
	}
}
