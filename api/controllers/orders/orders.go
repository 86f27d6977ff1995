package orders

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/petalpost/florist-backend/api/middleware"
	"github.com/petalpost/florist-backend/api/responses"
	"github.com/petalpost/florist-backend/api/validators"
	internalorders "github.com/petalpost/florist-backend/internal/orders"
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func actorFromContext(r *http.Request) (internalorders.Actor, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	role, err := enums.ParseAdminRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return internalorders.Actor{
		ID:    userID,
		Email: middleware.UserEmailFromContext(r.Context()),
		Role:  role,
	}, nil
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func filterFromQuery(r *http.Request) (internalorders.ListFilter, error) {
	var filter internalorders.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("order_status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status filter")
		}
		filter.OrderStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status filter")
		}
		filter.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method filter")
		}
		filter.PaymentMethod = &method
	}

	from, err := validators.ParseQueryDate(r, "created_from")
	if err != nil {
		return filter, err
	}
	filter.CreatedFrom = from

	to, err := validators.ParseQueryDate(r, "created_to")
	if err != nil {
		return filter, err
	}
	filter.CreatedTo = to

	deliveryFrom, err := validators.ParseQueryDate(r, "delivery_from")
	if err != nil {
		return filter, err
	}
	filter.DeliveryFrom = deliveryFrom

	deliveryTo, err := validators.ParseQueryDate(r, "delivery_to")
	if err != nil {
		return filter, err
	}
	filter.DeliveryTo = deliveryTo

	filter.District = strings.TrimSpace(r.URL.Query().Get("district"))
	filter.Search = strings.TrimSpace(r.URL.Query().Get("q"))
	return filter, nil
}

// List returns a filtered, paginated admin view of orders.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := filterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultPageSize, 1, maxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Limit = limit
		filter.Offset = offset

		rows, total, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders": rows,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// Detail returns the full admin view of one order, items and status
// history included.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := actorFromContext(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus applies one fulfillment transition.
func SetStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}

		order, err := svc.SetOrderStatus(r.Context(), internalorders.SetOrderStatusInput{
			OrderID: orderID,
			Target:  target,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type setPaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetPaymentStatus corrects the settlement state.
func SetPaymentStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setPaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParsePaymentStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status"))
			return
		}

		order, err := svc.SetPaymentStatus(r.Context(), internalorders.SetPaymentStatusInput{
			OrderID: orderID,
			Target:  target,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// MarkPaid confirms a manual payment. Safe to repeat.
func MarkPaid(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MarkPaid(r.Context(), internalorders.MarkPaidInput{
			OrderID: orderID,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order":        order,
			"already_paid": result.AlreadyPaid,
		})
	}
}

type updateCostsRequest struct {
	CogsAmount   *decimal.Decimal `json:"cogs_amount"`
	DeliveryCost *decimal.Decimal `json:"delivery_cost"`
	PaymentFee   *decimal.Decimal `json:"payment_fee"`
}

// UpdateCosts applies a subset update of the internal cost fields.
func UpdateCosts(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCostsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateCosts(r.Context(), internalorders.UpdateCostsInput{
			OrderID:      orderID,
			CogsAmount:   body.CogsAmount,
			DeliveryCost: body.DeliveryCost,
			PaymentFee:   body.PaymentFee,
			Actor:        actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Remove permanently deletes an order.
func Remove(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), internalorders.RemoveInput{
			OrderID: orderID,
			Actor:   actor,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// Export streams the filtered orders as a CSV download.
func Export(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := filterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if _, err := svc.Export(r.Context(), internalorders.ExportInput{
			Filter: filter,
			Actor:  actor,
		}, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "orders.export_write_failed", err)
		}
	}
}
