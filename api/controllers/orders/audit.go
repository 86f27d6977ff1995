package orders

import (
	"net/http"

	"github.com/petalpost/florist-backend/api/responses"
	"github.com/petalpost/florist-backend/internal/audit"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// AuditTrail returns the chronological list of administrative mutations
// recorded against one order.
func AuditTrail(reader audit.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit reader unavailable"))
			return
		}

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

		entries, err := reader.Trail(r.Context(), actor.Role, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id": orderID,
			"entries":  entries,
		})
	}
}
