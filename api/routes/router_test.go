package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/logger"
)

func newTestRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(&config.Config{}, logg, nil, nil, nil, nil, nil, nil, nil, nil, nil)
}

func TestMarkPaidRouteIsPatch(t *testing.T) {
	router := newTestRouter()
	path := "/api/admin/v1/orders/" + uuid.NewString() + "/mark-paid"

	// Routed but unauthenticated.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("PATCH status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want 405", rec.Code)
	}
}

func TestAuditTrailRouteIsMounted(t *testing.T) {
	router := newTestRouter()
	path := "/api/admin/v1/orders/" + uuid.NewString() + "/audit"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET status = %d, want 401", rec.Code)
	}
}
