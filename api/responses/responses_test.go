package responses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestWriteSuccessWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["status"] != "ok" {
		t.Fatalf("data = %+v", envelope.Data)
	}
}

func TestWriteErrorMapsCodesToStatuses(t *testing.T) {
	cases := []struct {
		code   pkgerrors.Code
		status int
	}{
		{pkgerrors.CodeValidation, http.StatusBadRequest},
		{pkgerrors.CodeUnauthorized, http.StatusUnauthorized},
		{pkgerrors.CodeForbidden, http.StatusForbidden},
		{pkgerrors.CodeNotFound, http.StatusNotFound},
		{pkgerrors.CodeInvalidOperation, http.StatusBadRequest},
		{pkgerrors.CodeRateLimit, http.StatusTooManyRequests},
		{pkgerrors.CodeInternal, http.StatusInternalServerError},
		{pkgerrors.CodeDependency, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, pkgerrors.New(tc.code, "boom"))
		if rec.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d", tc.code, rec.Code, tc.status)
		}
		envelope := decodeError(t, rec)
		if envelope.Error.Code != string(tc.code) {
			t.Fatalf("%s: code = %q", tc.code, envelope.Error.Code)
		}
	}
}

func TestWriteErrorPassesClientSafeMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1"))

	envelope := decodeError(t, rec)
	if envelope.Error.Message != "qty must be at least 1" {
		t.Fatalf("message = %q", envelope.Error.Message)
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec,
		pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("pq: connection refused to 10.0.0.4"), "loading order"))

	envelope := decodeError(t, rec)
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", envelope.Error.Message)
	}
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, fmt.Errorf("plain failure"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	envelope := decodeError(t, rec)
	if envelope.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
}

func TestWriteErrorIncludesDetailsWhenAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"qty": "must be at least 1"})
	WriteError(context.Background(), nil, rec, err)

	envelope := decodeError(t, rec)
	if envelope.Error.Details == nil {
		t.Fatalf("details missing for validation error")
	}

	// Forbidden responses never carry details.
	rec = httptest.NewRecorder()
	err = pkgerrors.New(pkgerrors.CodeForbidden, "access denied").
		WithDetails(map[string]string{"role": "support"})
	WriteError(context.Background(), nil, rec, err)

	envelope = decodeError(t, rec)
	if envelope.Error.Details != nil {
		t.Fatalf("forbidden response leaked details")
	}
}
