package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubThrottleStore struct {
	counts map[string]int64
	keys   []string
	err    error
}

func (s *stubThrottleStore) RateLimitKey(scope string) string {
	return "pp:ratelimit:" + scope
}

func (s *stubThrottleStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	s.keys = append(s.keys, key)
	return s.counts[key], nil
}

func throttledHandler(policy LoginThrottlePolicy, store *stubThrottleStore, passed *int) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*passed++
		w.WriteHeader(http.StatusOK)
	})
	return LoginThrottle(policy, store, nil)(next)
}

func TestLoginThrottleBlocksAfterIPLimit(t *testing.T) {
	store := &stubThrottleStore{}
	var passed int
	handler := throttledHandler(NewLoginThrottlePolicy("login", time.Minute, 2, 0), store, &passed)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:52100"
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("third request status = %d, want 429", rec.Code)
		}
	}
	if passed != 2 {
		t.Fatalf("passed = %d", passed)
	}
}

func TestLoginThrottleUsesNamespacedStoreKeys(t *testing.T) {
	store := &stubThrottleStore{}
	var passed int
	handler := throttledHandler(NewLoginThrottlePolicy("login", time.Minute, 5, 0), store, &passed)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	handler.ServeHTTP(rec, req)

	if len(store.keys) != 1 {
		t.Fatalf("keys = %v", store.keys)
	}
	if store.keys[0] != "pp:ratelimit:login:ip:203.0.113.7" {
		t.Fatalf("key = %q", store.keys[0])
	}
}

func TestLoginThrottleHashesAccountIdentity(t *testing.T) {
	store := &stubThrottleStore{}
	var passed int
	handler := throttledHandler(NewLoginThrottlePolicy("login", time.Minute, 0, 1), store, &passed)

	bodies := []string{
		`{"email":" Owner@PetalPost.co.th ","password":"x"}`,
		`{"email":"owner@petalpost.co.th","password":"y"}`,
	}
	var codes []int
	for _, body := range bodies {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.RemoteAddr = "203.0.113.7:52100"
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Case and whitespace variants of the same address share one counter.
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	sum := sha256.Sum256([]byte("owner@petalpost.co.th"))
	want := "pp:ratelimit:login:acct:" + hex.EncodeToString(sum[:])
	for _, key := range store.keys {
		if key != want {
			t.Fatalf("key = %q, want %q", key, want)
		}
		if strings.Contains(key, "@") {
			t.Fatalf("raw email leaked into key %q", key)
		}
	}
}

func TestLoginThrottlePreservesBodyForHandler(t *testing.T) {
	store := &stubThrottleStore{}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = string(raw)
	})
	handler := LoginThrottle(NewLoginThrottlePolicy("login", time.Minute, 0, 5), store, nil)(next)

	body := `{"email":"owner@petalpost.co.th","password":"secret"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	handler.ServeHTTP(rec, req)

	if seen != body {
		t.Fatalf("handler saw %q", seen)
	}
}

func TestLoginThrottleDisabledPolicyIsTransparent(t *testing.T) {
	store := &stubThrottleStore{}
	var passed int
	handler := throttledHandler(NewLoginThrottlePolicy("login", 0, 10, 10), store, &passed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if passed != 1 || len(store.keys) != 0 {
		t.Fatalf("passed = %d, keys = %v", passed, store.keys)
	}
}
