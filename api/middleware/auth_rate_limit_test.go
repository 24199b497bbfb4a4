package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubLimiterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newStubLimiterStore() *stubLimiterStore {
	return &stubLimiterStore{counts: make(map[string]int64)}
}

func (s *stubLimiterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubLimiterStore) RateLimitKey(scope string) string {
	return "rp:rate_limit:" + scope
}

func loginRequest(username string) *http.Request {
	body := `{"username":"` + username + `","password":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51000"
	return req
}

func TestAuthRateLimitBlocksUsernameAfterLimit(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 3)

	var passed int
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("officer1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("officer1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on fourth attempt, got %d", rec.Code)
	}
	if passed != 3 {
		t.Fatalf("expected 3 passed requests, got %d", passed)
	}
}

func TestAuthRateLimitTracksUsernamesSeparately(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)

	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("officer1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first user should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("officer2"))
	if rec.Code != http.StatusOK {
		t.Fatalf("different user should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("officer1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("repeat user should be limited, got %d", rec.Code)
	}
}

func TestAuthRateLimitBlocksByIP(t *testing.T) {
	store := newStubLimiterStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)

	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("anyone"))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("anyone"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after ip limit, got %d", rec.Code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := AuthRateLimit(AuthRateLimitPolicy{}, newStubLimiterStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("anyone"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}
