package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeLimiter struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func tenantRequest(method string, tenantID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/loans", nil)
	return req.WithContext(WithTenant(req.Context(), TenantContext{TenantID: tenantID, ActorID: uuid.New()}))
}

func TestTenantRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	policy := RateLimitPolicy{Window: time.Minute, Limit: 2}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := TenantRateLimit(policy, limiter, nil)(ok)

	busy, quiet := uuid.New(), uuid.New()
	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, tenantRequest(http.MethodPost, busy))
		assert.Equal(t, http.StatusOK, resp.Code)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, tenantRequest(http.MethodPost, busy))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "60", resp.Header().Get("Retry-After"))

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, tenantRequest(http.MethodGet, busy))
	assert.Equal(t, http.StatusOK, resp.Code, "reads are not throttled")

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, tenantRequest(http.MethodPost, quiet))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestTenantRateLimitStoreFailure(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	resp := httptest.NewRecorder()
	TenantRateLimit(RateLimitPolicy{Window: time.Minute, Limit: 5}, limiter, nil)(ok).ServeHTTP(resp, tenantRequest(http.MethodPost, uuid.New()))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestTenantRateLimitDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	resp := httptest.NewRecorder()
	TenantRateLimit(RateLimitPolicy{}, &fakeLimiter{err: errors.New("unused")}, nil)(ok).ServeHTTP(resp, tenantRequest(http.MethodPost, uuid.New()))
	assert.Equal(t, http.StatusOK, resp.Code)
}
