package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krobus00/derivex-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyGuard_Check(t *testing.T) {
	guard := newAPIKeyGuard([]config.APIKeyConfig{
		{Name: "ops", Key: "ops-key", Active: true},
		{Name: "dated", Key: "dated-key", Active: true, ExpiredAt: "2026-03-01"},
		{Name: "stamped", Key: "stamped-key", Active: true, ExpiredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{Name: "off", Key: "off-key", Active: false},
		{Name: "broken", Key: "broken-key", Active: true, ExpiredAt: "next tuesday"},
		{Name: "blank", Key: "  ", Active: true},
	})
	guard.now = func() time.Time { return time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"active key", "ops-key", nil},
		{"padded key", "  ops-key ", nil},
		{"bare date valid until end of day", "dated-key", nil},
		{"timestamp in the past", "stamped-key", errAPIKeyExpired},
		{"inactive key", "off-key", errAPIKeyInactive},
		{"unreadable expiry never matches", "broken-key", errAPIKeyInvalid},
		{"unknown key", "nope", errAPIKeyInvalid},
		{"empty key", " ", errAPIKeyMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.check(tt.key))
		})
	}
}

func TestAPIKeyGuard_NoKeysConfigured(t *testing.T) {
	guard := newAPIKeyGuard(nil)
	assert.Equal(t, errAPIKeyInvalid, guard.check("anything"))
}

func TestAPIKeyGuard_Middleware_QueryFallback(t *testing.T) {
	guard := newAPIKeyGuard([]config.APIKeyConfig{{Name: "ops", Key: "ops-key", Active: true}})
	called := false
	handler := guard.middleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/exchange/v1/events/ws?api_key=ops-key", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)

	called = false
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/exchange/v1/events/ws?api_key=wrong", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestParseExpiry(t *testing.T) {
	at, ok, err := parseExpiry("2026-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), at)

	_, ok, err = parseExpiry(time.Time{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parseExpiry(42)
	require.Error(t, err)
}
