package http

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/krobus00/derivex-service/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	errAPIKeyMissing  = errors.New("api key is required")
	errAPIKeyInvalid  = errors.New("invalid api key")
	errAPIKeyInactive = errors.New("api key is inactive")
	errAPIKeyExpired  = errors.New("api key is expired")
)

type apiKey struct {
	name      string
	secret    []byte
	active    bool
	expiredAt time.Time
	hasExpiry bool
}

// apiKeyGuard checks requests against the configured keys. Expiry values are
// parsed once; a key with an unreadable expiry is dropped and never matches.
type apiKeyGuard struct {
	keys []apiKey
	now  func() time.Time
}

func newAPIKeyGuard(configs []config.APIKeyConfig) *apiKeyGuard {
	keys := make([]apiKey, 0, len(configs))
	for _, cfg := range configs {
		secret := strings.TrimSpace(cfg.Key)
		if secret == "" {
			continue
		}

		expiredAt, hasExpiry, err := parseExpiry(cfg.ExpiredAt)
		if err != nil {
			logrus.WithField("api_key", cfg.Name).Warnf("api key ignored: %v", err)
			continue
		}

		keys = append(keys, apiKey{
			name:      cfg.Name,
			secret:    []byte(secret),
			active:    cfg.Active,
			expiredAt: expiredAt,
			hasExpiry: hasExpiry,
		})
	}

	return &apiKeyGuard{
		keys: keys,
		now:  time.Now,
	}
}

func (g *apiKeyGuard) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.check(resolveAPIKey(r)); err != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}

		next(w, r)
	}
}

func (g *apiKeyGuard) check(raw string) error {
	presented := strings.TrimSpace(raw)
	if presented == "" {
		return errAPIKeyMissing
	}

	for _, key := range g.keys {
		if subtle.ConstantTimeCompare([]byte(presented), key.secret) != 1 {
			continue
		}

		switch {
		case !key.active:
			return errAPIKeyInactive
		case key.hasExpiry && !g.now().UTC().Before(key.expiredAt):
			return errAPIKeyExpired
		default:
			return nil
		}
	}

	return errAPIKeyInvalid
}

// resolveAPIKey reads the X-API-Key header, falling back to the api_key query
// parameter for browser websocket clients that cannot set headers.
func resolveAPIKey(r *http.Request) string {
	if headerKey := strings.TrimSpace(r.Header.Get("X-API-Key")); headerKey != "" {
		return headerKey
	}

	return strings.TrimSpace(r.URL.Query().Get("api_key"))
}

// parseExpiry accepts a time.Time, an RFC 3339 string or a bare date. A bare
// date stays valid through the end of that day.
func parseExpiry(value any) (time.Time, bool, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v.UTC(), !v.IsZero(), nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false, nil
		}

		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC(), true, nil
		}

		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse expired_at %q: %w", raw, err)
		}

		return parsed.UTC().AddDate(0, 0, 1), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unsupported expired_at type %T", value)
	}
}
