package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/petalpost/florist-backend/api/responses"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// loginThrottleStore is the slice of the redis client the throttle uses:
// namespaced key construction plus a windowed counter.
type loginThrottleStore interface {
	RateLimitKey(scope string) string
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// LoginThrottlePolicy caps credential-guessing traffic on an auth surface,
// counted per source IP and per target account within a rolling window.
type LoginThrottlePolicy struct {
	surface      string
	window       time.Duration
	ipLimit      int
	accountLimit int
}

// NewLoginThrottlePolicy builds a policy for one auth surface. A zero
// window or all-zero limits disable the throttle.
func NewLoginThrottlePolicy(surface string, window time.Duration, ipLimit, accountLimit int) LoginThrottlePolicy {
	return LoginThrottlePolicy{
		surface:      strings.ToLower(strings.TrimSpace(surface)),
		window:       window,
		ipLimit:      ipLimit,
		accountLimit: accountLimit,
	}
}

func (p LoginThrottlePolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.accountLimit > 0)
}

func (p LoginThrottlePolicy) surfaceName() string {
	if p.surface == "" {
		return "login"
	}
	return p.surface
}

// ipScope and accountScope name the counter within the store's rate-limit
// namespace; the store prepends the service prefix.
func (p LoginThrottlePolicy) ipScope(ip string) string {
	return p.surfaceName() + ":ip:" + ip
}

func (p LoginThrottlePolicy) accountScope(hash string) string {
	return p.surfaceName() + ":acct:" + hash
}

// LoginThrottle rejects requests once either counter for the surface
// exceeds its limit. Account identity is the sha256 of the normalized
// email so raw addresses never land in redis.
func LoginThrottle(policy LoginThrottlePolicy, store loginThrottleStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if policy.ipLimit > 0 && ip != "" {
				count, err := store.IncrWithTTL(ctx, store.RateLimitKey(policy.ipScope(ip)), policy.window)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(policy.ipLimit) {
					throttled(ctx, logg, w, policy, "ip", ip, "", count, policy.ipLimit)
					return
				}
			}

			if policy.accountLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if hash := accountHash(body); hash != "" {
					count, err := store.IncrWithTTL(ctx, store.RateLimitKey(policy.accountScope(hash)), policy.window)
					if err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if count > int64(policy.accountLimit) {
						throttled(ctx, logg, w, policy, "account", "", hash, count, policy.accountLimit)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func throttled(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy LoginThrottlePolicy, scope, ip, acctHash string, count int64, limit int) {
	if logg != nil {
		fields := map[string]any{
			"scope":          scope,
			"surface":        policy.surfaceName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		if ip != "" {
			fields["ip"] = ip
		}
		if acctHash != "" {
			fields["account_hash"] = acctHash
		}
		logg.Warn(logg.WithFields(ctx, fields), "auth.login_throttled")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// accountHash digests the email carried in a login payload. Empty when
// the body carries none, which leaves only the IP counter in force.
func accountHash(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
