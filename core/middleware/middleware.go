// Package middleware implements the ordered middleware chain and the
// built-in middleware the engine ships with.
package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AxewBoTX/browzer/core/http"
)

// Middleware wraps a handler with one unit of request-processing logic. The
// wrapper receives the next link of the chain as its continue capability: it
// may mutate the Context and call next, finalize the Response itself and skip
// next (short-circuit), or return an error to abort the chain.
type Middleware func(next http.HandlerFunc) http.HandlerFunc

// Chain wraps h with mws. The middleware provided first is the outermost
// wrapping and therefore runs first; the terminal handler never receives a
// continue capability.
func Chain(h http.HandlerFunc, mws ...Middleware) http.HandlerFunc {
	wrapped := h
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

// Recovery converts a panic anywhere down the chain into a chain abort, so a
// misbehaving handler cannot kill its connection goroutine silently.
func Recovery(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(c *http.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered",
						zap.Any("panic", r),
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
					)
					err = errors.Newf("handler panicked: %v", r)
				}
			}()
			return next(c)
		}
	}
}

// AccessLog emits one structured event per completed request.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(c *http.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("request",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response.StatusCode),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("remote", c.RemoteAddr),
				zap.Error(err),
			)
			return err
		}
	}
}

// RequestIDKey is the Context store key under which RequestID places the id.
const RequestIDKey = "request_id"

// RequestID tags every request with a unique id, exposed to later links via
// the Context store and to the client via X-Request-ID.
func RequestID() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(c *http.Context) error {
			id := uuid.NewString()
			c.Set(RequestIDKey, id)
			c.SetHeader("X-Request-ID", id)
			return next(c)
		}
	}
}

// CORS adds permissive cross-origin headers and short-circuits preflight
// requests with 204.
func CORS() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(c *http.Context) error {
			c.SetHeader("Access-Control-Allow-Origin", "*")
			c.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
			c.SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if c.Method() == http.MethodOptions {
				return c.NoContent(204)
			}
			return next(c)
		}
	}
}

// RateLimiter allows up to requestsPerSecond requests, refilling once per
// second, and short-circuits the rest with 429.
func RateLimiter(requestsPerSecond int) Middleware {
	var (
		mu         sync.Mutex
		tokens     = requestsPerSecond
		lastRefill = time.Now()
	)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(c *http.Context) error {
			mu.Lock()
			now := time.Now()
			if now.Sub(lastRefill) > time.Second {
				tokens = requestsPerSecond
				lastRefill = now
			}
			allowed := tokens > 0
			if allowed {
				tokens--
			}
			mu.Unlock()

			if !allowed {
				return c.String(429, http.StatusText(429))
			}
			return next(c)
		}
	}
}

// BasicAuth short-circuits with 401 unless the request carries matching
// credentials in an Authorization: Basic header.
func BasicAuth(username, password string) Middleware {
	want := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(c *http.Context) error {
			auth := c.Header(http.HeaderAuthorization)
			got, ok := strings.CutPrefix(auth, "Basic ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(want)) != 1 {
				c.SetHeader(http.HeaderWWWAuthenticate, `Basic realm="restricted"`)
				return c.String(401, http.StatusText(401))
			}
			return next(c)
		}
	}
}
