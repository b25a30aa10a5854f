// Package router resolves a request's method and path to a registered route.
//
// Routes are tried strictly in registration order, first match wins. The
// route table is built during startup and must not be mutated once the server
// accepts connections; after that point it is shared read-only by every
// connection goroutine.
package router

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/AxewBoTX/browzer/core/http"
	"github.com/AxewBoTX/browzer/core/middleware"
)

var (
	// ErrRouteNotFound means no registered pattern matches the path.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMethodNotAllowed means a pattern matches the path but not the method.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrRouteConflict means the registration would be indistinguishable from
	// an existing route for some request.
	ErrRouteConflict = errors.New("route conflict")

	// ErrInvalidPattern means the pattern itself cannot be parsed.
	ErrInvalidPattern = errors.New("invalid route pattern")
)

type segmentKind uint8

const (
	segLiteral  segmentKind = iota
	segParam                // :name, captures one path segment
	segWildcard             // *name, captures the remaining path unsplit
)

type segment struct {
	kind segmentKind
	// literal text for segLiteral, capture name otherwise
	value string
}

// Route binds a method and path pattern to a handler and the middleware
// scoped to it. Routes are created at registration time and immutable after.
type Route struct {
	Method     string
	Pattern    string
	Handler    http.HandlerFunc
	Middleware []middleware.Middleware

	segments []segment
}

// Router holds the ordered route table.
type Router struct {
	routes []*Route
	logger *zap.Logger
}

// New creates an empty router. A nil logger disables diagnostics.
func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{logger: logger}
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	return r.routes
}

// Add registers a route. Registration fails with ErrRouteConflict when an
// existing route with the same method would match exactly the same requests;
// a literal overlapping a parameter at the same position is legal (first
// match wins) but is reported through the logger so shadowing is never
// silent.
func (r *Router) Add(method, pattern string, h http.HandlerFunc, mws ...middleware.Middleware) (*Route, error) {
	if h == nil {
		return nil, errors.Wrap(ErrInvalidPattern, "nil handler")
	}
	segs, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}

	route := &Route{
		Method:     method,
		Pattern:    pattern,
		Handler:    h,
		Middleware: mws,
		segments:   segs,
	}

	for _, existing := range r.routes {
		if existing.Method != method {
			continue
		}
		if indistinguishable(existing.segments, segs) {
			return nil, errors.Wrapf(ErrRouteConflict,
				"%s %s already registered as %s", method, pattern, existing.Pattern)
		}
		if overlaps(existing.segments, segs) {
			r.logger.Warn("route overlap, first registration wins",
				zap.String("method", method),
				zap.String("registered", existing.Pattern),
				zap.String("added", pattern),
			)
		}
	}

	r.routes = append(r.routes, route)
	return route, nil
}

// Find resolves method and path to a route and its captured parameters.
// Routes are tried in registration order; the first whose pattern matches the
// path and whose method matches wins. A path that matches some pattern only
// under a different method yields ErrMethodNotAllowed, otherwise
// ErrRouteNotFound.
func (r *Router) Find(method, path string) (*Route, map[string]string, error) {
	parts := splitPath(path)

	pathMatched := false
	for _, route := range r.routes {
		params, ok := match(route.segments, parts)
		if !ok {
			continue
		}
		if route.Method != method {
			pathMatched = true
			continue
		}
		return route, params, nil
	}

	if pathMatched {
		return nil, nil, errors.Wrapf(ErrMethodNotAllowed, "%s %s", method, path)
	}
	return nil, nil, errors.Wrapf(ErrRouteNotFound, "%s %s", method, path)
}

// parsePattern splits a pattern into tagged segments. Patterns must begin
// with '/'; a wildcard is only legal as the final segment.
func parsePattern(pattern string) ([]segment, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q must begin with '/'", pattern)
	}
	parts := splitPath(pattern)
	segs := make([]segment, 0, len(parts))
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return nil, errors.Wrapf(ErrInvalidPattern, "%q: parameter segment needs a name", pattern)
			}
			segs = append(segs, segment{kind: segParam, value: name})
		case strings.HasPrefix(part, "*"):
			name := part[1:]
			if name == "" {
				return nil, errors.Wrapf(ErrInvalidPattern, "%q: wildcard segment needs a name", pattern)
			}
			if i != len(parts)-1 {
				return nil, errors.Wrapf(ErrInvalidPattern, "%q: wildcard must be the final segment", pattern)
			}
			segs = append(segs, segment{kind: segWildcard, value: name})
		default:
			segs = append(segs, segment{kind: segLiteral, value: part})
		}
	}
	return segs, nil
}

// splitPath splits a path into segments, normalizing a trailing slash so
// "/users/" and "/users" resolve identically. The root path has no segments.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match reports whether parts satisfy segs, capturing parameters. Wildcards
// consume the remaining path unsplit.
func match(segs []segment, parts []string) (map[string]string, bool) {
	var params map[string]string
	capture := func(name, value string) {
		if params == nil {
			params = make(map[string]string, 2)
		}
		params[name] = value
	}

	for i, seg := range segs {
		if seg.kind == segWildcard {
			// An empty remainder still matches, capturing "".
			capture(seg.value, strings.Join(parts[i:], "/"))
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.kind {
		case segLiteral:
			if parts[i] != seg.value {
				return nil, false
			}
		case segParam:
			capture(seg.value, parts[i])
		}
	}
	if len(parts) != len(segs) {
		return nil, false
	}
	return params, true
}

// indistinguishable reports whether two patterns accept exactly the same
// paths: equal literals and parameters at every position (capture names do
// not distinguish patterns), or wildcards from the same position.
func indistinguishable(a, b []segment) bool {
	if len(a) != len(b) {
		// A wildcard tail can still collide with a longer pattern only if
		// both end in wildcards at the same position, which implies equal
		// length; different lengths without that are distinguishable.
		return false
	}
	for i := range a {
		if a[i].kind != b[i].kind {
			return false
		}
		if a[i].kind == segLiteral && a[i].value != b[i].value {
			return false
		}
	}
	return true
}

// overlaps reports whether some request path matches both patterns, which
// happens when every position pairs a literal with an equal literal, a
// parameter, or another parameter. Wildcard positions overlap with anything.
func overlaps(a, b []segment) bool {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		// The root pattern is only reachable through a bare wildcard.
		return len(long) > 0 && long[0].kind == segWildcard
	}
	for i := range long {
		if i >= len(short) {
			// The longer pattern has leftover segments; only a wildcard tail
			// on the shorter one can still absorb them.
			return short[len(short)-1].kind == segWildcard
		}
		as, bs := short[i], long[i]
		if as.kind == segWildcard || bs.kind == segWildcard {
			return true
		}
		if as.kind == segLiteral && bs.kind == segLiteral && as.value != bs.value {
			return false
		}
	}
	return true
}
