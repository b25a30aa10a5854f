package core

import (
	"github.com/AxewBoTX/browzer/core/http"
	"github.com/AxewBoTX/browzer/core/static"
)

// Group registers routes under a shared path prefix and middleware list.
// Group middleware runs after the engine's global middleware and before any
// route-specific middleware.
type Group struct {
	engine *Engine
	prefix string
	mws    []Middleware
}

// Group creates a route group. The prefix must be empty or begin with '/'.
func (e *Engine) Group(prefix string, mws ...Middleware) *Group {
	return &Group{engine: e, prefix: prefix, mws: mws}
}

// Group nests a sub-group, concatenating prefixes and middleware.
func (g *Group) Group(prefix string, mws ...Middleware) *Group {
	combined := make([]Middleware, 0, len(g.mws)+len(mws))
	combined = append(combined, g.mws...)
	combined = append(combined, mws...)
	return &Group{engine: g.engine, prefix: g.prefix + prefix, mws: combined}
}

// Handle registers a route under the group's prefix.
func (g *Group) Handle(method, pattern string, h HandlerFunc, mws ...Middleware) error {
	combined := make([]Middleware, 0, len(g.mws)+len(mws))
	combined = append(combined, g.mws...)
	combined = append(combined, mws...)
	return g.engine.Handle(method, g.prefix+pattern, h, combined...)
}

// GET registers a GET route under the group's prefix.
func (g *Group) GET(pattern string, h HandlerFunc, mws ...Middleware) error {
	return g.Handle(http.MethodGet, pattern, h, mws...)
}

// POST registers a POST route under the group's prefix.
func (g *Group) POST(pattern string, h HandlerFunc, mws ...Middleware) error {
	return g.Handle(http.MethodPost, pattern, h, mws...)
}

// PUT registers a PUT route under the group's prefix.
func (g *Group) PUT(pattern string, h HandlerFunc, mws ...Middleware) error {
	return g.Handle(http.MethodPut, pattern, h, mws...)
}

// DELETE registers a DELETE route under the group's prefix.
func (g *Group) DELETE(pattern string, h HandlerFunc, mws ...Middleware) error {
	return g.Handle(http.MethodDelete, pattern, h, mws...)
}

// PATCH registers a PATCH route under the group's prefix.
func (g *Group) PATCH(pattern string, h HandlerFunc, mws ...Middleware) error {
	return g.Handle(http.MethodPatch, pattern, h, mws...)
}

// Static maps dir onto GET <group prefix><prefix>/*filepath.
func (g *Group) Static(prefix, dir string) error {
	return g.GET(prefix+"/*filepath", static.Handler(dir, "filepath"))
}
