package http

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// HandlerFunc is the terminal unit of request processing: it receives the
// Context and must leave the Response finalized. A returned error aborts the
// request and hands it to the engine's error responder.
type HandlerFunc func(*Context) error

// Context carries the state of one request through the middleware chain to
// the handler: the parsed Request, the in-progress Response, path parameters
// captured during routing, and a free-form store for middleware-to-handler
// communication. A Context is owned by exactly one connection goroutine and
// is never shared.
type Context struct {
	Request  *Request
	Response *Response

	RemoteAddr string

	params map[string]string
	store  map[string]any
}

// NewContext builds a Context around a parsed request.
func NewContext(req *Request) *Context {
	return &Context{
		Request:  req,
		Response: NewResponse(),
	}
}

// Method returns the request method.
func (c *Context) Method() string { return c.Request.Method }

// Path returns the decoded request path.
func (c *Context) Path() string { return c.Request.Path }

// SetParam records a path parameter captured by the router.
func (c *Context) SetParam(key, value string) {
	if c.params == nil {
		c.params = make(map[string]string, 4)
	}
	c.params[key] = value
}

// Param returns a captured path parameter, or "".
func (c *Context) Param(key string) string {
	return c.params[key]
}

// Query returns a decoded query parameter, or "".
func (c *Context) Query(key string) string {
	return c.Request.QueryValue(key)
}

// FormValue returns a decoded form field from an urlencoded body, or "".
func (c *Context) FormValue(key string) string {
	return c.Request.FormValue(key)
}

// Header returns a request header by case-insensitive name.
func (c *Context) Header(key string) string {
	return c.Request.Header(key)
}

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.Response.SetHeader(key, value)
}

// Cookie returns a request cookie value by name.
func (c *Context) Cookie(name string) string {
	return c.Request.CookieValue(name)
}

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(cookie *Cookie) {
	c.Response.SetCookie(cookie)
}

// Body returns the raw request body.
func (c *Context) Body() []byte {
	return c.Request.Body
}

// Set stores a value for later links of the chain.
func (c *Context) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any, 4)
	}
	c.store[key] = value
}

// Get looks up a stored value. The second result reports presence, so a
// missing key is a recoverable condition, not a crash.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.store[key]
	return v, ok
}

// GetString looks up a stored value and downcasts it to string; "" when the
// key is absent or holds another type.
func (c *Context) GetString(key string) string {
	if v, ok := c.store[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Status sets the response status code without touching the body.
func (c *Context) Status(code int) {
	c.Response.StatusCode = code
}

// String finalizes the response with a plain-text body.
func (c *Context) String(code int, s string) error {
	c.Response.StatusCode = code
	c.Response.SetHeader(HeaderContentType, ContentTypePlain)
	c.Response.Body = []byte(s)
	return nil
}

// JSON finalizes the response with a JSON-encoded body.
func (c *Context) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode response body")
	}
	c.Response.StatusCode = code
	c.Response.SetHeader(HeaderContentType, ContentTypeJSON)
	c.Response.Body = data
	return nil
}

// Bytes finalizes the response with a binary body.
func (c *Context) Bytes(code int, data []byte) error {
	return c.Data(code, ContentTypeBinary, data)
}

// Data finalizes the response with an explicit content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	c.Response.StatusCode = code
	c.Response.SetHeader(HeaderContentType, contentType)
	c.Response.Body = data
	return nil
}

// NoContent finalizes an empty response.
func (c *Context) NoContent(code int) error {
	c.Response.StatusCode = code
	c.Response.Body = nil
	return nil
}

// Redirect finalizes a redirect to location.
func (c *Context) Redirect(code int, location string) error {
	c.Response.StatusCode = code
	c.Response.SetHeader(HeaderLocation, location)
	return nil
}

// Bind decodes a JSON request body into v.
func (c *Context) Bind(v any) error {
	return json.Unmarshal(c.Request.Body, v)
}
