package http

import (
	"net/textproto"
	"strings"
)

// Methods the parser recognizes. Anything else fails the request line.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

var recognizedMethods = map[string]struct{}{
	MethodGet:     {},
	MethodPost:    {},
	MethodPut:     {},
	MethodDelete:  {},
	MethodPatch:   {},
	MethodHead:    {},
	MethodOptions: {},
}

// Request is a fully parsed HTTP request. It is built once by the parser and
// owned by a single Context; nothing mutates it afterwards.
type Request struct {
	Method string
	Path   string // percent-decoded, query stripped
	Proto  string

	// Headers hold canonicalized names. A repeated header name keeps the last
	// occurrence.
	Headers map[string]string

	// Query holds decoded query parameters, last value wins on duplicates.
	Query map[string]string

	// Form holds the decoded body of an application/x-www-form-urlencoded
	// request; nil for every other content type.
	Form map[string]string

	// Cookies holds name -> value pairs from the Cookie header.
	Cookies map[string]string

	// Body is the raw body, exactly Content-Length bytes, nil when the header
	// is absent.
	Body []byte
}

// Header returns a header value by case-insensitive name.
func (r *Request) Header(key string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(key)]
}

// QueryValue returns a decoded query parameter, or "".
func (r *Request) QueryValue(key string) string {
	return r.Query[key]
}

// FormValue returns a decoded form field, or "" when the body was not a form.
func (r *Request) FormValue(key string) string {
	return r.Form[key]
}

// CookieValue returns a request cookie value by name.
func (r *Request) CookieValue(name string) string {
	return r.Cookies[name]
}

// KeepAlive reports whether the client permits reusing the connection:
// HTTP/1.1 default unless "Connection: close", HTTP/1.0 only on an explicit
// "Connection: keep-alive".
func (r *Request) KeepAlive() bool {
	conn := strings.ToLower(strings.TrimSpace(r.Header(HeaderConnection)))
	if r.Proto == "HTTP/1.0" {
		return conn == "keep-alive"
	}
	return conn != "close"
}
