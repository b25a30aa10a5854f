package http

import (
	"io"
	"net/textproto"
	"sort"
	"strconv"
	"time"

	"github.com/AxewBoTX/browzer/core/pools"
)

// Response is the in-progress reply for one request. Middleware and the
// handler build it incrementally; the engine serializes it to the wire once
// the chain finishes.
type Response struct {
	StatusCode int
	Headers    map[string]string

	// Body holds an in-memory body. For streamed content set Stream and
	// ContentLength instead and leave Body nil.
	Body          []byte
	Stream        io.Reader
	ContentLength int64

	cookies []*Cookie
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{
		StatusCode: 200,
		Headers:    make(map[string]string),
	}
}

// SetHeader sets a response header by case-insensitive name.
func (r *Response) SetHeader(key, value string) {
	r.Headers[textproto.CanonicalMIMEHeaderKey(key)] = value
}

// Header returns a previously set header value.
func (r *Response) Header(key string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(key)]
}

// SetCookie appends a Set-Cookie header to the response.
func (r *Response) SetCookie(c *Cookie) {
	r.cookies = append(r.cookies, c)
}

// BodyLength returns the number of body bytes the response will carry.
func (r *Response) BodyLength() int64 {
	if r.Stream != nil {
		return r.ContentLength
	}
	return int64(len(r.Body))
}

// CloseStream releases a streamed body if it holds an OS resource. Safe to
// call on any response.
func (r *Response) CloseStream() {
	if c, ok := r.Stream.(io.Closer); ok {
		c.Close()
	}
	r.Stream = nil
}

// WriteHeader serializes the status line and header block, including the
// terminating blank line, into w.
func (r *Response) WriteHeader(w io.Writer) error {
	buf := pools.GetBytes(2048)[:0]
	defer pools.PutBytes(buf)

	buf = append(buf, "HTTP/1.1 "...)
	buf = strconv.AppendInt(buf, int64(r.StatusCode), 10)
	buf = append(buf, ' ')
	buf = append(buf, StatusText(r.StatusCode)...)
	buf = append(buf, "\r\nContent-Length: "...)
	buf = strconv.AppendInt(buf, r.BodyLength(), 10)
	buf = append(buf, '\r', '\n')

	// Stable header order keeps serialized output deterministic.
	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		if k == HeaderContentLength {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf = append(buf, k...)
		buf = append(buf, ':', ' ')
		buf = append(buf, r.Headers[k]...)
		buf = append(buf, '\r', '\n')
	}

	for _, c := range r.cookies {
		buf = append(buf, HeaderSetCookie...)
		buf = append(buf, ':', ' ')
		buf = append(buf, c.String()...)
		buf = append(buf, '\r', '\n')
	}

	buf = append(buf, '\r', '\n')
	_, err := w.Write(buf)
	return err
}

// WriteTo serializes the full response to w: status line, headers,
// Content-Length, blank line, then the body bytes or the streamed body.
func (r *Response) WriteTo(w io.Writer) error {
	if err := r.WriteHeader(w); err != nil {
		return err
	}
	if r.Stream != nil {
		_, err := io.CopyN(w, r.Stream, r.ContentLength)
		return err
	}
	if len(r.Body) > 0 {
		if _, err := w.Write(r.Body); err != nil {
			return err
		}
	}
	return nil
}

// Cookie is a response cookie, serialized as a Set-Cookie header.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int
	Secure   bool
	HTTPOnly bool
}

const cookieTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// String renders the Set-Cookie attribute line.
func (c *Cookie) String() string {
	b := make([]byte, 0, 64)
	b = append(b, c.Name...)
	b = append(b, '=')
	b = append(b, c.Value...)
	if c.Path != "" {
		b = append(b, "; Path="...)
		b = append(b, c.Path...)
	}
	if c.Domain != "" {
		b = append(b, "; Domain="...)
		b = append(b, c.Domain...)
	}
	if !c.Expires.IsZero() {
		b = append(b, "; Expires="...)
		b = append(b, c.Expires.UTC().Format(cookieTimeFormat)...)
	}
	if c.MaxAge != 0 {
		b = append(b, "; Max-Age="...)
		b = strconv.AppendInt(b, int64(c.MaxAge), 10)
	}
	if c.Secure {
		b = append(b, "; Secure"...)
	}
	if c.HTTPOnly {
		b = append(b, "; HttpOnly"...)
	}
	return string(b)
}

// StatusText returns the reason phrase for a status code.
func StatusText(code int) string {
	switch code {
	case 100:
		return "Continue"
	case 101:
		return "Switching Protocols"
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 202:
		return "Accepted"
	case 204:
		return "No Content"
	case 206:
		return "Partial Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 303:
		return "See Other"
	case 304:
		return "Not Modified"
	case 307:
		return "Temporary Redirect"
	case 308:
		return "Permanent Redirect"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 408:
		return "Request Timeout"
	case 409:
		return "Conflict"
	case 411:
		return "Length Required"
	case 413:
		return "Payload Too Large"
	case 415:
		return "Unsupported Media Type"
	case 429:
		return "Too Many Requests"
	case 431:
		return "Request Header Fields Too Large"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	case 504:
		return "Gateway Timeout"
	default:
		return "Unknown"
	}
}
