package http

import (
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMalformedRequestLine is returned when the request line does not hold
	// three well-formed tokens or the method is not recognized.
	ErrMalformedRequestLine = errors.New("malformed request line")

	// ErrInvalidContentLength is returned for a Content-Length header that is
	// not a non-negative integer.
	ErrInvalidContentLength = errors.New("invalid Content-Length header")

	// ErrUnsupportedEncoding is returned when the client announces chunked
	// transfer encoding, which the engine does not implement.
	ErrUnsupportedEncoding = errors.New("transfer encoding not supported")
)

// ReadRequest consumes one HTTP/1.1 request from the stream. io.EOF surfaces
// unchanged when the connection ends cleanly between requests; every other
// failure is one of the parser sentinels or a transport error.
func ReadRequest(sr *StreamReader) (*Request, error) {
	line, err := sr.ReadLine()
	if err != nil {
		return nil, err
	}

	req := &Request{Headers: make(map[string]string)}
	if err := parseRequestLine(req, line); err != nil {
		return nil, err
	}
	if err := parseHeaders(req, sr); err != nil {
		return nil, err
	}

	if te := req.Header(HeaderTransferEncoding); te != "" {
		if strings.Contains(strings.ToLower(te), "chunked") {
			return nil, errors.Wrapf(ErrUnsupportedEncoding, "Transfer-Encoding: %s", te)
		}
	}

	if cl := req.Header(HeaderContentLength); cl != "" {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || n < 0 {
			return nil, errors.Wrapf(ErrInvalidContentLength, "Content-Length: %s", cl)
		}
		if req.Body, err = sr.ReadExact(n); err != nil {
			return nil, err
		}
	}

	if ct := req.Header(HeaderContentType); ct != "" {
		if mediaType, _, _ := strings.Cut(ct, ";"); strings.TrimSpace(mediaType) == ContentTypeForm {
			req.Form = parseEncodedPairs(string(req.Body))
		}
	}

	if cookie := req.Header(HeaderCookie); cookie != "" {
		req.Cookies = parseCookies(cookie)
	}

	return req, nil
}

// parseRequestLine splits "METHOD SP TARGET SP VERSION" and decodes the target
// into path and query.
func parseRequestLine(req *Request, line string) error {
	method, rest, ok := strings.Cut(line, " ")
	if !ok {
		return errors.Wrapf(ErrMalformedRequestLine, "%q", line)
	}
	target, proto, ok := strings.Cut(rest, " ")
	if !ok || target == "" || strings.Contains(proto, " ") {
		return errors.Wrapf(ErrMalformedRequestLine, "%q", line)
	}
	if _, known := recognizedMethods[method]; !known {
		return errors.Wrapf(ErrMalformedRequestLine, "unrecognized method %q", method)
	}
	if !strings.HasPrefix(proto, "HTTP/") {
		return errors.Wrapf(ErrMalformedRequestLine, "bad version %q", proto)
	}

	req.Method = method
	req.Proto = proto

	rawPath, rawQuery, _ := strings.Cut(target, "?")
	path, err := decodePath(rawPath)
	if err != nil {
		return err
	}
	req.Path = path
	if rawQuery != "" {
		req.Query = parseEncodedPairs(rawQuery)
	}
	return nil
}

// parseHeaders reads "Name: Value" lines until the blank separator line.
// Names are canonicalized; a duplicate name keeps its last occurrence.
func parseHeaders(req *Request, sr *StreamReader) error {
	for {
		line, err := sr.ReadLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			// A junk line without a separator is dropped rather than failing
			// the whole request.
			continue
		}
		key := textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))
		req.Headers[key] = strings.TrimSpace(value)
	}
}

// decodePath percent-decodes every path segment.
func decodePath(raw string) (string, error) {
	if !strings.Contains(raw, "%") {
		return raw, nil
	}
	parts := strings.Split(raw, "/")
	for i, part := range parts {
		dec, err := url.PathUnescape(part)
		if err != nil {
			return "", errors.Wrapf(ErrMalformedRequestLine, "bad escape in path segment %q", part)
		}
		parts[i] = dec
	}
	return strings.Join(parts, "/"), nil
}

// parseEncodedPairs decodes "k=v&k2=v2" into a map, percent-decoding keys and
// values. The last value wins on a duplicate key; pairs with an empty key or a
// broken escape are dropped.
func parseEncodedPairs(s string) map[string]string {
	if s == "" {
		return nil
	}
	pairs := make(map[string]string)
	for _, part := range strings.Split(s, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key, kerr := url.QueryUnescape(key)
		value, verr := url.QueryUnescape(value)
		if key == "" || kerr != nil || verr != nil {
			continue
		}
		pairs[key] = value
	}
	return pairs
}

// parseCookies decodes a Cookie header ("a=1; b=2") into name/value pairs.
func parseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		cookies[name] = strings.TrimSpace(value)
	}
	return cookies
}
