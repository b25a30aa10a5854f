package http

// Canonical header names used across the engine.
const (
	HeaderContentType      = "Content-Type"
	HeaderContentLength    = "Content-Length"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderConnection       = "Connection"
	HeaderHost             = "Host"
	HeaderUserAgent        = "User-Agent"
	HeaderAccept           = "Accept"
	HeaderAuthorization    = "Authorization"
	HeaderWWWAuthenticate  = "WWW-Authenticate"
	HeaderLocation         = "Location"
	HeaderCookie           = "Cookie"
	HeaderSetCookie        = "Set-Cookie"
)

// Common content types.
const (
	ContentTypePlain  = "text/plain"
	ContentTypeJSON   = "application/json"
	ContentTypeForm   = "application/x-www-form-urlencoded"
	ContentTypeBinary = "application/octet-stream"
)
