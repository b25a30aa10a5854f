package core

import (
	"github.com/cockroachdb/errors"

	"github.com/AxewBoTX/browzer/core/http"
	"github.com/AxewBoTX/browzer/core/router"
	"github.com/AxewBoTX/browzer/core/static"
)

// StatusFor maps an error from anywhere in the pipeline to the HTTP status
// the connection handler recovers it as. Errors outside the taxonomy, such as
// an aborted middleware chain, fall through to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, http.ErrMalformedRequestLine),
		errors.Is(err, http.ErrInvalidContentLength),
		errors.Is(err, http.ErrIncompleteBody),
		errors.Is(err, http.ErrUnsupportedEncoding):
		return 400
	case errors.Is(err, http.ErrLineTooLong):
		return 431
	case errors.Is(err, router.ErrRouteNotFound),
		errors.Is(err, static.ErrFileNotFound):
		return 404
	case errors.Is(err, router.ErrMethodNotAllowed):
		return 405
	case errors.Is(err, static.ErrForbiddenPath):
		return 403
	default:
		return 500
	}
}
