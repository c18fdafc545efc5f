package apperr

import (
	"errors"
	"net/http"
)

// Sentinels for the error classes the API surfaces. Handlers map them to
// status codes with HTTPStatus and to machine-readable codes with Code.
var (
	// ErrUnauthorized means no valid session was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the ownership chain resolved to a different user.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers a missing resource or any missing ancestor in its
	// ownership chain. Dangling chains report NotFound, never Forbidden.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists signals a uniqueness violation (duplicate email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoDesign: the optimization has no optimized design to apply or
	// generate code from.
	ErrNoDesign = errors.New("no optimized design")
	// ErrMissingData: a refinement pass needs both the original and the
	// optimized design and at least one is absent.
	ErrMissingData = errors.New("missing design data")
	// ErrNoOptimization: the page has no optimization to refine.
	ErrNoOptimization = errors.New("no optimization for page")

	// ErrThrottled: the per-user request window is exhausted.
	ErrThrottled = errors.New("rate limit exceeded")

	// Upstream collaborator failures.
	ErrUpstreamTimeout = errors.New("upstream timed out")
	ErrUpstreamFormat  = errors.New("upstream returned malformed data")
	ErrUpstream        = errors.New("upstream request failed")
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrNoDesign),
		errors.Is(err, ErrMissingData),
		errors.Is(err, ErrNoOptimization):
		return http.StatusBadRequest
	case errors.Is(err, ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstreamTimeout),
		errors.Is(err, ErrUpstreamFormat),
		errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNoDesign):
		return "no_design"
	case errors.Is(err, ErrMissingData):
		return "missing_data"
	case errors.Is(err, ErrNoOptimization):
		return "no_optimization"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case errors.Is(err, ErrUpstreamTimeout):
		return "upstream_timeout"
	case errors.Is(err, ErrUpstreamFormat):
		return "upstream_format"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}

// IsClientError reports whether err should be logged at warn rather than
// error level: the request was wrong, not the server.
func IsClientError(err error) bool {
	s := HTTPStatus(err)
	return s >= 400 && s < 500
}
