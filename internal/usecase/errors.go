package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrPersistence           = errors.New("persistence failure")

	// ErrTickInProgress is returned when an alert tick is requested while one runs.
	ErrTickInProgress = errors.New("alert tick already running")

	// Upstream sports API failures. Clients wrap one of these so callers can
	// tell a rate limit apart from an outage.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrUpstreamProtocol    = errors.New("upstream protocol error")
)

// IsUpstreamFailure reports whether err came from the sports API.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamRateLimited) ||
		errors.Is(err, ErrUpstreamUnreachable) ||
		errors.Is(err, ErrUpstreamProtocol)
}
