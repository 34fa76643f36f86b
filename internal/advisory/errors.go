package advisory

import (
	"context"
	"errors"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured maximum.
var ErrBatchTooLarge = errors.New("batch exceeds maximum size")

// ErrorKind classifies advisory failures for callers and metrics.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindConfiguration  ErrorKind = "configuration"
	KindDataFetch      ErrorKind = "data_fetch"
	KindTimeout        ErrorKind = "timeout"
	KindInternal       ErrorKind = "internal"
)

// Classify maps an error returned by the service to its kind.
func Classify(err error) ErrorKind {
	var cfgErr *domain.ConfigurationError
	var fetchErr *domain.DataFetchError
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrBatchTooLarge):
		return KindInvalidRequest
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &fetchErr):
		if fetchErr.Timeout() {
			return KindTimeout
		}
		return KindDataFetch
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindInternal
	}
}
