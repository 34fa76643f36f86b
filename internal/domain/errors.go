package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptySeries is returned when a weather series has no records.
	ErrEmptySeries = errors.New("weather series is empty")

	// ErrMalformedSeries is returned when a weather series is out of order or
	// carries values the water balance cannot use.
	ErrMalformedSeries = errors.New("malformed weather series")

	// ErrInvalidTable is returned when a parameter table entry is out of range.
	ErrInvalidTable = errors.New("invalid parameter table")

	// ErrInvalidInputs is returned when water balance inputs are out of range.
	ErrInvalidInputs = errors.New("invalid water balance inputs")
)

// ConfigKind names the parameter table a configuration key is resolved against.
type ConfigKind string

const (
	KindCrop   ConfigKind = "crop"
	KindStage  ConfigKind = "stage"
	KindSoil   ConfigKind = "soil"
	KindMethod ConfigKind = "method"
)

// ConfigurationError reports a selection key that does not exist in the
// parameter tables. It is never substituted with a default.
type ConfigurationError struct {
	Kind ConfigKind
	Key  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

// DataFetchError reports a weather provider that was unreachable, timed out,
// or returned data that could not be used. The request can be retried later.
type DataFetchError struct {
	Provider   string
	Op         string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *DataFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch failed because its deadline passed.
func (e *DataFetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}
