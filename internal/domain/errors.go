package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ValidationError reports malformed caller input (IATA code, currency code,
// negative amount). Its message is safe to show to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthenticationError means the client-credentials exchange was rejected.
type AuthenticationError struct {
	Status int
	Body   string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Body)
}

// ProviderError is any unexpected non-success response from an external API.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.Status, e.Body)
}

// NotFoundError is an explicit zero-results signal from a provider. Callers
// decide whether it is fatal; during enrichment it never is.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// TimeoutError wraps a deadline overrun on a single external call.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NoResultsError means the pipeline ran to completion but nothing matched
// the request constraints. It is user-actionable, not a transport failure.
type NoResultsError struct {
	Origin      string
	Budget      int
	TravelStyle string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no destinations found from %s within budget %d for %s trips - try a larger budget or flexible dates",
		e.Origin, e.Budget, e.TravelStyle)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTimeout reports whether err is a deadline overrun, either our own
// TimeoutError or a raw context/network timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
