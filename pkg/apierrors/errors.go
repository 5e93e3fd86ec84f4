// Package apierrors defines the closed error taxonomy for the Aetherfy
// vectors service and the classifier that maps transport outcomes onto it.
//
// Callers branch on the taxonomy with errors.Is against the sentinel for
// each kind, and recover structured context (retry-after, collection name,
// request id) with errors.As:
//
//	var apiErr *apierrors.Error
//	if errors.As(err, &apiErr) && apiErr.Kind == apierrors.KindRateLimited {
//	    time.Sleep(apiErr.RetryAfter)
//	}
package apierrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies one member of the closed error taxonomy.
type Kind string

const (
	// KindAuthentication covers invalid or rejected credentials (401/403).
	KindAuthentication Kind = "authentication"
	// KindCollectionNotFound covers requests against a missing collection.
	KindCollectionNotFound Kind = "collection_not_found"
	// KindRateLimited covers quota exhaustion (429).
	KindRateLimited Kind = "rate_limit_exceeded"
	// KindServiceUnavailable covers network failures and 5xx responses.
	KindServiceUnavailable Kind = "service_unavailable"
	// KindInvalidRequest covers locally or remotely rejected request content.
	KindInvalidRequest Kind = "invalid_request"
	// KindTimeout covers local deadline expiry and caller cancellation.
	KindTimeout Kind = "timeout"
	// KindUnknown covers everything the mapping table does not recognize.
	// The raw status code and body are preserved for diagnosis.
	KindUnknown Kind = "unknown"
	// KindConfiguration covers client construction failures. It is never
	// produced by the classifier; only New returns it.
	KindConfiguration Kind = "configuration"
)

// Sentinel errors, one per taxonomy member. Every *Error unwraps to the
// sentinel matching its Kind so errors.Is works across wrapping.
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrTimeout            = errors.New("request timed out")
	ErrUnknown            = errors.New("unknown service error")
	ErrConfiguration      = errors.New("invalid client configuration")
)

var sentinels = map[Kind]error{
	KindAuthentication:     ErrAuthentication,
	KindCollectionNotFound: ErrCollectionNotFound,
	KindRateLimited:        ErrRateLimited,
	KindServiceUnavailable: ErrServiceUnavailable,
	KindInvalidRequest:     ErrInvalidRequest,
	KindTimeout:            ErrTimeout,
	KindUnknown:            ErrUnknown,
	KindConfiguration:      ErrConfiguration,
}

// Error is a classified service error.
type Error struct {
	// Kind is the taxonomy member this error belongs to.
	Kind Kind

	// Message is the human-readable description, taken from the service
	// error payload when one was present.
	Message string

	// StatusCode is the HTTP status that produced this error, 0 for
	// network-level failures.
	StatusCode int

	// RequestID is the service-assigned request identifier, if any.
	RequestID string

	// RetryAfter is how long to wait before retrying. Set only for
	// KindRateLimited.
	RetryAfter time.Duration

	// Collection is the offending collection name. Set for
	// KindCollectionNotFound.
	Collection string

	// Details carries any additional structured fields from the service
	// error payload.
	Details map[string]any

	// Body is the raw response body. Preserved only for KindUnknown.
	Body string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = sentinels[e.Kind].Error()
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s (request id %s)", msg, e.RequestID)
	}
	return msg
}

// Unwrap returns the sentinel for this error's Kind.
func (e *Error) Unwrap() error {
	if s, ok := sentinels[e.Kind]; ok {
		return s
	}
	return ErrUnknown
}

// Retryable reports whether the dispatcher may safely re-issue the request.
// Rate limiting is handled separately (one delayed retry) and is not
// considered retryable here.
func (e *Error) Retryable() bool {
	return e.Kind == KindServiceUnavailable || e.Kind == KindTimeout
}

// New builds a classified error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the taxonomy member from any error. Unclassified errors
// report KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}
