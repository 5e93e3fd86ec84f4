package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter is used when a 429 response carries no usable
// retry-after hint in either the header or the error payload.
const DefaultRetryAfter = time.Second

// Outcome is the raw result of one transport attempt, as seen by the
// dispatcher. Exactly one of Err or StatusCode is meaningful: a non-nil Err
// means no response was received.
type Outcome struct {
	// Err is the transport-level error, nil when a response arrived.
	Err error

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Header is the response header set.
	Header http.Header

	// Body is the raw response body.
	Body []byte

	// Path is the request path, used to recognize collection-shaped 404s.
	Path string
}

// errorPayload is the service's structured error object.
type errorPayload struct {
	Message   string         `json:"message"`
	ErrorCode string         `json:"error_code"`
	RequestID string         `json:"request_id"`
	Details   map[string]any `json:"details"`
}

// Classify maps a transport outcome to a classified error. It is pure: no
// I/O, no clock, deterministic for a given outcome. The mapping table is
// evaluated in order; the first match wins.
func Classify(o Outcome) *Error {
	if o.Err != nil {
		if errors.Is(o.Err, context.DeadlineExceeded) {
			return &Error{Kind: KindTimeout, Message: "request deadline exceeded"}
		}
		if errors.Is(o.Err, context.Canceled) {
			return &Error{Kind: KindTimeout, Message: "request canceled"}
		}
		return &Error{Kind: KindServiceUnavailable, Message: "network error: " + o.Err.Error()}
	}

	payload := parsePayload(o.Body)

	switch {
	case o.StatusCode == http.StatusUnauthorized || o.StatusCode == http.StatusForbidden:
		return build(KindAuthentication, o, payload)

	case o.StatusCode == http.StatusNotFound && collectionShaped(o.Path, payload):
		e := build(KindCollectionNotFound, o, payload)
		e.Collection = collectionName(o.Path, payload)
		return e

	case o.StatusCode == http.StatusTooManyRequests:
		e := build(KindRateLimited, o, payload)
		e.RetryAfter = retryAfter(o.Header, payload)
		return e

	case o.StatusCode == http.StatusBadRequest,
		o.StatusCode == http.StatusUnprocessableEntity,
		o.StatusCode == http.StatusPreconditionFailed:
		return build(KindInvalidRequest, o, payload)

	case o.StatusCode >= 500:
		return build(KindServiceUnavailable, o, payload)
	}

	e := build(KindUnknown, o, payload)
	e.Body = string(o.Body)
	return e
}

func build(kind Kind, o Outcome, p errorPayload) *Error {
	return &Error{
		Kind:       kind,
		Message:    p.Message,
		StatusCode: o.StatusCode,
		RequestID:  p.RequestID,
		Details:    p.Details,
	}
}

func parsePayload(body []byte) errorPayload {
	var p errorPayload
	if len(body) == 0 {
		return p
	}
	// Malformed bodies fall through to an empty payload; classification
	// then relies on the status code alone.
	_ = json.Unmarshal(body, &p)
	return p
}

// collectionShaped reports whether a 404 refers to a collection rather than
// some other resource. The service tags these with error_code; the path
// check covers older responses without one.
func collectionShaped(path string, p errorPayload) bool {
	if p.ErrorCode == "collection_not_found" {
		return true
	}
	if p.ErrorCode != "" {
		return false
	}
	return strings.HasPrefix(strings.TrimPrefix(path, "/"), "collections/")
}

func collectionName(path string, p errorPayload) string {
	if name, ok := p.Details["collection_name"].(string); ok && name != "" {
		return name
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(path, "/"), "collections/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		// Keep workspace-scoped names intact; only strip sub-resources
		// like /points/search off the end.
		for _, suffix := range []string{"/points/search", "/points/count", "/points/delete", "/points"} {
			if strings.HasSuffix(trimmed, suffix) {
				return strings.TrimSuffix(trimmed, suffix)
			}
		}
	}
	return trimmed
}

// retryAfter resolves the wait hint for a 429, preferring the Retry-After
// header, then the payload details, then DefaultRetryAfter.
func retryAfter(h http.Header, p errorPayload) time.Duration {
	if h != nil {
		if v := h.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	if p.Details != nil {
		switch v := p.Details["retry_after"].(type) {
		case float64:
			if v >= 0 {
				return time.Duration(v * float64(time.Second))
			}
		case string:
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return DefaultRetryAfter
}
