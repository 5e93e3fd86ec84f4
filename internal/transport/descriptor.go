package transport

import "net/url"

// OperationKind groups operations for metrics and policy decisions.
type OperationKind string

const (
	KindCollectionAdmin OperationKind = "collection_admin"
	KindPointWrite      OperationKind = "point_write"
	KindPointRead       OperationKind = "point_read"
	KindSearch          OperationKind = "search"
	KindAnalytics       OperationKind = "analytics"
)

// Descriptor describes one operation to dispatch. It is built fresh per
// call, never shared across calls, and immutable once built.
type Descriptor struct {
	// Method is the HTTP method.
	Method string

	// Path is the endpoint-relative request path, without a leading slash.
	Path string

	// Query holds optional query parameters.
	Query url.Values

	// Body is JSON-marshaled into the request body when non-nil.
	Body any

	// Headers are additional per-operation headers (e.g. If-Match).
	Headers map[string]string

	// Idempotent marks operations that are safe to re-issue. All reads
	// are idempotent; so is upsert, a full-record replace keyed by id,
	// and point deletion, which is a no-op for already-deleted ids at the
	// service level. Non-idempotent operations are never retried after a
	// transient failure.
	Idempotent bool

	// Kind groups the operation for metrics and logging.
	Kind OperationKind

	// Operation is the short operation name used as a metric label,
	// e.g. "search" or "create_collection".
	Operation string
}
