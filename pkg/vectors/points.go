package vectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aetherfy/vectors-go/internal/transport"
	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

// PointsSelector selects points for deletion: either an explicit ID list or
// a payload filter. Exactly one must be set.
type PointsSelector struct {
	IDs    []any
	Filter *Filter
}

// RetrieveOptions controls which fields Retrieve returns. A nil options
// value means payloads included, vectors excluded.
type RetrieveOptions struct {
	WithPayload bool
	WithVectors bool
}

// Upsert inserts or fully replaces points keyed by id. The batch is
// validated locally against the collection's cached schema before any
// network call; a dimension mismatch fails fast.
//
// The cached schema version is replayed in If-Match. When the collection
// schema changed underneath the cache, the service answers 412, the stale
// entry is dropped and an invalid-request error tells the caller to retry.
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}

	schema, ok := c.schemas.get(collection)
	if !ok {
		if _, err := c.GetCollection(ctx, collection); err != nil {
			return err
		}
		schema, _ = c.schemas.get(collection)
	}
	if err := validatePoints(points, schema.Size); err != nil {
		return err
	}

	var headers map[string]string
	if schema.ETag != "" {
		headers = map[string]string{"If-Match": schema.ETag}
	}

	_, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodPut,
		Path:       "collections/" + c.resolver.Scope(collection) + "/points",
		Body:       map[string]any{"points": points},
		Headers:    headers,
		Idempotent: true,
		Kind:       transport.KindPointWrite,
		Operation:  "upsert",
	})
	if err != nil {
		var apiErr *apierrors.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPreconditionFailed {
			c.schemas.invalidate(collection)
			return apierrors.New(apierrors.KindInvalidRequest,
				fmt.Sprintf("schema changed for collection %q, please retry the request", collection))
		}
		return err
	}
	return nil
}

// Delete removes points by id list or by filter. Deletion is idempotent at
// the service level: deleting an already-deleted id is a no-op.
func (c *Client) Delete(ctx context.Context, collection string, selector PointsSelector) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	if (len(selector.IDs) == 0) == (selector.Filter == nil) {
		return apierrors.New(apierrors.KindInvalidRequest,
			"points selector must set exactly one of IDs or Filter")
	}

	var body map[string]any
	if len(selector.IDs) > 0 {
		for _, id := range selector.IDs {
			if err := validatePointID(id); err != nil {
				return err
			}
		}
		body = map[string]any{"points": selector.IDs}
	} else {
		body = map[string]any{"filter": selector.Filter}
	}

	_, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodPost,
		Path:       "collections/" + c.resolver.Scope(collection) + "/points/delete",
		Body:       body,
		Idempotent: true,
		Kind:       transport.KindPointWrite,
		Operation:  "delete_points",
	})
	return err
}

// Retrieve fetches points by id.
func (c *Client) Retrieve(ctx context.Context, collection string, ids []any, opts *RetrieveOptions) ([]RetrievedPoint, error) {
	if err := validateCollectionName(collection); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apierrors.New(apierrors.KindInvalidRequest, "ids cannot be empty")
	}
	for _, id := range ids {
		if err := validatePointID(id); err != nil {
			return nil, err
		}
	}
	if opts == nil {
		opts = &RetrieveOptions{WithPayload: true}
	}

	payload, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method: http.MethodPost,
		Path:   "collections/" + c.resolver.Scope(collection) + "/points",
		Body: map[string]any{
			"ids":          ids,
			"with_payload": opts.WithPayload,
			"with_vector":  opts.WithVectors,
		},
		Idempotent: true,
		Kind:       transport.KindPointRead,
		Operation:  "retrieve",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []RetrievedPoint `json:"result"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, apierrors.New(apierrors.KindUnknown, "malformed retrieve response: "+err.Error())
	}
	return resp.Result, nil
}

// Count returns the number of points matching the filter. A nil filter
// counts the whole collection; exact requests a precise count instead of an
// estimate.
func (c *Client) Count(ctx context.Context, collection string, filter *Filter, exact bool) (int64, error) {
	if err := validateCollectionName(collection); err != nil {
		return 0, err
	}

	body := map[string]any{"exact": exact}
	if filter != nil {
		body["filter"] = filter
	}

	payload, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodPost,
		Path:       "collections/" + c.resolver.Scope(collection) + "/points/count",
		Body:       body,
		Idempotent: true,
		Kind:       transport.KindPointRead,
		Operation:  "count",
	})
	if err != nil {
		return 0, err
	}

	var resp struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return 0, apierrors.New(apierrors.KindUnknown, "malformed count response: "+err.Error())
	}
	return resp.Count, nil
}
