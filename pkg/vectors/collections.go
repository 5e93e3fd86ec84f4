package vectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aetherfy/vectors-go/internal/transport"
	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

// CreateCollection creates a collection with the given vector configuration.
// An empty Distance defaults to Cosine.
func (c *Client) CreateCollection(ctx context.Context, collection string, cfg VectorConfig) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	if cfg.Size <= 0 {
		return apierrors.New(apierrors.KindInvalidRequest, "vector size must be positive")
	}
	distance := cfg.Distance
	if distance == "" {
		distance = DistanceCosine
	}
	normalized, err := NormalizeDistance(string(distance))
	if err != nil {
		return err
	}

	body := map[string]any{
		"name": c.resolver.Scope(collection),
		"vectors": VectorConfig{
			Size:     cfg.Size,
			Distance: normalized,
		},
	}
	// The one operation without an idempotency guarantee: re-creating an
	// existing collection is rejected by the service.
	_, err = c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodPost,
		Path:       "collections",
		Body:       body,
		Idempotent: false,
		Kind:       transport.KindCollectionAdmin,
		Operation:  "create_collection",
	})
	return err
}

// DeleteCollection deletes a collection and all its points. Deleting an
// already-deleted collection surfaces as a collection-not-found error.
func (c *Client) DeleteCollection(ctx context.Context, collection string) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	c.schemas.invalidate(collection)
	_, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodDelete,
		Path:       "collections/" + c.resolver.Scope(collection),
		Idempotent: true,
		Kind:       transport.KindCollectionAdmin,
		Operation:  "delete_collection",
	})
	return err
}

// ListCollections returns every collection in the active workspace, as
// short names. Without a workspace, all collections are returned
// unfiltered. Entries belonging to other workspaces are excluded, never
// surfaced as errors.
func (c *Client) ListCollections(ctx context.Context) ([]CollectionDescription, error) {
	payload, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodGet,
		Path:       "collections",
		Idempotent: true,
		Kind:       transport.KindCollectionAdmin,
		Operation:  "list_collections",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Collections []collectionPayload `json:"collections"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, apierrors.New(apierrors.KindUnknown, "malformed list response: "+err.Error())
	}

	descriptions := make([]CollectionDescription, 0, len(resp.Collections))
	for i := range resp.Collections {
		short, owned := c.resolver.Unscope(resp.Collections[i].Name)
		if !owned {
			continue
		}
		descriptions = append(descriptions, resp.Collections[i].toDescription(short))
	}
	return descriptions, nil
}

// GetCollection returns the description of one collection. The fetched
// schema is cached for local upsert validation.
func (c *Client) GetCollection(ctx context.Context, collection string) (*CollectionDescription, error) {
	if err := validateCollectionName(collection); err != nil {
		return nil, err
	}
	payload, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodGet,
		Path:       "collections/" + c.resolver.Scope(collection),
		Idempotent: true,
		Kind:       transport.KindCollectionAdmin,
		Operation:  "get_collection",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result        collectionPayload `json:"result"`
		SchemaVersion string            `json:"schema_version"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, apierrors.New(apierrors.KindUnknown, "malformed collection response: "+err.Error())
	}

	c.schemas.set(collection, collectionSchema{
		Size:     resp.Result.Config.Params.Vectors.Size,
		Distance: resp.Result.Config.Params.Vectors.Distance,
		ETag:     resp.SchemaVersion,
	})

	desc := resp.Result.toDescription(collection)
	return &desc, nil
}

// CollectionExists reports whether a collection exists in the active
// workspace. A not-found outcome is an answer, not an error.
func (c *Client) CollectionExists(ctx context.Context, collection string) (bool, error) {
	_, err := c.GetCollection(ctx, collection)
	if err != nil {
		if errors.Is(err, apierrors.ErrCollectionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
