package vectors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aetherfy/vectors-go/internal/transport"
	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

// SearchParams tunes a vector search. A nil params value means the defaults:
// limit 10, offset 0, payloads included, vectors excluded, no filter, no
// score threshold.
type SearchParams struct {
	// Limit caps the number of results. Default: 10.
	Limit int

	// Offset skips that many results for pagination.
	Offset int

	// Filter restricts matches by payload conditions.
	Filter *Filter

	// WithPayload includes payloads in results.
	WithPayload bool

	// WithVectors includes vectors in results.
	WithVectors bool

	// ScoreThreshold excludes results scoring below it. Nil disables the
	// threshold; zero is a valid threshold.
	ScoreThreshold *float32
}

// Search finds the points most similar to the query vector, ordered by
// descending score.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, params *SearchParams) ([]SearchResult, error) {
	if err := validateCollectionName(collection); err != nil {
		return nil, err
	}
	if err := validateVector(vector, 0); err != nil {
		return nil, err
	}
	if params == nil {
		params = &SearchParams{Limit: 10, WithPayload: true}
	}
	if params.Limit <= 0 {
		return nil, apierrors.New(apierrors.KindInvalidRequest, "limit must be positive")
	}
	if params.Offset < 0 {
		return nil, apierrors.New(apierrors.KindInvalidRequest, "offset cannot be negative")
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        params.Limit,
		"offset":       params.Offset,
		"with_payload": params.WithPayload,
		"with_vector":  params.WithVectors,
	}
	if params.Filter != nil {
		body["filter"] = params.Filter
	}
	if params.ScoreThreshold != nil {
		body["score_threshold"] = *params.ScoreThreshold
	}

	payload, err := c.dispatcher.Do(ctx, &transport.Descriptor{
		Method:     http.MethodPost,
		Path:       "collections/" + c.resolver.Scope(collection) + "/points/search",
		Body:       body,
		Idempotent: true,
		Kind:       transport.KindSearch,
		Operation:  "search",
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []SearchResult `json:"result"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, apierrors.New(apierrors.KindUnknown, "malformed search response: "+err.Error())
	}
	return resp.Result, nil
}
