package vectors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

func TestCreateCollection(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.capture(r)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "team-a")
	err := c.CreateCollection(context.Background(), "docs", VectorConfig{Size: 128})
	require.NoError(t, err)

	reqs := rec.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/collections", reqs[0].Path)
	assert.Equal(t, "team-a/docs", reqs[0].Body["name"], "collection name is scoped on the wire")

	vectors, ok := reqs[0].Body["vectors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(128), vectors["size"])
	assert.Equal(t, string(DistanceCosine), vectors["distance"], "empty distance defaults to Cosine")
}

func TestCreateCollectionValidation(t *testing.T) {
	// Server must never be reached: validation fails before dispatch.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call for invalid input")
	}))
	defer server.Close()
	c := newTestClient(t, server.URL, "team-a")

	tests := []struct {
		name       string
		collection string
		cfg        VectorConfig
	}{
		{"empty name", "", VectorConfig{Size: 4}},
		{"invalid characters", "a/b", VectorConfig{Size: 4}},
		{"zero size", "docs", VectorConfig{Size: 0}},
		{"unknown distance", "docs", VectorConfig{Size: 4, Distance: "Chebyshev"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.CreateCollection(context.Background(), tt.collection, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierrors.ErrInvalidRequest))
		})
	}
}

func TestListCollectionsFiltersForeignWorkspaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"collections":[
			{"name":"team-a/docs","status":"green","points_count":10},
			{"name":"team-b/other","status":"green","points_count":5},
			{"name":"unscoped","status":"green","points_count":1}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "team-a")
	got, err := c.ListCollections(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 1, "foreign and unscoped entries are excluded")
	assert.Equal(t, "docs", got[0].Name, "listing returns short names")
	assert.Equal(t, int64(10), got[0].PointsCount)
}

func TestListCollectionsUnscopedReturnsEverything(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"collections":[
			{"name":"team-a/docs","status":"green"},
			{"name":"plain","status":"green"}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	got, err := c.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "team-a/docs", got[0].Name, "without a workspace names pass through untouched")
	assert.Equal(t, "plain", got[1].Name)
}

func TestGetCollectionCachesSchema(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.capture(r)
		w.Write([]byte(`{
			"result":{"name":"team-a/docs","status":"green","points_count":3,
				"config":{"params":{"vectors":{"size":4,"distance":"Cosine"}}}},
			"schema_version":"v7"
		}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "team-a")
	desc, err := c.GetCollection(context.Background(), "docs")
	require.NoError(t, err)

	assert.Equal(t, "docs", desc.Name, "description carries the short name")
	assert.Equal(t, 4, desc.Config.Size)
	assert.Equal(t, "/collections/team-a/docs", rec.requests()[0].Path)

	schema, ok := c.schemas.get("docs")
	require.True(t, ok)
	assert.Equal(t, 4, schema.Size)
	assert.Equal(t, "v7", schema.ETag)
}

func TestDeleteCollection(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.capture(r)
		w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "team-a")
	c.schemas.set("docs", collectionSchema{Size: 4, ETag: "v1"})

	require.NoError(t, c.DeleteCollection(context.Background(), "docs"))

	reqs := rec.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/collections/team-a/docs", reqs[0].Path)

	_, ok := c.schemas.get("docs")
	assert.False(t, ok, "deletion drops the cached schema")
}

func TestCollectionExists(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"result":{"name":"team-a/docs","config":{"params":{"vectors":{"size":4}}}}}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL, "team-a")
		exists, err := c.CollectionExists(context.Background(), "docs")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("not found is an answer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error_code":"collection_not_found"}`))
		}))
		defer server.Close()

		c := newTestClient(t, server.URL, "team-a")
		exists, err := c.CollectionExists(context.Background(), "docs")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("other failures propagate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c := newTestClient(t, server.URL, "team-a")
		_, err := c.CollectionExists(context.Background(), "docs")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apierrors.ErrAuthentication))
	})
}
