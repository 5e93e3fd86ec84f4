package vectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherfy/vectors-go/internal/transport"
	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

const testAPIKey = "afy_test_0123456789abcdef"

// unsetEnv removes the AETHERFY_* variables for the duration of a test so
// ambient configuration cannot leak into construction.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"AETHERFY_API_KEY", "AETHERFY_VECTORS_API_KEY", "AETHERFY_WORKSPACE", "AETHERFY_ENDPOINT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// singleAttempt disables retries so failure tests observe exactly one call.
func singleAttempt() *transport.RetryConfig {
	return &transport.RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            false,
		RateLimitWait:     time.Millisecond,
	}
}

func newTestClient(t *testing.T, endpoint, workspace string) *Client {
	t.Helper()
	unsetEnv(t)
	c, err := New(Config{
		APIKey:    testAPIKey,
		Endpoint:  endpoint,
		Workspace: workspace,
		Timeout:   2 * time.Second,
		Retry:     singleAttempt(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// recordedRequest is one request as observed by the fake service.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// recorder captures requests for assertions after the client call returns.
// Handlers run on the server goroutine, so captures are mutex-guarded and
// checked from the test goroutine only.
type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (rec *recorder) capture(r *http.Request) {
	var body map[string]any
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.reqs = append(rec.reqs, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
}

func (rec *recorder) requests() []recordedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]recordedRequest(nil), rec.reqs...)
}

func TestNewRequiresAPIKey(t *testing.T) {
	unsetEnv(t)
	_, err := New(Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrConfiguration))
	assert.Contains(t, err.Error(), "AETHERFY_API_KEY")
}

func TestNewRejectsMalformedKey(t *testing.T) {
	unsetEnv(t)
	_, err := New(Config{APIKey: "sk-not-an-aetherfy-key"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrConfiguration))
}

func TestNewAPIKeyFromEnvironment(t *testing.T) {
	unsetEnv(t)
	t.Setenv("AETHERFY_API_KEY", testAPIKey)

	c, err := New(Config{})
	require.NoError(t, err)
	defer c.Close()
}

func TestNewAltKeyVariableIsFallback(t *testing.T) {
	unsetEnv(t)
	t.Setenv("AETHERFY_VECTORS_API_KEY", testAPIKey)

	c, err := New(Config{})
	require.NoError(t, err)
	defer c.Close()
}

func TestNewExplicitKeyBeatsEnvironment(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.capture(r)
		w.Write([]byte(`{"collections":[]}`))
	}))
	defer server.Close()

	unsetEnv(t)
	t.Setenv("AETHERFY_API_KEY", "afy_live_aaaaaaaaaaaaaaaa")

	c, err := New(Config{APIKey: testAPIKey, Endpoint: server.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ListCollections(context.Background())
	require.NoError(t, err)

	reqs := rec.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+testAPIKey, reqs[0].Header.Get("Authorization"))
	assert.Equal(t, testAPIKey, reqs[0].Header.Get("X-API-Key"))
	assert.Equal(t, "aetherfy-vectors-go/"+Version, reqs[0].Header.Get("User-Agent"))
}

func TestNewWorkspaceResolution(t *testing.T) {
	t.Run("explicit wins over environment", func(t *testing.T) {
		unsetEnv(t)
		t.Setenv("AETHERFY_WORKSPACE", "env-ws")
		c, err := New(Config{APIKey: testAPIKey, Workspace: "team-a"})
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, "team-a", c.Workspace())
	})

	t.Run("auto defers to environment", func(t *testing.T) {
		unsetEnv(t)
		t.Setenv("AETHERFY_WORKSPACE", "env-ws")
		c, err := New(Config{APIKey: testAPIKey, Workspace: WorkspaceAuto})
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, "env-ws", c.Workspace())
	})

	t.Run("auto without environment is unscoped", func(t *testing.T) {
		unsetEnv(t)
		c, err := New(Config{APIKey: testAPIKey, Workspace: WorkspaceAuto})
		require.NoError(t, err)
		defer c.Close()
		assert.Empty(t, c.Workspace())
	})

	t.Run("unset falls back to environment", func(t *testing.T) {
		unsetEnv(t)
		t.Setenv("AETHERFY_WORKSPACE", "env-ws")
		c, err := New(Config{APIKey: testAPIKey})
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, "env-ws", c.Workspace())
	})
}

func TestNewEndpointValidation(t *testing.T) {
	unsetEnv(t)

	_, err := New(Config{APIKey: testAPIKey, Endpoint: "not a url"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrConfiguration))

	_, err = New(Config{APIKey: testAPIKey, Endpoint: "/relative/path"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrConfiguration))

	_, err = New(Config{
		APIKey:            testAPIKey,
		FallbackEndpoints: []string{"::broken::"},
	})
	require.Error(t, err, "fallback endpoints are validated too")
	assert.True(t, errors.Is(err, apierrors.ErrConfiguration))
}

func TestNewNegativeTimeout(t *testing.T) {
	unsetEnv(t)
	_, err := New(Config{APIKey: testAPIKey, Timeout: -time.Second})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrConfiguration))
}

func TestStringNeverExposesKey(t *testing.T) {
	unsetEnv(t)
	c, err := New(Config{APIKey: testAPIKey})
	require.NoError(t, err)
	defer c.Close()

	s := c.String()
	assert.NotContains(t, s, testAPIKey)
	assert.True(t, strings.Contains(s, "***"))
}
