// Package vectors is the public client for the Aetherfy vector service.
//
// The client presents the method surface of a local vector-database client
// while redirecting every operation to the remote multi-region service:
// collection lifecycle, point upsert/retrieve/delete/count, vector search
// and analytics reads. Collection names at this boundary are always short
// names; workspace scoping is applied internally and is invisible to the
// caller.
//
//	client, err := vectors.New(vectors.Config{APIKey: key, Workspace: "team-a"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	results, err := client.Search(ctx, "documents", queryVector, nil)
//
// Failures carry a closed taxonomy; branch with errors.Is against the
// sentinels in pkg/apierrors.
package vectors

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/aetherfy/vectors-go/internal/auth"
	"github.com/aetherfy/vectors-go/internal/config"
	"github.com/aetherfy/vectors-go/internal/scope"
	"github.com/aetherfy/vectors-go/internal/transport"
	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

const (
	// DefaultEndpoint is the production service URL.
	DefaultEndpoint = "https://vectors.aetherfy.com"

	// DefaultTimeout bounds each individual request.
	DefaultTimeout = 30 * time.Second

	// WorkspaceAuto resolves the workspace from AETHERFY_WORKSPACE,
	// leaving it unset when the variable is absent.
	WorkspaceAuto = "auto"

	// Version is the client release version, reported in the User-Agent.
	Version = "1.0.0"
)

// Config configures a Client. The zero value is usable when AETHERFY_API_KEY
// is set in the environment.
type Config struct {
	// APIKey authenticates every request. Resolution precedence: this
	// field, then AETHERFY_API_KEY, then AETHERFY_VECTORS_API_KEY.
	// Construction fails when none resolves.
	APIKey string

	// Endpoint is the service base URL. Resolution precedence: this field,
	// then AETHERFY_ENDPOINT, then DefaultEndpoint.
	Endpoint string

	// FallbackEndpoints are alternate endpoints the dispatcher rotates to
	// after transient failures.
	FallbackEndpoints []string

	// Workspace scopes all collection names. Resolution precedence: this
	// field (WorkspaceAuto defers to the environment), then
	// AETHERFY_WORKSPACE, then unscoped. Workspace identifiers are opaque
	// and case-sensitive.
	Workspace string

	// Timeout bounds each individual request. Default: DefaultTimeout.
	Timeout time.Duration

	// OverallBudget bounds a whole operation including retries and backoff
	// waits. Default: 4x Timeout.
	OverallBudget time.Duration

	// Retry overrides the retry/failover policy. Nil means defaults.
	Retry *transport.RetryConfig

	// Logger receives client diagnostics. Nil disables logging.
	Logger *zap.Logger

	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client
}

// Client is a handle to the Aetherfy vector service. All configuration is
// resolved once at construction and immutable afterward, so a Client is
// safe for concurrent use. Release the underlying connection pool with
// Close when done.
type Client struct {
	dispatcher *transport.Dispatcher
	resolver   *scope.Resolver
	schemas    *schemaCache
	logger     *zap.Logger
	endpoint   string
}

// New constructs a Client. The environment is read exactly once, here.
// A missing API key fails immediately with a configuration error, before
// any network call is attempted.
func New(cfg Config) (*Client, error) {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrConfiguration, err)
	}

	key := envCfg.ResolveAPIKey(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf(
			"%w: no API key provided, set %s or pass Config.APIKey",
			apierrors.ErrConfiguration, auth.EnvAPIKey,
		)
	}
	if err := auth.ValidateKey(key); err != nil {
		return nil, err
	}

	workspace := cfg.Workspace
	if workspace == "" || workspace == WorkspaceAuto {
		workspace = envCfg.Workspace
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = envCfg.Endpoint
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	endpoints := append([]string{endpoint}, cfg.FallbackEndpoints...)
	for _, e := range endpoints {
		if err := validateEndpoint(e); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", apierrors.ErrConfiguration)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	headers := auth.Headers(key)
	headers["User-Agent"] = "aetherfy-vectors-go/" + Version

	dispatcher, err := transport.New(transport.Config{
		Endpoints:     endpoints,
		Headers:       headers,
		Timeout:       timeout,
		OverallBudget: cfg.OverallBudget,
		Retry:         cfg.Retry,
		Logger:        logger,
		HTTPClient:    cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("aetherfy vectors client initialized",
		zap.String("endpoint", endpoint),
		zap.String("workspace", workspace),
		zap.String("api_key", auth.Mask(key)),
		zap.Bool("test_mode", auth.IsTestKey(key)),
	)

	return &Client{
		dispatcher: dispatcher,
		resolver:   scope.NewResolver(workspace),
		schemas:    newSchemaCache(),
		logger:     logger,
		endpoint:   endpoint,
	}, nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q is not an absolute URL", apierrors.ErrConfiguration, endpoint)
	}
	return nil
}

// Workspace returns the resolved workspace identifier, empty when the
// client is unscoped.
func (c *Client) Workspace() string {
	return c.resolver.Workspace()
}

// Close releases the underlying connection resources. It is safe to call
// multiple times and on error paths.
func (c *Client) Close() error {
	c.dispatcher.Close()
	return nil
}

// String identifies the client without exposing the API key.
func (c *Client) String() string {
	return fmt.Sprintf("vectors.Client(endpoint=%q, api_key=%q)", c.endpoint, "***")
}
