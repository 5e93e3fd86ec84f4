// Package transport dispatches operations against the Aetherfy vector
// service: authenticated HTTP calls with retry, backoff and failover across
// candidate endpoints.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

const (
	// DefaultTimeout bounds each individual attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultBudgetFactor sets the overall wall-clock ceiling across all
	// attempts as a multiple of the per-attempt timeout, so retry storms
	// cannot hang callers indefinitely.
	DefaultBudgetFactor = 4

	tracerName = "github.com/aetherfy/vectors-go/internal/transport"
)

// Config configures a Dispatcher.
type Config struct {
	// Endpoints are the candidate base URLs, primary first. At least one
	// is required.
	Endpoints []string

	// Headers are attached to every request (authentication, user agent).
	Headers map[string]string

	// Timeout bounds each individual attempt. Default: DefaultTimeout.
	Timeout time.Duration

	// OverallBudget bounds the whole dispatch including backoff waits.
	// Default: DefaultBudgetFactor * Timeout.
	OverallBudget time.Duration

	// Retry configures the retry/failover policy. Nil means defaults.
	Retry *RetryConfig

	// Logger receives retry and failover diagnostics. Nil means no logging.
	Logger *zap.Logger

	// HTTPClient overrides the underlying HTTP client. The default client
	// shares a connection pool across concurrent calls; the pool is the
	// only shared mutable state and is internally thread-safe.
	HTTPClient *http.Client
}

// Dispatcher performs authenticated calls with bounded retries. It holds no
// cross-call state: every Do allocates its own retry state, so concurrent
// use needs no locking.
type Dispatcher struct {
	endpoints []string
	headers   map[string]string
	timeout   time.Duration
	budget    time.Duration
	retry     *RetryConfig
	logger    *zap.Logger
	client    *http.Client
	tracer    trace.Tracer
}

// New creates a Dispatcher from cfg.
func New(cfg Config) (*Dispatcher, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: at least one endpoint is required", apierrors.ErrConfiguration)
	}
	endpoints := make([]string, len(cfg.Endpoints))
	for i, e := range cfg.Endpoints {
		if e == "" {
			return nil, fmt.Errorf("%w: endpoint %d is empty", apierrors.ErrConfiguration, i)
		}
		endpoints[i] = strings.TrimRight(e, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	budget := cfg.OverallBudget
	if budget <= 0 {
		budget = DefaultBudgetFactor * timeout
	}

	retry := cfg.Retry
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	retry.ApplyDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Dispatcher{
		endpoints: endpoints,
		headers:   cfg.Headers,
		timeout:   timeout,
		budget:    budget,
		retry:     retry,
		logger:    logger,
		client:    client,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// retryState tracks one in-flight dispatch. It is owned exclusively by a
// single Do call and never shared.
type retryState struct {
	attempts         int
	transientRetries int
	rateLimitRetried bool
	lastErr          *apierrors.Error
	endpointsTried   map[string]struct{}
}

// Do dispatches one operation and returns the raw success payload or a
// classified error. Transient failures (service unavailable, timeout) are
// retried with exponential backoff up to the attempt budget, rotating
// through candidate endpoints. A rate-limit response gets exactly one
// delayed retry. Authentication, collection-not-found and invalid-request
// outcomes are deterministic and surface immediately.
func (d *Dispatcher) Do(ctx context.Context, desc *Descriptor) ([]byte, error) {
	start := time.Now()
	defer func() {
		RequestDuration.WithLabelValues(desc.Operation).Observe(time.Since(start).Seconds())
	}()

	ctx, span := d.tracer.Start(ctx, desc.Operation, trace.WithAttributes(
		attribute.String("http.method", desc.Method),
		attribute.String("url.path", desc.Path),
		attribute.String("operation.kind", string(desc.Kind)),
	))
	defer span.End()

	// Overall wall-clock ceiling across all attempts and backoff waits.
	ctx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	var body []byte
	if desc.Body != nil {
		var err error
		body, err = json.Marshal(desc.Body)
		if err != nil {
			cerr := apierrors.New(apierrors.KindInvalidRequest, "failed to encode request body: "+err.Error())
			return nil, d.finish(span, desc, cerr)
		}
	}

	dispatchID := uuid.NewString()
	state := &retryState{endpointsTried: make(map[string]struct{})}
	endpointIdx := 0

	for {
		endpoint := d.endpoints[endpointIdx]
		state.attempts++
		state.endpointsTried[endpoint] = struct{}{}

		payload, cerr := d.attempt(ctx, desc, endpoint, body)
		if cerr == nil {
			if state.transientRetries > 0 {
				d.logger.Info("operation recovered after retries",
					zap.String("operation", desc.Operation),
					zap.String("dispatch_id", dispatchID),
					zap.Int("attempts", state.attempts),
					zap.Duration("elapsed", time.Since(start)),
				)
			}
			span.SetAttributes(attribute.Int("attempts", state.attempts))
			RequestsTotal.WithLabelValues(desc.Operation, "success").Inc()
			return payload, nil
		}
		state.lastErr = cerr

		switch cerr.Kind {
		case apierrors.KindRateLimited:
			if state.rateLimitRetried {
				return nil, d.finish(span, desc, cerr)
			}
			state.rateLimitRetried = true
			RetriesTotal.WithLabelValues(string(apierrors.KindRateLimited)).Inc()
			wait := cerr.RetryAfter
			if wait <= 0 {
				wait = d.retry.RateLimitWait
			}
			d.logger.Info("rate limited, waiting before single retry",
				zap.String("operation", desc.Operation),
				zap.String("dispatch_id", dispatchID),
				zap.Duration("retry_after", wait),
			)
			if werr := d.wait(ctx, wait); werr != nil {
				return nil, d.finish(span, desc, werr)
			}

		case apierrors.KindServiceUnavailable, apierrors.KindTimeout:
			if !desc.Idempotent {
				return nil, d.finish(span, desc, cerr)
			}
			state.transientRetries++
			if state.transientRetries >= d.retry.MaxAttempts {
				return nil, d.finish(span, desc, cerr)
			}
			RetriesTotal.WithLabelValues(string(cerr.Kind)).Inc()
			backoff := d.retry.backoffFor(state.transientRetries - 1)
			d.logger.Warn("retrying after transient failure",
				zap.String("operation", desc.Operation),
				zap.String("dispatch_id", dispatchID),
				zap.String("endpoint", endpoint),
				zap.Int("attempt", state.attempts),
				zap.Duration("backoff", backoff),
				zap.String("error_kind", string(cerr.Kind)),
			)
			if werr := d.wait(ctx, backoff); werr != nil {
				return nil, d.finish(span, desc, werr)
			}
			if len(d.endpoints) > 1 {
				endpointIdx = (endpointIdx + 1) % len(d.endpoints)
				FailoversTotal.Inc()
				d.logger.Warn("failing over to alternate endpoint",
					zap.String("operation", desc.Operation),
					zap.String("dispatch_id", dispatchID),
					zap.String("endpoint", d.endpoints[endpointIdx]),
				)
			}

		default:
			// Deterministic outcomes of the request content; never retried.
			return nil, d.finish(span, desc, cerr)
		}
	}
}

// attempt performs a single HTTP exchange against one endpoint.
func (d *Dispatcher) attempt(ctx context.Context, desc *Descriptor, endpoint string, body []byte) ([]byte, *apierrors.Error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	url := endpoint + "/" + strings.TrimPrefix(desc.Path, "/")
	if len(desc.Query) > 0 {
		url += "?" + desc.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, desc.Method, url, reader)
	if err != nil {
		return nil, apierrors.New(apierrors.KindInvalidRequest, "failed to build request: "+err.Error())
	}
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	for k, v := range desc.Headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apierrors.Classify(apierrors.Outcome{Err: err, Path: desc.Path})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.Classify(apierrors.Outcome{Err: err, Path: desc.Path})
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return respBody, nil
	}

	return nil, apierrors.Classify(apierrors.Outcome{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Path:       desc.Path,
	})
}

// wait blocks for the given duration or until the context is done,
// whichever comes first. Backoff waits must be promptly cancellable; a
// blind sleep would hold the caller past its deadline.
func (d *Dispatcher) wait(ctx context.Context, dur time.Duration) *apierrors.Error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return apierrors.New(apierrors.KindTimeout, "request canceled during backoff wait")
		}
		return apierrors.New(apierrors.KindTimeout, "overall dispatch budget exhausted during backoff wait")
	case <-timer.C:
		return nil
	}
}

// finish records the terminal failure on the span and metrics.
func (d *Dispatcher) finish(span trace.Span, desc *Descriptor, cerr *apierrors.Error) error {
	span.SetStatus(codes.Error, string(cerr.Kind))
	span.RecordError(cerr)
	RequestsTotal.WithLabelValues(desc.Operation, string(cerr.Kind)).Inc()
	return cerr
}

// Close releases the underlying connection pool. Safe to call on every exit
// path; subsequent calls are no-ops.
func (d *Dispatcher) Close() {
	d.client.CloseIdleConnections()
}
