package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/agentlens/agentlens-go/internal/id"
	"github.com/agentlens/agentlens-go/internal/resilience"
)

const (
	headerAPIKey         = "X-API-Key"
	headerProjectID      = "X-Project-ID"
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"

	pathTraces    = "/v1/traces"
	pathSpans     = "/v1/spans"
	pathSpanBatch = "/v1/spans/batch"

	// Batch bodies at or above this size are gzip-compressed.
	defaultGzipMinBytes = 4 << 10
)

// Config configures the backend client.
type Config struct {
	APIKey    string
	ProjectID string
	BaseURL   string

	Timeout      time.Duration // per-attempt timeout, default 30s
	MaxRetries   int           // default 3
	RetryWaitMin time.Duration // default 500ms
	RetryWaitMax time.Duration // default 10s
	RateLimit    float64       // requests/sec, 0 = unlimited

	BreakerThreshold int           // consecutive failures to trip, default 10
	BreakerCooldown  time.Duration // default 30s

	GzipMinBytes int // 0 = default, negative disables compression
}

// Client talks to the AgentLens REST backend.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	gzipMin int
}

// NewClient builds a production-ready client: retryable pooled transport,
// resty retry with backoff on transient statuses, rate limiting, and a
// circuit breaker around every call.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = 500 * time.Millisecond
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 10 * time.Second
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 10
	}
	gzipMin := cfg.GzipMinBytes
	switch {
	case gzipMin == 0:
		gzipMin = defaultGzipMinBytes
	case gzipMin < 0:
		gzipMin = 0 // disabled, checked below
	}

	transportClient := retryablehttp.NewClient()
	transportClient.RetryMax = 0 // retries are resty's job
	transportClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWaitMin).
		SetRetryMaxWaitTime(cfg.RetryWaitMax).
		SetHeader("User-Agent", "agentlens-go/1.0").
		SetHeader(headerAPIKey, cfg.APIKey).
		SetHeader(headerProjectID, cfg.ProjectID).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	restyClient.SetTransport(transportClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: resilience.New(cfg.BreakerThreshold, cfg.BreakerCooldown),
		gzipMin: gzipMin,
	}
}

// CreateTrace creates (or upserts, keyed by ExternalID) a trace.
func (c *Client) CreateTrace(ctx context.Context, in TraceInput) (*Trace, error) {
	var out Trace
	if err := c.do(ctx, http.MethodPost, pathTraces, in, &out, nil); err != nil {
		return nil, fmt.Errorf("create trace %q: %w", in.ExternalID, err)
	}
	return &out, nil
}

// CreateSpan creates one span. The request carries an idempotency key so a
// transport-level retry never duplicates the record.
func (c *Client) CreateSpan(ctx context.Context, in SpanInput) (*Span, error) {
	headers := map[string]string{headerIdempotencyKey: uuid.NewString()}
	var out Span
	if err := c.do(ctx, http.MethodPost, pathSpans, in, &out, headers); err != nil {
		return nil, fmt.Errorf("create span %q: %w", in.Name, err)
	}
	return &out, nil
}

// CreateSpanBatch creates many spans in one call. The response reports
// counts only; no per-span ids come back.
func (c *Client) CreateSpanBatch(ctx context.Context, in []SpanInput) (*BatchResult, error) {
	body, err := c.batchBody(in)
	if err != nil {
		return nil, err
	}
	var out BatchResult
	if err := c.do(ctx, http.MethodPost, pathSpanBatch, body, &out, body.headers()); err != nil {
		return nil, fmt.Errorf("create span batch of %d: %w", len(in), err)
	}
	return &out, nil
}

// UpdateSpan applies a completion delta to an existing span.
func (c *Client) UpdateSpan(ctx context.Context, spanID string, upd SpanUpdate) (*Span, error) {
	var out Span
	path := pathSpans + "/" + spanID
	if err := c.do(ctx, http.MethodPatch, path, upd, &out, nil); err != nil {
		return nil, fmt.Errorf("update span %q: %w", spanID, err)
	}
	return &out, nil
}

// rawBody is a pre-encoded request body with fixed headers.
type rawBody struct {
	data    []byte
	gzipped bool
}

func (b *rawBody) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if b.gzipped {
		h["Content-Encoding"] = "gzip"
	}
	return h
}

func (c *Client) batchBody(in []SpanInput) (*rawBody, error) {
	payload, err := sonic.Marshal(map[string]any{"spans": in})
	if err != nil {
		return nil, fmt.Errorf("encode span batch: %w", err)
	}
	if c.gzipMin <= 0 || len(payload) < c.gzipMin {
		return &rawBody{data: payload}, nil
	}
	compressed, err := gzipBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("compress span batch: %w", err)
	}
	return &rawBody{data: compressed, gzipped: true}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	return c.breaker.Do(func() error {
		req := c.resty.R().
			SetContext(ctx).
			SetHeader(headerRequestID, id.NewRequest())
		for k, v := range headers {
			req.SetHeader(k, v)
		}
		switch b := body.(type) {
		case nil:
		case *rawBody:
			// Bytes, not a reader, so retries can resend the body.
			req.SetBody(b.data)
		default:
			req.SetBody(body)
		}
		if out != nil {
			req.SetResult(out)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return apiErrorFrom(resp)
		}
		return nil
	})
}
