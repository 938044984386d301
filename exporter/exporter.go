package exporter

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/agentlens/agentlens-go/api"
	"github.com/agentlens/agentlens-go/internal/cache"
	"github.com/agentlens/agentlens-go/internal/id"
	"github.com/agentlens/agentlens-go/internal/logging"
	"github.com/agentlens/agentlens-go/internal/monitoring"
	"github.com/agentlens/agentlens-go/telemetry"
)

// Backend is the narrow slice of the AgentLens API the exporter drives.
// *api.Client implements it; tests substitute fakes.
type Backend interface {
	CreateTrace(ctx context.Context, in api.TraceInput) (*api.Trace, error)
	CreateSpan(ctx context.Context, in api.SpanInput) (*api.Span, error)
	CreateSpanBatch(ctx context.Context, in []api.SpanInput) (*api.BatchResult, error)
	UpdateSpan(ctx context.Context, spanID string, upd api.SpanUpdate) (*api.Span, error)
}

var _ Backend = (*api.Client)(nil)

// defaultTraceName is used when a group carries spans but no trace event.
const defaultTraceName = "Agent run"

// Exporter forwards trace and span events to the AgentLens backend.
// Safe for concurrent use; multiple Export calls may be in flight at once.
type Exporter struct {
	cfg       Config
	threshold int
	backend   Backend
	log       *logging.Logger
	metrics   *monitoring.Metrics

	traces *cache.Cache // external trace id -> backend trace id
	spans  *cache.Cache // external span id -> backend span id or marker

	flightMu sync.Mutex
	inflight map[string]*traceFlight
}

// traceFlight coalesces concurrent creators of one external trace id onto
// a single backend call.
type traceFlight struct {
	done chan struct{}
	id   string
	err  error
}

// CacheStats reports live identity cache sizes.
type CacheStats struct {
	Traces int
	Spans  int
}

// New creates an Exporter backed by the real REST client.
func New(cfg Config) (*Exporter, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, errors.New("exporter: APIKey is required")
	}
	backend := api.NewClient(api.Config{
		APIKey:     cfg.APIKey,
		ProjectID:  cfg.ProjectID,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	})
	return NewWithBackend(cfg, backend)
}

// NewWithBackend creates an Exporter over a caller-supplied backend.
func NewWithBackend(cfg Config, backend Backend) (*Exporter, error) {
	if backend == nil {
		return nil, errors.New("exporter: backend is required")
	}
	cfg = cfg.withDefaults()

	log := logging.Wrap(cfg.Logger)
	if cfg.Logger == nil {
		log = logging.New(cfg.Debug)
	}

	return &Exporter{
		cfg:       cfg,
		threshold: cfg.batchThreshold(),
		backend:   backend,
		log:       log,
		metrics:   monitoring.New(cfg.MetricsRegisterer),
		traces:    cache.New(cfg.MaxCacheSize, cfg.CacheTTL),
		spans:     cache.New(cfg.MaxCacheSize, cfg.CacheTTL),
		inflight:  make(map[string]*traceFlight),
	}, nil
}

// Export forwards a batch of events. Items are grouped by owning trace;
// groups are processed concurrently and isolated from each other, as are
// spans within a group. Per-item failures go to the error hook, never to
// the returned error. An empty batch performs no I/O. Once ctx is
// cancelled no further backend calls are issued; calls already started
// resolve normally.
func (e *Exporter) Export(ctx context.Context, items []telemetry.Item) error {
	if len(items) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		e.log.Debug("export skipped, context already cancelled",
			zap.Int("items", len(items)))
		return nil
	}

	groups := groupByTrace(items)
	e.log.Debug("export started",
		zap.Int("items", len(items)),
		zap.Int("groups", len(groups)))

	var wg sync.WaitGroup
	for _, g := range groups {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.exportGroup(ctx, g)
		}()
	}
	wg.Wait()
	return nil
}

// CacheStats returns the number of live entries in each identity cache.
func (e *Exporter) CacheStats() CacheStats {
	return CacheStats{Traces: e.traces.Len(), Spans: e.spans.Len()}
}

// ClearCaches drops both identity caches. Subsequent exports re-create
// traces and re-submit spans.
func (e *Exporter) ClearCaches() {
	e.traces.Clear()
	e.spans.Clear()
}

// Shutdown releases the exporter's state. It holds no buffers, so there
// is nothing to drain; the caches are cleared.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.ClearCaches()
	e.log.Debug("exporter shut down")
	return nil
}

// ForceFlush is a no-op kept to satisfy the framework's processor
// contract: batching decisions happen synchronously inside Export, the
// exporter never buffers between calls.
func (e *Exporter) ForceFlush(ctx context.Context) error {
	return nil
}

// traceGroup is the set of items sharing one external trace id, computed
// fresh on every Export call.
type traceGroup struct {
	externalID string
	trace      *telemetry.TraceEvent
	spans      []*telemetry.SpanEvent
}

func groupByTrace(items []telemetry.Item) []*traceGroup {
	byID := make(map[string]*traceGroup)
	var order []*traceGroup

	group := func(externalID string) *traceGroup {
		if g, ok := byID[externalID]; ok {
			return g
		}
		g := &traceGroup{externalID: externalID}
		byID[externalID] = g
		order = append(order, g)
		return g
	}

	for _, item := range items {
		switch ev := item.(type) {
		case *telemetry.TraceEvent:
			if ev.ExternalTraceID == "" {
				continue
			}
			g := group(ev.ExternalTraceID)
			if g.trace == nil {
				g.trace = ev
			}
		case *telemetry.SpanEvent:
			if ev.ExternalTraceID == "" || ev.ExternalSpanID == "" {
				continue
			}
			g := group(ev.ExternalTraceID)
			g.spans = append(g.spans, ev)
		}
	}
	return order
}

func (e *Exporter) exportGroup(ctx context.Context, g *traceGroup) {
	if ctx.Err() != nil {
		return
	}

	traceID, err := e.resolveTrace(ctx, g)
	if err != nil {
		// Fail fast for the whole group: spans cannot be attributed to a
		// trace that does not exist remotely.
		e.reportError(err, ErrorContext{
			Operation:  OpCreateTrace,
			ExternalID: g.externalID,
			ItemType:   "trace",
		})
		return
	}

	fresh := e.filterNew(g.spans)
	if len(fresh) == 0 {
		return
	}

	if e.threshold > 0 && len(fresh) >= e.threshold {
		if e.exportBatch(ctx, g.externalID, traceID, fresh) {
			return
		}
		// Batch failed; degrade to individual submission for the same set.
	}
	e.exportIndividually(ctx, traceID, fresh)
}

func (e *Exporter) resolveTrace(ctx context.Context, g *traceGroup) (string, error) {
	if traceID, ok := e.traces.Get(g.externalID); ok {
		e.metrics.CacheHits.WithLabelValues("traces").Inc()
		e.log.Debug("trace cache hit",
			zap.String("external_trace_id", g.externalID),
			zap.String("trace_id", traceID))
		return traceID, nil
	}
	e.metrics.CacheMisses.WithLabelValues("traces").Inc()

	e.flightMu.Lock()
	if f, ok := e.inflight[g.externalID]; ok {
		e.flightMu.Unlock()
		select {
		case <-f.done:
			return f.id, f.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f := &traceFlight{done: make(chan struct{})}
	e.inflight[g.externalID] = f
	e.flightMu.Unlock()

	f.id, f.err = e.createTrace(ctx, g)

	e.flightMu.Lock()
	delete(e.inflight, g.externalID)
	e.flightMu.Unlock()
	close(f.done)

	return f.id, f.err
}

func (e *Exporter) createTrace(ctx context.Context, g *traceGroup) (string, error) {
	in := api.TraceInput{Name: defaultTraceName, ExternalID: g.externalID}
	if g.trace != nil {
		if g.trace.Name != "" {
			in.Name = g.trace.Name
		}
		in.Metadata = traceMetadata(g.trace)
	}

	created, err := e.backend.CreateTrace(ctx, in)
	if err != nil {
		return "", err
	}

	e.traces.Set(g.externalID, created.ID)
	e.metrics.TracesCreated.Inc()
	e.log.Debug("trace created",
		zap.String("external_trace_id", g.externalID),
		zap.String("trace_id", created.ID))
	return created.ID, nil
}

func traceMetadata(ev *telemetry.TraceEvent) map[string]any {
	if ev.GroupID == "" {
		return ev.Metadata
	}
	meta := make(map[string]any, len(ev.Metadata)+1)
	for k, v := range ev.Metadata {
		meta[k] = v
	}
	meta["groupId"] = ev.GroupID
	return meta
}

// filterNew drops spans already marked exported. A dropped span is not an
// error; it simply reached us twice.
func (e *Exporter) filterNew(spans []*telemetry.SpanEvent) []*telemetry.SpanEvent {
	fresh := make([]*telemetry.SpanEvent, 0, len(spans))
	for _, s := range spans {
		if e.spans.Has(s.ExternalSpanID) {
			e.metrics.SpansDeduped.Inc()
			e.log.Debug("span already exported",
				zap.String("external_span_id", s.ExternalSpanID))
			continue
		}
		fresh = append(fresh, s)
	}
	return fresh
}

// exportBatch submits spans through the batch endpoint. It returns false
// when the caller should fall back to individual submission.
func (e *Exporter) exportBatch(ctx context.Context, externalTraceID, traceID string, spans []*telemetry.SpanEvent) bool {
	if ctx.Err() != nil {
		return true
	}

	inputs := make([]api.SpanInput, len(spans))
	for i, s := range spans {
		inputs[i] = buildSpanInput(s, traceID)
	}

	result, err := e.backend.CreateSpanBatch(ctx, inputs)
	if err != nil {
		e.metrics.BatchFallbacks.Inc()
		e.reportError(err, ErrorContext{
			Operation:  OpCreateSpanBatch,
			ExternalID: externalTraceID,
			ItemType:   "span",
		})
		return false
	}

	// No per-span ids come back from the batch endpoint; a marker value
	// is enough to record presence.
	for _, s := range spans {
		e.spans.Set(s.ExternalSpanID, id.NewMarker())
	}
	e.metrics.SpansCreated.WithLabelValues("batch").Add(float64(len(spans)))
	e.log.Debug("span batch created",
		zap.String("external_trace_id", externalTraceID),
		zap.Int("created", result.Created),
		zap.Int("total", result.Total))
	return true
}

func (e *Exporter) exportIndividually(ctx context.Context, traceID string, spans []*telemetry.SpanEvent) {
	var wg sync.WaitGroup
	for _, s := range spans {
		if ctx.Err() != nil {
			break
		}
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.exportSpan(ctx, traceID, s)
		}()
	}
	wg.Wait()
}

func (e *Exporter) exportSpan(ctx context.Context, traceID string, s *telemetry.SpanEvent) {
	if ctx.Err() != nil {
		return
	}

	created, err := e.backend.CreateSpan(ctx, buildSpanInput(s, traceID))
	if err != nil {
		e.reportError(err, ErrorContext{
			Operation:  OpCreateSpan,
			ExternalID: s.ExternalSpanID,
			ItemType:   "span",
		})
		return
	}
	e.spans.Set(s.ExternalSpanID, created.ID)
	e.metrics.SpansCreated.WithLabelValues("individual").Inc()
	e.log.Debug("span created",
		zap.String("external_span_id", s.ExternalSpanID),
		zap.String("span_id", created.ID))

	if !s.Terminal() {
		return
	}
	upd := buildSpanUpdate(s)
	if upd.Empty() {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := e.backend.UpdateSpan(ctx, created.ID, upd); err != nil {
		// The span stays recorded as created; only its terminal state
		// failed to reach the backend.
		e.reportError(err, ErrorContext{
			Operation:  OpUpdateSpan,
			ExternalID: s.ExternalSpanID,
			ItemType:   "span",
		})
		return
	}
	e.metrics.SpansUpdated.Inc()
	e.log.Debug("span completion delivered",
		zap.String("external_span_id", s.ExternalSpanID),
		zap.String("status", string(upd.Status)))
}

func (e *Exporter) reportError(err error, ectx ErrorContext) {
	e.metrics.ExportErrors.WithLabelValues(string(ectx.Operation)).Inc()
	if e.cfg.OnError != nil {
		e.cfg.OnError(err, ectx)
		return
	}
	e.log.Debug("export operation failed",
		zap.String("operation", string(ectx.Operation)),
		zap.String("external_id", ectx.ExternalID),
		zap.String("item_type", ectx.ItemType),
		zap.Error(err))
}
