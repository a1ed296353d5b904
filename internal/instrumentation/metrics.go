package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Shared metric label keys.
const (
	attrMethod     = "method"
	attrPath       = "path"
	attrStatus     = "status"
	attrOperation  = "operation"
	attrService    = "service"
	attrResult     = "result"
	attrTool       = "tool"
	attrDocumentID = "document_id"
)

// Histogram bucket boundaries, in seconds. HTTP requests are expected to be
// fast; Google API calls and tool invocations can block on retries.
var (
	httpDurationBuckets   = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	remoteDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
)

// Metrics records the server's observability metrics. The zero value is a
// no-op recorder, which is what a disabled Provider hands out.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
	googleAPIRetriesTotal      metric.Int64Counter

	tokenRefreshTotal metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels opts in to high-cardinality labels such as document IDs.
	detailedLabels bool
}

type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name, desc, unit string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		b.err = fmt.Errorf("failed to create %s counter: %w", name, err)
	}
	return c
}

func (b *instrumentBuilder) histogram(name, desc string, buckets []float64) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		b.err = fmt.Errorf("failed to create %s histogram: %w", name, err)
	}
	return h
}

func (b *instrumentBuilder) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		b.err = fmt.Errorf("failed to create %s gauge: %w", name, err)
	}
	return c
}

// NewMetrics registers all instruments on the given meter. When
// detailedLabels is true, per-document labels are attached to tool metrics.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	b := &instrumentBuilder{meter: meter}

	m := &Metrics{
		detailedLabels: detailedLabels,

		httpRequestsTotal: b.counter("http_requests_total",
			"Total number of HTTP requests", "{request}"),
		httpRequestDuration: b.histogram("http_request_duration_seconds",
			"HTTP request duration in seconds", httpDurationBuckets),
		activeSessions: b.upDownCounter("active_sessions",
			"Number of active MCP sessions", "{session}"),

		googleAPIOperationsTotal: b.counter("google_api_operations_total",
			"Total number of Google API operations", "{operation}"),
		googleAPIOperationDuration: b.histogram("google_api_operation_duration_seconds",
			"Google API operation duration in seconds", remoteDurationBuckets),
		googleAPIRetriesTotal: b.counter("google_api_retries_total",
			"Total number of Google API retry attempts", "{retry}"),

		tokenRefreshTotal: b.counter("auth_token_refresh_total",
			"Total number of service account token refresh attempts", "{attempt}"),

		toolInvocationsTotal: b.counter("mcp_tool_invocations_total",
			"Total number of MCP tool invocations", "{invocation}"),
		toolDuration: b.histogram("mcp_tool_duration_seconds",
			"MCP tool execution duration in seconds", remoteDurationBuckets),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// RecordHTTPRequest records one HTTP request against the MCP endpoint.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records one upstream call. Service is the Google
// service name ("docs", "drive"), operation the call type ("get", "create",
// "batch_update", "metadata"), status "success" or "error".
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIRetry records one retry attempt against the Google API.
func (m *Metrics) RecordGoogleAPIRetry(ctx context.Context, service, operation string) {
	if m.googleAPIRetriesTotal == nil {
		return
	}
	m.googleAPIRetriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
	))
}

// RecordTokenRefresh records a service account token fetch. Result is one of
// "success", "failure", or "cached".
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m.tokenRefreshTotal == nil {
		return
	}
	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records an MCP tool invocation with its outcome.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithDocument(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithDocument records a tool invocation together with
// the document it targeted. The document ID label is only attached when
// detailedLabels is enabled; document IDs are unbounded and would otherwise
// explode metric cardinality.
func (m *Metrics) RecordToolInvocationWithDocument(ctx context.Context, toolName, status, documentID string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}
	kvs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && documentID != "" {
		kvs = append(kvs, attribute.String(attrDocumentID, documentID))
	}
	attrs := metric.WithAttributes(kvs...)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// IncrementActiveSessions bumps the active session gauge.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions drops the active session gauge.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
