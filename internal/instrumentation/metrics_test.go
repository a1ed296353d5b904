package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationGet, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationBatchUpdate, StatusError, 500*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationMetadata, StatusSuccess, 100*time.Millisecond)
	metrics.RecordGoogleAPIRetry(ctx, ServiceDocs, OperationGet)
}

func TestMetrics_RecordTokenRefresh(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordTokenRefresh(ctx, TokenRefreshSuccess)
	metrics.RecordTokenRefresh(ctx, TokenRefreshFailure)
	metrics.RecordTokenRefresh(ctx, TokenRefreshCached)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordToolInvocation(ctx, "google_docs_get_document", StatusSuccess, 150*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "google_docs_update_document", StatusError, 300*time.Millisecond)
	metrics.RecordToolInvocationWithDocument(ctx, "google_docs_get_document", StatusSuccess, "doc123", 150*time.Millisecond)
}

func TestMetrics_ActiveSessions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}

func TestMetrics_UninitializedIsNoop(t *testing.T) {
	ctx := context.Background()
	metrics := &Metrics{}

	// A zero Metrics comes from a disabled provider; calls must be safe.
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationGet, StatusSuccess, time.Millisecond)
	metrics.RecordGoogleAPIRetry(ctx, ServiceDocs, OperationGet)
	metrics.RecordTokenRefresh(ctx, TokenRefreshSuccess)
	metrics.RecordToolInvocation(ctx, "google_docs_get_document", StatusSuccess, time.Millisecond)
	metrics.RecordToolInvocationWithDocument(ctx, "google_docs_get_document", StatusSuccess, "doc123", time.Millisecond)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}

func TestTruncateDocumentID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"", "unknown"},
		{"short", "short"},
		{"1mAbCdEfGhIjKlMnOpQrStUv", "1mAbCdEf..."},
	}

	for _, tt := range tests {
		if got := TruncateDocumentID(tt.id); got != tt.want {
			t.Errorf("TruncateDocumentID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
