package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestToolInvocationLifecycle(t *testing.T) {
	ti := NewToolInvocation("google_docs_update_document").
		WithDocument("doc123").
		WithService(ServiceDocs, OperationBatchUpdate)

	if ti.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("expected Success after CompleteSuccess")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
	if ti.Duration < 0 {
		t.Error("Duration should be non-negative")
	}
}

func TestToolInvocationCompleteWithError(t *testing.T) {
	ti := NewToolInvocation("google_docs_get_document").
		WithDocument("doc123").
		CompleteWithError(errors.New("document not found"))

	if ti.Success {
		t.Error("expected failure")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
	if ti.Error != "document not found" {
		t.Errorf("Error = %q", ti.Error)
	}
}

func TestToolInvocationLogAttrsTruncatesDocumentID(t *testing.T) {
	ti := NewToolInvocation("google_docs_get_document").
		WithDocument("1mAbCdEfGhIjKlMnOpQrStUv").
		CompleteSuccess()

	var gotTruncated, gotFull string
	for _, attr := range ti.LogAttrs() {
		if attr.Key == "document_id" {
			gotTruncated = attr.Value.String()
		}
	}
	for _, attr := range ti.LogAuditAttrs() {
		if attr.Key == "document_id" {
			gotFull = attr.Value.String()
		}
	}

	if gotTruncated != "1mAbCdEf..." {
		t.Errorf("LogAttrs document_id = %q, want truncated form", gotTruncated)
	}
	if gotFull != "1mAbCdEfGhIjKlMnOpQrStUv" {
		t.Errorf("LogAuditAttrs document_id = %q, want full ID", gotFull)
	}
}

func TestAuditLoggerLogsInvocations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	audit := NewAuditLogger(logger)

	audit.LogToolInvocation(NewToolInvocation("google_docs_get_document").
		WithDocument("doc123").
		WithService(ServiceDocs, OperationGet).
		CompleteSuccess())

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("output missing tool_executed: %q", out)
	}
	if !strings.Contains(out, "doc123") {
		t.Errorf("output missing document id: %q", out)
	}

	buf.Reset()
	audit.LogToolInvocation(NewToolInvocation("google_docs_update_document").
		CompleteWithError(errors.New("permission denied")))

	out = buf.String()
	if !strings.Contains(out, "tool_failed") {
		t.Errorf("output missing tool_failed: %q", out)
	}
	if !strings.Contains(out, "permission denied") {
		t.Errorf("output missing error: %q", out)
	}
}

func TestAuditLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	audit := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})

	audit.LogToolInvocation(NewToolInvocation("google_docs_get_document").CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("disabled audit logger should emit nothing: %q", buf.String())
	}
}

func TestAuditLoggerExcludesDocumentIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	audit := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{
		Enabled:            true,
		IncludeDocumentIDs: false,
	})

	fullID := "1mAbCdEfGhIjKlMnOpQrStUv"
	ti := NewToolInvocation("google_docs_get_document").WithDocument(fullID)
	ti.Duration = 10 * time.Millisecond
	ti.Success = true
	audit.LogToolInvocation(ti)

	if strings.Contains(buf.String(), fullID) {
		t.Errorf("output should not contain the full document ID: %q", buf.String())
	}
}
