package docs_tools

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/docsforge/google-docs-mcp/internal/docs"
	"github.com/docsforge/google-docs-mcp/internal/server"
)

type staticTokenProvider struct{}

func (staticTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "test-token"}, nil
}

// newTestContext builds a server context whose Docs client talks to a
// fake API server.
func newTestContext(t *testing.T, handler http.HandlerFunc) *server.ServerContext {
	t.Helper()

	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	client, err := docs.NewClient(context.Background(), docs.ClientConfig{
		HTTPClient: api.Client(),
		Endpoint:   api.URL,
		RateLimit:  docs.RateLimitConfig{RequestsPerSecond: 10000, BurstSize: 1000},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	sc, err := server.NewServerContext(context.Background(), staticTokenProvider{}, slog.Default())
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	sc.SetDocsClient(client)
	return sc
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("result content is not text: %+v", result.Content[0])
	}
	return text.Text
}

const sampleDocumentJSON = `{
	"documentId": "doc1",
	"title": "Notes",
	"body": {"content": [
		{"paragraph": {"elements": [{"textRun": {"content": "Hello\n"}}]}}
	]}
}`

func TestHandleGetDocumentMarkdown(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocumentJSON))
	})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc1",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"# Notes", "Hello"} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q:\n%s", want, text)
		}
	}
}

func TestHandleGetDocumentJSONOutline(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocumentJSON))
	})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id":     "doc1",
		"response_format": "json",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{`"document_id": "doc1"`, `"title": "Notes"`, `"runs"`} {
		if !strings.Contains(text, want) {
			t.Errorf("outline missing %q:\n%s", want, text)
		}
	}
}

func TestHandleGetDocumentValidation(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no HTTP call expected")
	})

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing document_id", map[string]interface{}{}, "document_id is required"},
		{
			"invalid format",
			map[string]interface{}{"document_id": "doc1", "response_format": "html"},
			"Invalid response_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleGetDocument(context.Background(), request(tt.args), sc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected error result")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("error %q does not contain %q", text, tt.want)
			}
		})
	}
}

func TestHandleGetDocumentNotFound(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "not found"}}`))
	})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc123",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "doc123") {
		t.Errorf("error should name the document: %s", text)
	}
}

func TestHandleUpdateDocument(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost && strings.Contains(r.URL.Path, ":batchUpdate") {
			_, _ = w.Write([]byte(`{"documentId": "doc1", "replies": [{}, {}]}`))
			return
		}
		_, _ = w.Write([]byte(sampleDocumentJSON))
	})

	result, err := handleUpdateDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc1",
		"requests": []interface{}{
			map[string]interface{}{
				"insert_text": map[string]interface{}{"text": "Hi", "index": float64(1)},
			},
			map[string]interface{}{
				"replace_all_text": map[string]interface{}{"find_text": "Hi", "replace_text": "Hello"},
			},
		},
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"Applied 2 operation(s)", "Hello"} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %q:\n%s", want, text)
		}
	}
}

func TestHandleUpdateDocumentRejectsInvalidBatch(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no HTTP call expected for an invalid batch")
	})

	result, err := handleUpdateDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc1",
		"requests": []interface{}{
			map[string]interface{}{
				"delete_content_range": map[string]interface{}{
					"start_index": float64(5), "end_index": float64(5),
				},
			},
		},
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "position 0") {
		t.Errorf("error should carry the operation position: %s", text)
	}
}

func TestHandleCreateDocument(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documentId": "new-doc", "title": "Meeting Notes"}`))
	})

	result, err := handleCreateDocument(context.Background(), request(map[string]interface{}{
		"title": "Meeting Notes",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if text := resultText(t, result); !strings.Contains(text, "new-doc") {
		t.Errorf("result missing document ID: %s", text)
	}
}

func TestHandleGetMetadata(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "doc1",
			"name": "Roadmap",
			"mimeType": "application/vnd.google-apps.document"
		}`))
	})

	result, err := handleGetMetadata(context.Background(), request(map[string]interface{}{
		"document_id": "doc1",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if text := resultText(t, result); !strings.Contains(text, "Roadmap") {
		t.Errorf("result missing file name: %s", text)
	}
}

func TestRegisterDocsTools(t *testing.T) {
	sc := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {})
	s := mcpserver.NewMCPServer("test", "0.0.1")

	if err := RegisterDocsTools(s, sc); err != nil {
		t.Fatalf("RegisterDocsTools: %v", err)
	}
}
