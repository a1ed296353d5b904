package docs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/docsforge/google-docs-mcp/internal/google"
	"github.com/docsforge/google-docs-mcp/internal/logging"
)

const (
	// DefaultMaxAttempts is the retry budget for transient failures.
	DefaultMaxAttempts = 3

	// DefaultInitialBackoff is the delay before the first retry; it
	// doubles after each failed attempt.
	DefaultInitialBackoff = 500 * time.Millisecond
)

// ClientConfig holds configuration for a Docs API client.
type ClientConfig struct {
	// TokenProvider supplies bearer tokens. Required unless
	// HTTPClient is set.
	TokenProvider google.TokenProvider

	// MaxAttempts is the total attempt budget for retryable
	// failures. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	// Defaults to DefaultInitialBackoff.
	InitialBackoff time.Duration

	// RateLimit paces outbound requests. Zero selects
	// DefaultRateLimit.
	RateLimit RateLimitConfig

	// Endpoint overrides the API base URL, for tests.
	Endpoint string

	// HTTPClient overrides the authenticated transport, for tests.
	// When set, TokenProvider is not consulted.
	HTTPClient *http.Client

	// Logger receives retry and request logs. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Metrics receives retry counts. Optional.
	Metrics RetryMetrics
}

// RetryMetrics counts retry attempts against the Google APIs.
// *instrumentation.Metrics satisfies it.
type RetryMetrics interface {
	RecordGoogleAPIRetry(ctx context.Context, service, operation string)
}

// Client wraps the Google Docs and Drive API services with typed error
// mapping, bounded retry and rate limiting.
type Client struct {
	docsService  *docs.Service
	driveService *drive.Service
	limiter      *RateLimiter
	maxAttempts  int
	backoff      time.Duration
	logger       *slog.Logger
	metrics      RetryMetrics

	// sleep is overridable in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Docs API client authenticated through the given
// token provider.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.TokenProvider != nil:
		opts = append(opts, option.WithTokenSource(google.TokenSource(ctx, cfg.TokenProvider)))
	default:
		return nil, fmt.Errorf("token provider is required")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	docsService, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = DefaultInitialBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		docsService:  docsService,
		driveService: driveService,
		limiter:      NewRateLimiter(cfg.RateLimit),
		maxAttempts:  maxAttempts,
		backoff:      backoff,
		logger:       logger,
		metrics:      cfg.Metrics,
		sleep:        sleepContext,
	}, nil
}

// GetDocument retrieves a document's full structure by ID.
// Transient failures are retried with exponential backoff; not-found
// and permission errors surface immediately.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, &ValidationError{Pos: -1, Reason: "documentID is required"}
	}

	var doc *docs.Document
	err := c.withRetry(ctx, "docs", documentID, "get_document", func() error {
		var err error
		// IncludeTabsContent returns document.tabs populated for
		// multi-tab docs, or document.body for legacy docs.
		doc, err = c.docsService.Documents.Get(documentID).
			IncludeTabsContent(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// BatchUpdate submits an ordered request batch against a document.
// The remote service applies the batch atomically and in order. On
// transient failure the whole batch is resubmitted; a batch is never
// partially retried, since partial application would corrupt the index
// assumptions of the remaining operations.
func (c *Client) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) (*docs.BatchUpdateDocumentResponse, error) {
	if documentID == "" {
		return nil, &ValidationError{Pos: -1, Reason: "documentID is required"}
	}
	if len(requests) == 0 {
		return nil, &ValidationError{Pos: -1, Reason: "at least one request is required"}
	}

	var resp *docs.BatchUpdateDocumentResponse
	err := c.withRetry(ctx, "docs", documentID, "batch_update", func() error {
		var err error
		resp, err = c.docsService.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// UpdateDocument translates wire operations, applies them as one
// batch, and re-fetches the document so the caller receives the
// post-mutation state (the batch-update response itself carries no
// document content).
func (c *Client) UpdateDocument(ctx context.Context, documentID string, ops []Operation) (*docs.Document, error) {
	requests, err := Translate(ops)
	if err != nil {
		return nil, err
	}

	if _, err := c.BatchUpdate(ctx, documentID, requests); err != nil {
		return nil, err
	}

	return c.GetDocument(ctx, documentID)
}

// CreateDocument creates a new, empty document with the given title.
func (c *Client) CreateDocument(ctx context.Context, title string) (*docs.Document, error) {
	if title == "" {
		return nil, &ValidationError{Pos: -1, Reason: "title is required"}
	}

	var doc *docs.Document
	err := c.withRetry(ctx, "docs", "", "create_document", func() error {
		var err error
		doc, err = c.docsService.Documents.Create(&docs.Document{Title: title}).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// GetDocumentAsMarkdown fetches a document and renders it to Markdown.
func (c *Client) GetDocumentAsMarkdown(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return DocumentToMarkdown(doc)
}

// GetDocumentAsPlainText fetches a document and extracts its plain text.
func (c *Client) GetDocumentAsPlainText(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return DocumentToPlainText(doc)
}

// GetFileMetadata retrieves Drive metadata for a document or any other
// Drive file.
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*DocumentMetadata, error) {
	if fileID == "" {
		return nil, &ValidationError{Pos: -1, Reason: "fileID is required"}
	}

	var file *drive.File
	err := c.withRetry(ctx, "drive", fileID, "get_file_metadata", func() error {
		var err error
		file, err = c.driveService.Files.Get(fileID).
			Fields("id, name, mimeType, createdTime, modifiedTime, size, owners").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	metadata := &DocumentMetadata{
		ID:           file.Id,
		Name:         file.Name,
		MimeType:     file.MimeType,
		CreatedTime:  file.CreatedTime,
		ModifiedTime: file.ModifiedTime,
		Size:         file.Size,
	}
	for _, owner := range file.Owners {
		metadata.Owners = append(metadata.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return metadata, nil
}

// withRetry runs call with rate limiting and a bounded retry loop.
// Only transient and rate-limit errors are retried; retries never
// cross a cancellation boundary.
func (c *Client) withRetry(ctx context.Context, service, documentID, operation string, call func() error) error {
	backoff := c.backoff

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := call()
		if err == nil {
			return nil
		}

		lastErr = WrapError(documentID, err)
		if !IsRetryable(lastErr) || attempt == c.maxAttempts {
			return lastErr
		}

		if IsRateLimited(lastErr) {
			c.limiter.RecordRateLimitError(retryAfter(err))
		}
		if c.metrics != nil {
			c.metrics.RecordGoogleAPIRetry(ctx, service, operation)
		}

		c.logger.Warn("retrying Docs API call",
			logging.Operation(operation),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			logging.Err(lastErr),
		)

		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}

	return lastErr
}

// retryAfter extracts the Retry-After header from a 429 response, if
// present.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	seconds, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
