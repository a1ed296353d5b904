package docs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/docsforge/google-docs-mcp/internal/google"
)

// Common Docs API errors. Callers match with errors.Is.
var (
	// ErrNotFound indicates the document does not exist. Never retried.
	ErrNotFound = errors.New("docs: document not found")

	// ErrPermissionDenied indicates the service account lacks access
	// to the document. Never retried.
	ErrPermissionDenied = errors.New("docs: permission denied")

	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("docs: unauthorized (invalid credentials)")

	// ErrRateLimited indicates the API rate limit was exceeded.
	// Retryable after backoff.
	ErrRateLimited = errors.New("docs: rate limit exceeded")

	// ErrInvalidRequest indicates the remote service rejected the
	// request as malformed (typically an index outside the document's
	// coordinate space). Never retried.
	ErrInvalidRequest = errors.New("docs: invalid request")

	// ErrTransient indicates a network failure or 5xx response.
	// Retryable.
	ErrTransient = errors.New("docs: transient error")
)

// ValidationError reports a malformed edit operation before it is sent
// to the remote service. Pos is the zero-based position of the
// offending operation in the batch, or -1 when the error applies to
// the batch as a whole. A single invalid operation invalidates the
// whole batch.
type ValidationError struct {
	Pos    int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("docs: invalid request batch: %s", e.Reason)
	}
	return fmt.Sprintf("docs: invalid operation at position %d: %s", e.Pos, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPermissionDenied reports whether err indicates insufficient access.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsInvalidRequest reports whether err indicates a request the remote
// service rejected as malformed.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsRateLimited reports whether err indicates API rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTransient reports whether err indicates a retryable failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsRetryable reports whether the operation that produced err may be
// resubmitted as a whole. Auth, permission, not-found and validation
// failures are permanent.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}

// WrapError maps an error returned by the Google API client to the
// package's error taxonomy, attaching the document ID for context.
func WrapError(documentID string, err error) error {
	if err == nil {
		return nil
	}

	// Cancellation surfaces as-is so callers can distinguish it from
	// remote failures.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Token acquisition failures are auth errors, not transport errors.
	if google.IsAuthError(err) {
		return fmt.Errorf("document %s: %w", documentID, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound:
			return fmt.Errorf("document %s: %w", documentID, ErrNotFound)
		case gerr.Code == http.StatusForbidden:
			return fmt.Errorf("document %s: %w", documentID, ErrPermissionDenied)
		case gerr.Code == http.StatusUnauthorized:
			return fmt.Errorf("document %s: %w", documentID, ErrUnauthorized)
		case gerr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("document %s: %w", documentID, ErrRateLimited)
		case gerr.Code == http.StatusBadRequest:
			return fmt.Errorf("document %s: %s: %w", documentID, gerr.Message, ErrInvalidRequest)
		case gerr.Code >= 500:
			return fmt.Errorf("document %s: status %d: %w", documentID, gerr.Code, ErrTransient)
		default:
			return fmt.Errorf("document %s: %w", documentID, err)
		}
	}

	// Anything else is a network-level failure: connection refused,
	// timeout, DNS. All retryable.
	return fmt.Errorf("document %s: %w: %v", documentID, ErrTransient, err)
}
