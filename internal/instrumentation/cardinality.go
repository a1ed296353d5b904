package instrumentation

// Cardinality management helpers for metrics.
//
// Document IDs are unbounded, so they never appear as metric labels
// unless DetailedLabels is explicitly enabled. Operation and service
// names are drawn from the small fixed sets below.

// Common operation types for Google API metrics.
// Status, token refresh, and Service constants are defined in config.go.
const (
	OperationGet         = "get"
	OperationCreate      = "create"
	OperationBatchUpdate = "batch_update"
	OperationMetadata    = "metadata"
)

// TruncateDocumentID shortens a document ID for low-stakes log lines.
// Full IDs belong only in audit logs.
func TruncateDocumentID(id string) string {
	if id == "" {
		return "unknown"
	}
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
