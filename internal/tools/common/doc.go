// Package common provides shared helpers for MCP tool handlers:
// instrumentation wrappers that record metrics and audit logs for each
// invocation, and argument extraction utilities.
package common
