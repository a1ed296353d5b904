// Package server provides the MCP server context, health checks, and
// the dedicated metrics server for the google-docs-mcp application.
//
// # Key Components
//
// ServerContext manages the Docs API client with lazy initialization
// and caching. Authentication is service-account only: a single
// credential loaded at startup serves every request, so there is no
// per-user session or OAuth flow.
//
// MetricsServer serves Prometheus metrics on a dedicated port,
// isolated from the MCP transport.
//
// HealthChecker provides /healthz and /readyz endpoints for
// Kubernetes-style probes.
package server
