package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Exporter types accepted by MetricsExporter and TracingExporter.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	TokenRefreshSuccess = "success"
	TokenRefreshFailure = "failure"
	TokenRefreshCached  = "cached"

	ServiceDocs  = "docs"
	ServiceDrive = "drive"
)

// Config holds OpenTelemetry instrumentation settings. DefaultConfig reads
// every field from the environment; callers then override what they need.
type Config struct {
	// ServiceName identifies this service in telemetry (default: google-docs-mcp).
	ServiceName string

	// ServiceVersion is stamped into the resource attributes.
	ServiceVersion string

	// ServiceInstanceID names this instance. In Kubernetes this is
	// typically the pod name; empty falls back to the hostname.
	ServiceInstanceID string

	// K8sNamespace and K8sPodName are attached as resource attributes
	// when set.
	K8sNamespace string
	K8sPodName   string

	// Enabled turns metrics and tracing on. Set
	// INSTRUMENTATION_ENABLED=false to run without telemetry.
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp", or "stdout"
	// (default: "prometheus").
	MetricsExporter string

	// TracingExporter is one of "otlp", "stdout", or "none"
	// (default: "none").
	TracingExporter string

	// OTLPEndpoint is the collector endpoint without a protocol prefix,
	// e.g. "localhost:4318". Required for the otlp exporters.
	OTLPEndpoint string

	// OTLPInsecure uses plain HTTP for OTLP export. Only for local
	// development against unencrypted collectors.
	OTLPInsecure bool

	// TraceSamplingRate is between 0.0 and 1.0 (default: 0.1).
	TraceSamplingRate float64

	// PrometheusEndpoint is the metrics scrape path (default: "/metrics").
	PrometheusEndpoint string

	// DetailedLabels adds high-cardinality labels such as document IDs to
	// tool metrics. Keep disabled in production.
	DetailedLabels bool

	// AuditLogging configures the per-tool-call audit trail.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the audit trail written for tool invocations.
type AuditLoggingConfig struct {
	// Enabled turns audit logging on (default: true).
	Enabled bool

	// IncludeDocumentIDs logs full document IDs in audit lines. IDs grant
	// no access by themselves, but some deployments treat them as
	// sensitive; default is true.
	IncludeDocumentIDs bool

	// LogLevel is the slog level for audit lines: "debug", "info",
	// "warn", or "error" (default: "info").
	LogLevel string
}

// DefaultConfig builds a Config from environment variables, falling back to
// defaults suitable for a Prometheus-scraped deployment.
func DefaultConfig() Config {
	return Config{
		ServiceName:        envString("OTEL_SERVICE_NAME", "google-docs-mcp"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  envString("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:       envString("K8S_NAMESPACE", envString("POD_NAMESPACE", "")),
		K8sPodName:         envString("K8S_POD_NAME", envString("HOSTNAME", "")),
		Enabled:            envBool("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    envString("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:    envString("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:       envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  envFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: envString("PROMETHEUS_ENDPOINT", "/metrics"),
		DetailedLabels:     envBool("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:            envBool("AUDIT_LOGGING_ENABLED", true),
			IncludeDocumentIDs: envBool("AUDIT_LOGGING_INCLUDE_DOCUMENT_IDS", true),
			LogLevel:           envString("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate rejects exporter names and sampling rates that the Provider
// cannot honour.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
