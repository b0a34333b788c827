// Package constants defines system-wide constants for the RiskScore-360 service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is the name reported to tracing and metrics backends
	ServiceName = "riskscore360"

	// MetricsNamespace prefixes every Prometheus metric emitted by the service
	MetricsNamespace = "riskscore"

	// ReportSchemaVersion is the version of the composite risk report document
	ReportSchemaVersion = "2.0"

	// UnknownIdentifier is used when the signal document omits a subscription or resource group
	UnknownIdentifier = "unknown"
)

// ================================================================================
// Component Names
// ================================================================================

// Component names in canonical order. The order is load-bearing: it is the
// tie-break order of the risk driver ranking.
const (
	ComponentPolicy     = "policy"
	ComponentIAM        = "iam"
	ComponentDefender   = "defender"
	ComponentNetwork    = "network"
	ComponentEncryption = "encryption"
)

// CanonicalComponents lists every scored component in canonical order.
var CanonicalComponents = []string{
	ComponentPolicy,
	ComponentIAM,
	ComponentDefender,
	ComponentNetwork,
	ComponentEncryption,
}

// ================================================================================
// Collector Contract Constants
// ================================================================================

// These values are owned by the signal collector. They are listed here so
// that test fixtures and documentation agree with the collector's output.
const (
	// RoleOwnerGUID is the built-in Azure Owner role definition GUID
	RoleOwnerGUID = "8e3af657-a8ff-443c-a75c-2fe8c4bcb635"

	// RoleContributorGUID is the built-in Azure Contributor role definition GUID
	RoleContributorGUID = "b24988ac-6180-42a0-ab88-20f7382dd24c"

	// RoleReaderGUID is the built-in Azure Reader role definition GUID
	RoleReaderGUID = "acdd72a7-3385-48ef-bd42-f606fba81ae7"
)

// HighRiskPorts are the inbound ports counted as open_high_risk_ports by the collector.
var HighRiskPorts = []int{22, 3389, 1433, 3306, 5432, 27017, 6379, 9200, 5601}

// ================================================================================
// Service Configuration Constants
// ================================================================================

const (
	// DefaultServicePort is the default HTTP service port
	DefaultServicePort = 8080

	// DefaultGRPCPort is the default gRPC service port
	DefaultGRPCPort = 50051

	// DefaultShutdownTimeout is the graceful shutdown timeout (30 seconds)
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultReportCacheTTL is how long computed reports stay retrievable by ID
	DefaultReportCacheTTL = 30 * time.Minute

	// DefaultReportCacheCleanup is the eviction sweep interval of the report cache
	DefaultReportCacheCleanup = 5 * time.Minute

	// DefaultBatchConcurrency bounds the number of documents scored in parallel
	DefaultBatchConcurrency = 4

	// MaxBatchSize is the maximum number of documents accepted by one batch request
	MaxBatchSize = 100

	// MaxDocumentBytes caps the size of a signal document accepted over the network (4 MiB)
	MaxDocumentBytes = 4 << 20
)

// ================================================================================
// Output Formats
// ================================================================================

// OutputFormat selects the encoding used by report emitters
type OutputFormat string

const (
	// OutputFormatJSON emits indented JSON (the interchange format)
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML emits YAML for human review
	OutputFormatYAML OutputFormat = "yaml"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyLogger is the key for a request-scoped logger in context
	ContextKeyLogger ContextKey = "logger"

	// ContextKeyClientIP is the key for client IP address in context
	ContextKeyClientIP ContextKey = "client_ip"
)

// ================================================================================
// HTTP Headers
// ================================================================================

const (
	// HeaderRequestID carries the request correlation ID
	HeaderRequestID = "X-Request-ID"

	// HeaderReportID is set on score responses
	HeaderReportID = "X-Report-ID"
)

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode represents a machine-readable error code returned to clients
type ErrorCode string

const (
	// ErrCodeMissingInput indicates that no raw signal document was supplied
	ErrCodeMissingInput ErrorCode = "missing_input"

	// ErrCodeInvalidDocument indicates that a signal document could not be decoded at all
	ErrCodeInvalidDocument ErrorCode = "invalid_document"

	// ErrCodeInvalidRequest indicates a malformed API request
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeReportNotFound indicates that a report ID is unknown or expired
	ErrCodeReportNotFound ErrorCode = "report_not_found"

	// ErrCodeEmitFailed indicates that a report could not be handed to a downstream consumer
	ErrCodeEmitFailed ErrorCode = "emit_failed"

	// ErrCodeInvalidConfig indicates an invalid service configuration
	ErrCodeInvalidConfig ErrorCode = "invalid_config"

	// ErrCodeServerError indicates an unexpected internal failure
	ErrCodeServerError ErrorCode = "server_error"
)
