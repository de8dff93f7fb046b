// Package config defines the configuration for the Leads API. Configuration
// is loaded once at process start and is immutable thereafter, following
// 12-Factor principles: code and configuration stay strictly separated.
//
// Values are resolved via a priority chain:
//
//	OS Environment (highest) -> Dotenv file -> AWS SSM Parameter Store (lowest)
//
// A missing required value or invalid format fails startup immediately.
package config

import (
	"time"

	"leadsapi/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to keep sensitive values (the JWT signing key) out of logs.
type SecretString = types.SecretString

// Config is the top-level configuration for the Leads API. Sub-components
// receive only the subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"OTEL_SERVICE_NAME" default:"leads-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server         ServerConfig
	Auth           AuthConfig
	StaffDirectory StaffDirectoryConfig
	AWS            AWSConfig
	Observability  ObservabilityConfig

	// Build metadata (injected via ldflags, not env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// AuthMode selects the trust source for inbound credentials. The same policy
// engine serves all modes; only principal resolution differs.
const (
	// AuthModeDemo parses the pipe-delimited demo bearer token locally.
	AuthModeDemo = "demo"
	// AuthModeJWT verifies HS256-signed bearer JWTs locally.
	AuthModeJWT = "jwt"
	// AuthModeGateway trusts identity claims forwarded by an upstream API
	// gateway that has already authenticated the caller.
	AuthModeGateway = "gateway"
	// AuthModeNoop disables authentication entirely; every request is
	// anonymous. For isolated component testing only.
	AuthModeNoop = "noop"
)

// AuthConfig selects and configures the credential trust source.
type AuthConfig struct {
	Mode string `envconfig:"AUTH_MODE" default:"demo" validate:"required,oneof=demo jwt gateway noop"`

	// JWTSigningKey is the symmetric key JWTs are verified against.
	// Required in jwt mode; resolvable via JWT_SIGNING_KEY_SSM_PARAM.
	JWTSigningKey SecretString `envconfig:"JWT_SIGNING_KEY" validate:"required_if=Mode jwt,omitempty,min=32"`
}

// StaffDirectoryConfig holds settings for the staff directory lookup client.
// An unset base URL is valid: lookups then degrade to "unknown" and
// manager-gated operations are denied.
type StaffDirectoryConfig struct {
	BaseURL string        `envconfig:"STAFF_DIRECTORY_BASE_URL" validate:"omitempty,url"`
	Timeout time.Duration `envconfig:"STAFF_DIRECTORY_TIMEOUT" default:"5s"`
}

// AWSConfig holds AWS regional configuration used by the SSM secret provider
// and the CloudWatch metrics collector.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"LeadsApi"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// BuildInfo holds build-time metadata injected via ldflags. These values are
// NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrSSMResolution indicates a failure fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure parsing environment variable values into
	// their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
