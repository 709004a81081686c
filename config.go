// Copyright 2025 OpenAnchor Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package anchord

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry   prometheus.Registerer
	logger         *slog.Logger
	dataDir        string
	blobPlugin     string
	metadataPlugin string
	registrars     []string
	voters         []string
	// Voting round scheduling (0 = rounds advance only via explicit calls)
	roundInterval   time.Duration
	shutdownTimeout time.Duration
	tracing         bool
	tracingStdout   bool
	// Issuer field bounds (0 = use registry default)
	maxDomainLen          uint
	maxOpenIDURLLen       uint
	maxJwksLen            uint
	maxProposersPerIssuer uint
	minUpdateInterval     uint64
	maxUpdateInterval     uint64
}

func (n *Node) configValidate() error {
	if len(n.config.registrars) == 0 {
		return errors.New("no registrars defined")
	}
	if n.config.minUpdateInterval > 0 &&
		n.config.maxUpdateInterval > 0 &&
		n.config.minUpdateInterval > n.config.maxUpdateInterval {
		return errors.New("minimum update interval exceeds maximum")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new anchord config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDataDir specifies the persistent data directory to use. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithPrometheusRegistry specifies the prometheus registry for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithRegistrars specifies the account identities authorized to manage issuers
func WithRegistrars(registrars []string) ConfigOptionFunc {
	return func(c *Config) {
		c.registrars = registrars
	}
}

// WithVoters specifies the validator identities authorized to propose JWKS documents
func WithVoters(voters []string) ConfigOptionFunc {
	return func(c *Config) {
		c.voters = voters
	}
}

// WithRoundInterval specifies how often voting rounds are advanced
// automatically. Zero disables the scheduler; rounds then advance only via
// explicit privileged calls
func WithRoundInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.roundInterval = interval
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithMaxDomainLen specifies the maximum issuer domain length
func WithMaxDomainLen(max uint) ConfigOptionFunc {
	return func(c *Config) {
		c.maxDomainLen = max
	}
}

// WithMaxOpenIDURLLen specifies the maximum OpenID discovery URL length
func WithMaxOpenIDURLLen(max uint) ConfigOptionFunc {
	return func(c *Config) {
		c.maxOpenIDURLLen = max
	}
}

// WithMaxJwksLen specifies the maximum canonical JWKS document length
func WithMaxJwksLen(max uint) ConfigOptionFunc {
	return func(c *Config) {
		c.maxJwksLen = max
	}
}

// WithMaxProposersPerIssuer specifies the per-domain proposer list capacity
func WithMaxProposersPerIssuer(max uint) ConfigOptionFunc {
	return func(c *Config) {
		c.maxProposersPerIssuer = max
	}
}

// WithUpdateIntervalBounds specifies the clamp bounds for issuer update
// intervals, in seconds
func WithUpdateIntervalBounds(min, max uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.minUpdateInterval = min
		c.maxUpdateInterval = max
	}
}
