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

package registry

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/openanchor-io/anchord/database"
	"github.com/openanchor-io/anchord/event"
	"github.com/openanchor-io/anchord/registry/authority"
)

// Default field bounds. Domains follow the DNS name length limit, URLs the
// common browser limit. The JWKS bound covers documents with dozens of keys.
const (
	DefaultMaxDomainLen          = 253
	DefaultMaxOpenIDURLLen       = 2048
	DefaultMaxJwksLen            = 16384
	DefaultMaxProposersPerIssuer = 32
	DefaultMinUpdateInterval     = 10
	DefaultMaxUpdateInterval     = 86400
)

// Config describes the registry bounds and collaborators. Bounds are
// deployment-time configuration, not runtime-mutable.
type Config struct {
	Logger                *slog.Logger
	Database              *database.Database
	EventBus              *event.EventBus
	Authority             *authority.Policy
	MaxDomainLen          uint
	MaxOpenIDURLLen       uint
	MaxJwksLen            uint
	MaxProposersPerIssuer uint
	MinUpdateInterval     uint64
	MaxUpdateInterval     uint64
}

// Registry is the trust-anchor state machine. All mutating operations run
// under a single serialized writer and inside one database transaction, so
// each operation either fully commits or leaves no trace.
type Registry struct {
	config    Config
	logger    *slog.Logger
	db        *database.Database
	eventBus  *event.EventBus
	authority *authority.Policy
	mutex     sync.Mutex
}

// New creates a registry from the provided config
func New(cfg Config) (*Registry, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.Authority == nil {
		return nil, errors.New("no authority policy provided")
	}
	if cfg.MaxDomainLen == 0 {
		cfg.MaxDomainLen = DefaultMaxDomainLen
	}
	if cfg.MaxOpenIDURLLen == 0 {
		cfg.MaxOpenIDURLLen = DefaultMaxOpenIDURLLen
	}
	if cfg.MaxJwksLen == 0 {
		cfg.MaxJwksLen = DefaultMaxJwksLen
	}
	if cfg.MaxProposersPerIssuer == 0 {
		cfg.MaxProposersPerIssuer = DefaultMaxProposersPerIssuer
	}
	if cfg.MinUpdateInterval == 0 {
		cfg.MinUpdateInterval = DefaultMinUpdateInterval
	}
	if cfg.MaxUpdateInterval == 0 {
		cfg.MaxUpdateInterval = DefaultMaxUpdateInterval
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	r := &Registry{
		config:    cfg,
		logger:    cfg.Logger.With("component", "registry"),
		db:        cfg.Database,
		eventBus:  cfg.EventBus,
		authority: cfg.Authority,
	}
	return r, nil
}

// publish sends an event on the bus after a successful commit. Events are
// never published for aborted operations.
func (r *Registry) publish(eventType event.EventType, data any) {
	if r.eventBus == nil {
		return
	}
	r.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
