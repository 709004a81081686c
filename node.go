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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openanchor-io/anchord/database"
	"github.com/openanchor-io/anchord/event"
	"github.com/openanchor-io/anchord/registry"
	"github.com/openanchor-io/anchord/registry/authority"
)

// Node wires the trust-anchor registry to its storage, event bus, and the
// optional round scheduler
type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	registry      *registry.Registry
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	tickerDone    chan struct{}
	tickerWg      sync.WaitGroup
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Load database
	db, err := database.New(database.Config{
		DataDir:        cfg.dataDir,
		Logger:         cfg.logger,
		PromRegistry:   cfg.promRegistry,
		BlobPlugin:     cfg.blobPlugin,
		MetadataPlugin: cfg.metadataPlugin,
	})
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			return nil, fmt.Errorf("database consistency check failed: %w", err)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load registry
	policy := authority.NewPolicy(cfg.registrars, cfg.voters)
	reg, err := registry.New(registry.Config{
		Logger:                cfg.logger,
		Database:              n.db,
		EventBus:              n.eventBus,
		Authority:             policy,
		MaxDomainLen:          cfg.maxDomainLen,
		MaxOpenIDURLLen:       cfg.maxOpenIDURLLen,
		MaxJwksLen:            cfg.maxJwksLen,
		MaxProposersPerIssuer: cfg.maxProposersPerIssuer,
		MinUpdateInterval:     cfg.minUpdateInterval,
		MaxUpdateInterval:     cfg.maxUpdateInterval,
	})
	if err != nil {
		dbCloseErr := db.Close()
		return nil, errors.Join(
			fmt.Errorf("failed to load registry: %w", err),
			dbCloseErr,
		)
	}
	n.registry = reg
	return n, nil
}

// Run starts the optional round scheduler and blocks until the node is
// stopped or the context is canceled
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	if n.config.roundInterval > 0 {
		n.tickerDone = make(chan struct{})
		n.tickerWg.Add(1)
		go n.roundScheduler(n.config.registrars[0])
	}

	n.config.logger.Info(
		"node started",
		"component", "node",
		"registrars", len(n.config.registrars),
		"voters", len(n.config.voters),
	)

	// Wait for shutdown
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

// roundScheduler advances the voting round on a fixed interval using the
// first configured registrar identity
func (n *Node) roundScheduler(caller string) {
	defer n.tickerWg.Done()
	ticker := time.NewTicker(n.config.roundInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.tickerDone:
			return
		case <-ticker.C:
			if err := n.registry.AdvanceRound(caller); err != nil {
				n.config.logger.Error(
					"failed to advance round",
					"component", "node",
					"error", err,
				)
			}
		}
	}
}

// Registry returns the node's registry
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// Database returns the node's database
func (n *Node) Database() *database.Database {
	return n.db
}

// EventBus returns the node's event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Stop the round scheduler before closing anything it uses
	if n.tickerDone != nil {
		close(n.tickerDone)
		schedulerStopped := make(chan struct{})
		go func() {
			n.tickerWg.Wait()
			close(schedulerStopped)
		}()
		select {
		case <-schedulerStopped:
		case <-time.After(shutdownTimeout):
			err = errors.Join(
				err,
				errors.New("timed out waiting for round scheduler to stop"),
			)
		}
	}

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Call registered shutdown functions
	if len(n.shutdownFuncs) > 0 {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		for _, fn := range n.shutdownFuncs {
			if fnErr := fn(ctx); fnErr != nil {
				err = errors.Join(
					err,
					fmt.Errorf("shutdown function: %w", fnErr),
				)
			}
		}
		n.shutdownFuncs = nil
	}

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
