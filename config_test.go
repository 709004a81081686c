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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDataDir("/var/lib/anchord"),
		WithBlobPlugin("badger"),
		WithMetadataPlugin("sqlite"),
		WithRegistrars([]string{"registrar-1"}),
		WithVoters([]string{"val-1", "val-2"}),
		WithRoundInterval(5*time.Minute),
		WithMaxDomainLen(100),
		WithUpdateIntervalBounds(30, 3600),
		WithTracing(true),
		WithTracingStdout(true),
	)

	assert.Equal(t, "/var/lib/anchord", cfg.dataDir)
	assert.Equal(t, "badger", cfg.blobPlugin)
	assert.Equal(t, "sqlite", cfg.metadataPlugin)
	assert.Equal(t, []string{"registrar-1"}, cfg.registrars)
	assert.Equal(t, []string{"val-1", "val-2"}, cfg.voters)
	assert.Equal(t, 5*time.Minute, cfg.roundInterval)
	assert.Equal(t, uint(100), cfg.maxDomainLen)
	assert.Equal(t, uint64(30), cfg.minUpdateInterval)
	assert.Equal(t, uint64(3600), cfg.maxUpdateInterval)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
}

func TestNewRequiresRegistrar(t *testing.T) {
	_, err := New(NewConfig())
	assert.ErrorContains(t, err, "no registrars defined")
}

func TestNewRejectsInvertedIntervalBounds(t *testing.T) {
	_, err := New(NewConfig(
		WithRegistrars([]string{"registrar-1"}),
		WithUpdateIntervalBounds(3600, 30),
	))
	assert.ErrorContains(t, err, "minimum update interval exceeds maximum")
}
