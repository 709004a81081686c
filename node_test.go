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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRunAndStop(t *testing.T) {
	n, err := New(NewConfig(
		WithRegistrars([]string{"registrar-1"}),
		WithVoters([]string{"val-1"}),
	))
	require.NoError(t, err)
	require.NotNil(t, n.Registry())
	require.NotNil(t, n.Database())

	err = n.Registry().Register(
		"registrar-1",
		"example.com",
		nil,
		[]byte(`{"keys":[]}`),
		nil,
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(ctx)
	}()

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not shut down")
	}
}

func TestNodeTracing(t *testing.T) {
	n, err := New(NewConfig(
		WithRegistrars([]string{"registrar-1"}),
		WithVoters([]string{"val-1"}),
		WithTracing(true),
		// stdout exporter avoids a network dependency
		WithTracingStdout(true),
	))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(ctx)
	}()

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not shut down")
	}
	// The tracer provider's shutdown func was drained
	assert.Nil(t, n.shutdownFuncs)
}

func TestNodeRoundScheduler(t *testing.T) {
	n, err := New(NewConfig(
		WithRegistrars([]string{"registrar-1"}),
		WithVoters([]string{"val-1", "val-2"}),
		WithRoundInterval(50*time.Millisecond),
	))
	require.NoError(t, err)

	require.NoError(t, n.Registry().Register(
		"registrar-1",
		"example.com",
		nil,
		nil,
		nil,
	))
	require.NoError(t, n.Registry().Propose(
		"val-1",
		"example.com",
		[]byte(`{"keys":[{"kid":"a","kty":"RSA"}]}`),
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(ctx)
	}()

	// The scheduler tallies the proposal and installs it
	require.Eventually(t, func() bool {
		active, err := n.Registry().ActiveJwks("example.com")
		return err == nil && active != nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not shut down")
	}
}
