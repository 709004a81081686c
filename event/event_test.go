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

package event

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSubscribePublish(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()

	_, ch := eb.Subscribe(IssuerRegisteredEventType)
	eb.Publish(
		IssuerRegisteredEventType,
		NewEvent(
			IssuerRegisteredEventType,
			IssuerRegisteredEvent{Caller: "alice", Domain: "example.com"},
		),
	)

	select {
	case evt := <-ch:
		assert.Equal(t, IssuerRegisteredEventType, evt.Type)
		data, ok := evt.Data.(IssuerRegisteredEvent)
		require.True(t, ok)
		assert.Equal(t, "example.com", data.Domain)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeFunc(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{})
	eb.SubscribeFunc(JwksProposedEventType, func(evt Event) {
		mu.Lock()
		received = append(received, evt)
		mu.Unlock()
		close(done)
	})

	eb.Publish(
		JwksProposedEventType,
		NewEvent(
			JwksProposedEventType,
			JwksProposedEvent{Voter: "val-1", Domain: "example.com"},
		),
	)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()

	subId, ch := eb.Subscribe(RoundAdvancedEventType)
	eb.Unsubscribe(RoundAdvancedEventType, subId)

	// Channel is closed by Unsubscribe
	_, ok := <-ch
	assert.False(t, ok)
}

func TestPublishAsyncDelivers(t *testing.T) {
	defer goleak.VerifyNone(t)

	eb := NewEventBus(nil, nil)
	defer eb.Stop()

	_, ch := eb.Subscribe(JwksUpdatedEventType)
	ok := eb.PublishAsync(
		JwksUpdatedEventType,
		NewEvent(JwksUpdatedEventType, JwksUpdatedEvent{Domain: "example.com"}),
	)
	require.True(t, ok)

	select {
	case evt := <-ch:
		assert.Equal(t, JwksUpdatedEventType, evt.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async event")
	}
}

func TestPublishWithMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	eb := NewEventBus(registry, nil)
	defer eb.Stop()

	_, ch := eb.Subscribe(IssuerDeletedEventType)
	eb.Publish(
		IssuerDeletedEventType,
		NewEvent(IssuerDeletedEventType, IssuerDeletedEvent{Domain: "example.com"}),
	)
	<-ch

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)
	var sawEventsTotal bool
	for _, mf := range metricFamilies {
		if mf.GetName() == "eventbus_events_total" {
			sawEventsTotal = true
		}
	}
	assert.True(t, sawEventsTotal)
}

func TestStopClosesSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	eb := NewEventBus(nil, nil)

	_, ch := eb.Subscribe(IssuerUpdatedEventType)
	eb.Stop()

	// Existing subscriber channel is closed
	_, ok := <-ch
	assert.False(t, ok)

	// Synchronous publishing still works after Stop
	_, ch2 := eb.Subscribe(IssuerUpdatedEventType)
	eb.Publish(
		IssuerUpdatedEventType,
		NewEvent(IssuerUpdatedEventType, IssuerUpdatedEvent{Domain: "example.com"}),
	)
	select {
	case <-ch2:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event after stop")
	}

	// Async publishing is rejected once the worker pool is gone
	ok = eb.PublishAsync(
		IssuerUpdatedEventType,
		NewEvent(IssuerUpdatedEventType, IssuerUpdatedEvent{Domain: "example.com"}),
	)
	assert.False(t, ok)
	eb.Stop()
}
