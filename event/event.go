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
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// SubscriberBufferSize is the channel buffer of each subscriber. A
	// subscriber whose buffer is full loses events rather than stalling
	// the publisher.
	SubscriberBufferSize = 20

	asyncQueueSize = 1000
	asyncWorkers   = 4
)

// EventType identifies a class of events, e.g. "issuer.registered"
type EventType string

// SubscriberId identifies a single subscription on the bus
type SubscriberId int

// HandlerFunc is invoked for each event delivered to a func subscriber
type HandlerFunc func(Event)

// Event pairs a payload with its type and publication time
type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// subscription is a buffered event channel with close-once semantics
type subscription struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

// send delivers an event without blocking. It reports false when the event
// was dropped because the buffer is full or the subscription is closed.
func (s *subscription) send(evt Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- evt:
		return true
	default:
		return false
	}
}

// close closes the channel exactly once. The write lock excludes in-flight
// sends, so a send never hits a closed channel.
func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// queued is an event waiting in the async delivery queue
type queued struct {
	evt Event
	typ EventType
}

// EventBus fans published events out to per-type subscribers. Delivery is
// best-effort and never blocks the publisher.
type EventBus struct {
	logger  *slog.Logger
	metrics *eventMetrics

	subMu  sync.RWMutex
	subs   map[EventType]map[SubscriberId]*subscription
	nextId SubscriberId

	// Async delivery queue and worker pool. The queue and stop channel are
	// replaced on every restart, so workers receive them as arguments
	// rather than reading bus fields.
	runMu   sync.RWMutex
	queue   chan queued
	stopCh  chan struct{}
	running bool
	workers sync.WaitGroup
	lifeMu  sync.Mutex // serializes Stop against concurrent Stop calls
}

// NewEventBus creates a bus and starts its async worker pool
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		logger: logger,
		subs:   make(map[EventType]map[SubscriberId]*subscription),
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	e.start()
	return e
}

func (e *EventBus) start() {
	e.runMu.Lock()
	e.queue = make(chan queued, asyncQueueSize)
	e.stopCh = make(chan struct{})
	e.running = true
	queue, stop := e.queue, e.stopCh
	e.runMu.Unlock()
	for range asyncWorkers {
		e.workers.Add(1)
		go e.worker(queue, stop)
	}
}

func (e *EventBus) worker(queue <-chan queued, stop <-chan struct{}) {
	defer e.workers.Done()
	for {
		select {
		case <-stop:
			return
		case q := <-queue:
			e.Publish(q.typ, q.evt)
		}
	}
}

// Subscribe returns a channel that receives events of the given type
func (e *EventBus) Subscribe(
	eventType EventType,
) (SubscriberId, <-chan Event) {
	sub := &subscription{ch: make(chan Event, SubscriberBufferSize)}
	e.subMu.Lock()
	e.nextId++
	id := e.nextId
	if e.subs[eventType] == nil {
		e.subs[eventType] = make(map[SubscriberId]*subscription)
	}
	e.subs[eventType][id] = sub
	e.subMu.Unlock()
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return id, sub.ch
}

// SubscribeFunc invokes the handler for each event of the given type. The
// handler goroutine exits when the subscription is closed by Unsubscribe
// or Stop.
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handler HandlerFunc,
) SubscriberId {
	id, ch := e.Subscribe(eventType)
	go func() {
		for evt := range ch {
			handler(evt)
		}
	}()
	return id
}

// Unsubscribe removes a subscription and closes its channel
func (e *EventBus) Unsubscribe(eventType EventType, id SubscriberId) {
	e.subMu.Lock()
	var sub *subscription
	if typeSubs, ok := e.subs[eventType]; ok {
		if sub = typeSubs[id]; sub != nil {
			delete(typeSubs, id)
			if len(typeSubs) == 0 {
				delete(e.subs, eventType)
			}
		}
	}
	e.subMu.Unlock()
	if sub == nil {
		return
	}
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
	}
	sub.close()
}

// Publish delivers an event to all subscribers of the given type. Events
// for subscribers with full buffers are dropped and counted.
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.subMu.RLock()
	targets := make([]*subscription, 0, len(e.subs[eventType]))
	for _, sub := range e.subs[eventType] {
		targets = append(targets, sub)
	}
	e.subMu.RUnlock()
	for _, sub := range targets {
		if !sub.send(evt) {
			if e.metrics != nil {
				e.metrics.droppedTotal.WithLabelValues(string(eventType)).
					Inc()
			}
			e.logger.Debug(
				"event dropped for slow subscriber",
				"type", eventType,
			)
		}
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// PublishAsync enqueues an event for delivery by the worker pool and
// returns immediately. It reports false when the bus is stopped or the
// queue is full.
func (e *EventBus) PublishAsync(eventType EventType, evt Event) bool {
	e.runMu.RLock()
	defer e.runMu.RUnlock()
	if !e.running {
		return false
	}
	select {
	case e.queue <- queued{typ: eventType, evt: evt}:
		return true
	default:
		e.logger.Warn(
			"async event queue full, dropping event",
			"type", eventType,
		)
		if e.metrics != nil {
			e.metrics.droppedTotal.WithLabelValues(string(eventType)).Inc()
		}
		return false
	}
}

// Stop closes every subscription and terminates the worker pool. The
// synchronous Subscribe/Publish path stays usable afterward; PublishAsync
// reports false once the pool is gone. Stop is idempotent.
func (e *EventBus) Stop() {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()

	e.runMu.Lock()
	wasRunning := e.running
	e.running = false
	stopCh := e.stopCh
	e.runMu.Unlock()
	if wasRunning {
		close(stopCh)
		e.workers.Wait()
	}

	e.subMu.Lock()
	old := e.subs
	e.subs = make(map[EventType]map[SubscriberId]*subscription)
	e.subMu.Unlock()
	for _, typeSubs := range old {
		for _, sub := range typeSubs {
			sub.close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
