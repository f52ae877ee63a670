// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"
	"io"
	"sync"

	"journeymap/application/ports"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/events"
	"github.com/stretchr/testify/mock"
)

// MockJourneyRepository mocks ports.JourneyRepository
type MockJourneyRepository struct {
	mock.Mock
}

func (m *MockJourneyRepository) Save(ctx context.Context, journey *aggregates.Journey) error {
	args := m.Called(ctx, journey)
	return args.Error(0)
}

func (m *MockJourneyRepository) GetByID(ctx context.Context, id string) (*aggregates.Journey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.Journey), args.Error(1)
}

func (m *MockJourneyRepository) ListByOwner(ctx context.Context, ownerID string, opts ports.ListOptions) ([]*aggregates.Journey, int, error) {
	args := m.Called(ctx, ownerID, opts)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*aggregates.Journey), args.Int(1), args.Error(2)
}

func (m *MockJourneyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evs []events.DomainEvent) error {
	args := m.Called(ctx, evs)
	return args.Error(0)
}

// MockCache mocks ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMetrics mocks ports.Metrics. Tests that do not care about metrics
// can call AllowAll.
type MockMetrics struct {
	mock.Mock
}

// AllowAll accepts any metric call
func (m *MockMetrics) AllowAll() *MockMetrics {
	m.On("RecordCategory", mock.Anything, mock.Anything).Maybe()
	m.On("RecordResolution", mock.Anything, mock.Anything).Maybe()
	m.On("RecordDropped", mock.Anything, mock.Anything).Maybe()
	m.On("RecordGeneration", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("RecordEdit", mock.Anything).Maybe()
	m.On("RecordQuery", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return m
}

func (m *MockMetrics) RecordCategory(category string, items int) {
	m.Called(category, items)
}

func (m *MockMetrics) RecordResolution(category, quality string) {
	m.Called(category, quality)
}

func (m *MockMetrics) RecordDropped(category, reason string) {
	m.Called(category, reason)
}

func (m *MockMetrics) RecordGeneration(mode, outcome string, seconds float64) {
	m.Called(mode, outcome, seconds)
}

func (m *MockMetrics) RecordEdit(operation string) {
	m.Called(operation)
}

func (m *MockMetrics) RecordQuery(queryType, outcome string, seconds float64) {
	m.Called(queryType, outcome, seconds)
}

// ScriptedSource is an ExtractionSource that replays fixed deltas
type ScriptedSource struct {
	Deltas  []string
	Err     error // returned after the deltas instead of io.EOF
	OpenErr error

	mu       sync.Mutex
	Requests []ports.ExtractionRequest
}

// Open implements ports.ExtractionSource
func (s *ScriptedSource) Open(ctx context.Context, req ports.ExtractionRequest) (ports.DeltaStream, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return &scriptedStream{deltas: s.Deltas, err: s.Err}, nil
}

type scriptedStream struct {
	deltas []string
	err    error
	next   int
}

func (s *scriptedStream) Recv(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next < len(s.deltas) {
		d := s.deltas[s.next]
		s.next++
		return d, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }

// SentEvent is one event captured by RecordingSink
type SentEvent struct {
	Type    string
	Payload interface{}
}

// RecordingSink captures every event sent to it. Once FailAfter events
// have been accepted further sends return FailWith.
type RecordingSink struct {
	FailAfter int
	FailWith  error

	mu     sync.Mutex
	Events []SentEvent
}

// Send implements ports.EventSink
func (s *RecordingSink) Send(ctx context.Context, eventType string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil && len(s.Events) >= s.FailAfter {
		return s.FailWith
	}
	s.Events = append(s.Events, SentEvent{Type: eventType, Payload: payload})
	return nil
}

// Types returns the event types in send order
func (s *RecordingSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.Events))
	for i, e := range s.Events {
		out[i] = e.Type
	}
	return out
}
