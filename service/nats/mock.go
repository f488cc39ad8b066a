package nats

import (
	"context"
	"sync"
)

// MockPublisher is a mock implementation of Publisher for testing.
type MockPublisher struct {
	mu              sync.RWMutex
	publishedEvents []*RoastEvent
	analysisEvents  []*AnalysisEvent
	publishError    error
	closed          bool
}

// NewMockPublisher creates a new mock publisher for testing.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		publishedEvents: make([]*RoastEvent, 0),
	}
}

// PublishRoast records the event and returns any configured error.
func (m *MockPublisher) PublishRoast(ctx context.Context, event *RoastEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishError != nil {
		return m.publishError
	}

	m.publishedEvents = append(m.publishedEvents, event)
	return nil
}

// PublishAnalysis records the event and returns any configured error.
func (m *MockPublisher) PublishAnalysis(ctx context.Context, event *AnalysisEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishError != nil {
		return m.publishError
	}

	m.analysisEvents = append(m.analysisEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetPublishError configures PublishRoast to fail.
func (m *MockPublisher) SetPublishError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishError = err
}

// GetPublishedEvents returns all published events (for testing).
func (m *MockPublisher) GetPublishedEvents() []*RoastEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*RoastEvent, len(m.publishedEvents))
	copy(events, m.publishedEvents)
	return events
}

// GetAnalysisEvents returns all published analysis events (for testing).
func (m *MockPublisher) GetAnalysisEvents() []*AnalysisEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*AnalysisEvent, len(m.analysisEvents))
	copy(events, m.analysisEvents)
	return events
}

// IsClosed reports whether Close was called.
func (m *MockPublisher) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
