package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/book-engine/pkg/session"
)

// MockGenerator is a mock implementation of session.Generator for testing
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req session.GenerateRequest) (string, error)

	// Track calls for testing
	GenerateCalls []session.GenerateRequest

	mu sync.Mutex // protects all fields above
}

// Ensure MockGenerator implements the Generator interface
var _ session.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a new mock generator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateCalls: make([]session.GenerateRequest, 0),
	}
}

// GenerateConsequence mocks narration
func (m *MockGenerator) GenerateConsequence(ctx context.Context, req session.GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, req)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	// Default behavior - canned narration
	return "Mock narration", nil
}

// SetError sets up the mock to fail every call
func (m *MockGenerator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req session.GenerateRequest) (string, error) {
		return "", err
	}
}

// SetResponse sets up the mock to return fixed text
func (m *MockGenerator) SetResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req session.GenerateRequest) (string, error) {
		return text, nil
	}
}

// Reset clears all call tracking
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = nil
	m.GenerateCalls = make([]session.GenerateRequest, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockGenerator) GetCalls() []session.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]session.GenerateRequest, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}
