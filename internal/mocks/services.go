package mocks

import (
	"context"
	"sync"

	"github.com/blog-publishing-api/internal/service"
)

// MockPinger is a mock implementation of service.Pinger
type MockPinger struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

// Verify interface compliance
var _ service.Pinger = (*MockPinger)(nil)

func (m *MockPinger) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Err
}

// SetErr changes the ping result
func (m *MockPinger) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
