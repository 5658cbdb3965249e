package service

import (
	"context"

	"dispatch/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a testify mock of service.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

// NewMockEventPublisher creates a mock that asserts its expectations on cleanup
func NewMockEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// PublishComplianceEvent mocks service.EventPublisher.PublishComplianceEvent
func (m *MockEventPublisher) PublishComplianceEvent(ctx context.Context, event *service.ComplianceEvent) error {
	return m.Called(ctx, event).Error(0)
}

// Close mocks service.EventPublisher.Close
func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
