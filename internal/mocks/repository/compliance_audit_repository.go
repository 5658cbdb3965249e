// Package repository holds testify mocks for the persistence ports.
package repository

import (
	"context"

	"dispatch/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockComplianceAuditRepository is a testify mock of repository.ComplianceAuditRepository
type MockComplianceAuditRepository struct {
	mock.Mock
}

// NewMockComplianceAuditRepository creates a mock that asserts its expectations on cleanup
func NewMockComplianceAuditRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockComplianceAuditRepository {
	m := &MockComplianceAuditRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// CreateAudit mocks repository.ComplianceAuditRepository.CreateAudit
func (m *MockComplianceAuditRepository) CreateAudit(ctx context.Context, audit *entity.ComplianceAudit) error {
	return m.Called(ctx, audit).Error(0)
}

// FindAuditsByOrderReference mocks repository.ComplianceAuditRepository.FindAuditsByOrderReference
func (m *MockComplianceAuditRepository) FindAuditsByOrderReference(ctx context.Context, orderReference string, limit int) ([]*entity.ComplianceAudit, error) {
	args := m.Called(ctx, orderReference, limit)

	audits, _ := args.Get(0).([]*entity.ComplianceAudit)

	return audits, args.Error(1)
}
