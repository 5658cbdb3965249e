package service

import (
	"context"

	"dispatch/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockLicenseRegistry is a testify mock of service.LicenseRegistry
type MockLicenseRegistry struct {
	mock.Mock
}

// NewMockLicenseRegistry creates a mock that asserts its expectations on cleanup
func NewMockLicenseRegistry(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLicenseRegistry {
	m := &MockLicenseRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Lookup mocks service.LicenseRegistry.Lookup
func (m *MockLicenseRegistry) Lookup(ctx context.Context, licenseNumber string) (*service.LicenseRecord, error) {
	args := m.Called(ctx, licenseNumber)

	record, _ := args.Get(0).(*service.LicenseRecord)

	return record, args.Error(1)
}
