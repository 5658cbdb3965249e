// Package service holds testify mocks for the domain service ports.
package service

import (
	"context"

	"dispatch/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
)

// MockRouteProvider is a testify mock of service.RouteProvider
type MockRouteProvider struct {
	mock.Mock
}

// NewMockRouteProvider creates a mock that asserts its expectations on cleanup
func NewMockRouteProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRouteProvider {
	m := &MockRouteProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Route mocks service.RouteProvider.Route
func (m *MockRouteProvider) Route(ctx context.Context, origin, destination orb.Point) (*service.Route, error) {
	args := m.Called(ctx, origin, destination)

	var route *service.Route
	switch ret := args.Get(0).(type) {
	case func(context.Context, orb.Point, orb.Point) *service.Route:
		route = ret(ctx, origin, destination)
	case *service.Route:
		route = ret
	}

	return route, args.Error(1)
}
