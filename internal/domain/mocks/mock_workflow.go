// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/burnlist/burnlist/internal/domain"
	m "github.com/burnlist/burnlist/internal/model"
)

// MockWorkflow is a mock type for the domain.Workflow type.
type MockWorkflow struct {
	mock.Mock
}

// Scan provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Scan(ctx context.Context, args domain.ScanArgs) (m.Report, error) {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.ScanArgs) (m.Report, error)); ok {
		return rf(ctx, args)
	}

	return ret.Get(0).(m.Report), ret.Error(1)
}

// Run provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.RunArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

// Rules provides a mock function with no fields
func (_m *MockWorkflow) Rules() error {
	ret := _m.Called()

	return ret.Error(0)
}

// Watch provides a mock function with given fields: ctx, args
func (_m *MockWorkflow) Watch(ctx context.Context, args domain.WatchArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.WatchArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

// View provides a mock function with given fields: path, format
func (_m *MockWorkflow) View(path m.Path, format m.Format) error {
	ret := _m.Called(path, format)

	return ret.Error(0)
}

// NewMockWorkflow creates a new instance of MockWorkflow. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mock := &MockWorkflow{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
