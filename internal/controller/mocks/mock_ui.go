// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"github.com/stretchr/testify/mock"

	m "github.com/burnlist/burnlist/internal/model"
)

// MockUI is a mock type for the controller.UI type.
type MockUI struct {
	mock.Mock
}

// DisplayReport provides a mock function with given fields: report
func (_m *MockUI) DisplayReport(report m.Report) error {
	ret := _m.Called(report)

	if rf, ok := ret.Get(0).(func(m.Report) error); ok {
		return rf(report)
	}

	return ret.Error(0)
}

// DisplayDocument provides a mock function with given fields: doc
func (_m *MockUI) DisplayDocument(doc []byte) error {
	ret := _m.Called(doc)

	if rf, ok := ret.Get(0).(func([]byte) error); ok {
		return rf(doc)
	}

	return ret.Error(0)
}

// DisplayRules provides a mock function with given fields: rules
func (_m *MockUI) DisplayRules(rules []m.RuleInfo) error {
	ret := _m.Called(rules)

	if rf, ok := ret.Get(0).(func([]m.RuleInfo) error); ok {
		return rf(rules)
	}

	return ret.Error(0)
}

// DisplayWatchEvent provides a mock function with given fields: changed
func (_m *MockUI) DisplayWatchEvent(changed []m.Path) {
	_m.Called(changed)
}

// NewMockUI creates a new instance of MockUI. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mock := &MockUI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
