package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockAccountReaderForTest creates a new mock AccountReader for testing
func NewMockAccountReaderForTest(t *testing.T) *MockAccountReader {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockAccountReader(ctrl)
}

// NewMockListerForTest creates a new mock Lister for testing
func NewMockListerForTest(t *testing.T) *MockLister {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockLister(ctrl)
}

// NewMockPublisherForTest creates a new mock Publisher for testing
func NewMockPublisherForTest(t *testing.T) *MockPublisher {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockPublisher(ctrl)
}
