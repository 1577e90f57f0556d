package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/pipeline"
)

// MockRunner is a mock for the Runner interface
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*pipeline.Result)
	return res, args.Error(1)
}
