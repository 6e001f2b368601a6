package executor

import (
	"context"
	"errors"
	"io"
	"slices"
	"time"
)

// MockProcessRunner is a mock implementation of ProcessRunner for testing.
type MockProcessRunner struct {
	// RunFunc allows tests to provide custom behavior
	RunFunc func(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// Info is returned for --plugin-info queries when set.
	Info []byte

	// Delay simulates slow process execution
	Delay time.Duration

	// ShouldTimeout if true, will block until context is cancelled
	ShouldTimeout bool

	// CallCount tracks how many times Run was called
	CallCount int

	// LastPath stores the last path passed to Run
	LastPath string

	// LastArgs stores the last args passed to Run
	LastArgs []string

	// LastStdin stores the stdin of the last call
	LastStdin []byte
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.CallCount++
	m.LastPath = path
	m.LastArgs = args
	m.LastStdin = nil
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, err
		}
		m.LastStdin = data
	}

	if m.Info != nil && slices.Equal(args, []string{"--plugin-info"}) {
		return m.Info, nil, nil
	}

	// Simulate timeout behavior
	if m.ShouldTimeout {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	// Simulate delay
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	// Use custom function if provided
	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, stdin)
	}

	// Default: return empty success
	return []byte("{}"), nil, nil
}

// NewMockProcessRunner creates a new mock process runner answering --plugin-info with info.
func NewMockProcessRunner(info []byte) *MockProcessRunner {
	return &MockProcessRunner{Info: info}
}

// NewTimeoutMockProcessRunner creates a mock that simulates a timeout.
func NewTimeoutMockProcessRunner(info []byte) *MockProcessRunner {
	return &MockProcessRunner{
		Info:          info,
		ShouldTimeout: true,
	}
}

// NewErrorMockProcessRunner creates a mock that returns an error.
func NewErrorMockProcessRunner(info []byte, errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		Info: info,
		RunFunc: func(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
			return nil, []byte(errMsg), errors.New(errMsg)
		},
	}
}

// NewSuccessMockProcessRunner creates a mock that returns the given output.
func NewSuccessMockProcessRunner(info, stdout []byte) *MockProcessRunner {
	return &MockProcessRunner{
		Info: info,
		RunFunc: func(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
			return stdout, nil, nil
		},
	}
}
