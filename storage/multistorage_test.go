package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorageBackend implements interfaces.StorageBackend for testing
type MockStorageBackend struct {
	mock.Mock
	name string
}

func (m *MockStorageBackend) Fetch(ctx context.Context, id interfaces.KeychainID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorageBackend) Store(ctx context.Context, id interfaces.KeychainID, data []byte) error {
	args := m.Called(ctx, id, data)
	return args.Error(0)
}

func (m *MockStorageBackend) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockStorageBackend) Name() string {
	return m.name
}

func (m *MockStorageBackend) LocationURI() string {
	return "mock://" + m.name
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiStorageBackend_Available(t *testing.T) {
	tests := []struct {
		name     string
		backends []bool
		expected bool
	}{
		{name: "all backends available", backends: []bool{true, true, true}, expected: true},
		{name: "some backends available", backends: []bool{false, true, false}, expected: true},
		{name: "no backends available", backends: []bool{false, false, false}, expected: false},
		{name: "no backends", backends: []bool{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var backends []interfaces.StorageBackend
			for i, available := range tt.backends {
				mockStorage := &MockStorageBackend{name: fmt.Sprintf("mock-%d", i)}
				mockStorage.On("Available", mock.Anything).Return(available).Maybe()
				backends = append(backends, mockStorage)
			}

			multi := NewMultiStorageBackend(backends, testLogger())
			assert.Equal(t, tt.expected, multi.Available(context.Background()))

			for _, backend := range backends {
				backend.(*MockStorageBackend).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStorageBackend_Fetch(t *testing.T) {
	testID := interfaces.KeychainID([32]byte{1, 2, 3, 4})
	testData := []byte(`[[]]`)
	testErr := errors.New("test error")

	tests := []struct {
		name        string
		setupMocks  func() []interfaces.StorageBackend
		expected    []byte
		expectedErr error
	}{
		{
			name: "first backend successful",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, testID).Return(testData, nil)

				mock2 := &MockStorageBackend{name: "mock-B"}
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expected: testData,
		},
		{
			name: "fallback after unavailable and failing backends",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(false)

				mock2 := &MockStorageBackend{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, testID).Return(nil, testErr)

				mock3 := &MockStorageBackend{name: "mock-C"}
				mock3.On("Available", mock.Anything).Return(true)
				mock3.On("Fetch", mock.Anything, testID).Return(testData, nil)
				return []interfaces.StorageBackend{mock1, mock2, mock3}
			},
			expected: testData,
		},
		{
			name: "every backend misses",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)

				mock2 := &MockStorageBackend{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedErr: interfaces.ErrContentNotFound,
		},
		{
			name: "miss and failure",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)

				mock2 := &MockStorageBackend{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, testID).Return(nil, testErr)
				return []interfaces.StorageBackend{mock1, mock2}
			},
			expectedErr: testErr,
		},
		{
			name: "no available backends",
			setupMocks: func() []interfaces.StorageBackend {
				mock1 := &MockStorageBackend{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(false)
				return []interfaces.StorageBackend{mock1}
			},
			expectedErr: interfaces.ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.setupMocks()
			multi := NewMultiStorageBackend(backends, testLogger())

			data, err := multi.Fetch(context.Background(), testID)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, data)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, data)
			}

			for _, backend := range backends {
				backend.(*MockStorageBackend).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStorageBackend_Store(t *testing.T) {
	testID := interfaces.KeychainID([32]byte{9})
	testData := []byte(`[[]]`)
	testErr := errors.New("test error")

	t.Run("stores to every available backend", func(t *testing.T) {
		mock1 := &MockStorageBackend{name: "mock-A"}
		mock1.On("Available", mock.Anything).Return(true)
		mock1.On("Store", mock.Anything, testID, testData).Return(nil)

		mock2 := &MockStorageBackend{name: "mock-B"}
		mock2.On("Available", mock.Anything).Return(false)

		mock3 := &MockStorageBackend{name: "mock-C"}
		mock3.On("Available", mock.Anything).Return(true)
		mock3.On("Store", mock.Anything, testID, testData).Return(testErr)

		multi := NewMultiStorageBackend([]interfaces.StorageBackend{mock1, mock2, mock3}, testLogger())
		require.NoError(t, multi.Store(context.Background(), testID, testData))

		mock1.AssertExpectations(t)
		mock2.AssertExpectations(t)
		mock3.AssertExpectations(t)
	})

	t.Run("fails when no backend accepts", func(t *testing.T) {
		mock1 := &MockStorageBackend{name: "mock-A"}
		mock1.On("Available", mock.Anything).Return(true)
		mock1.On("Store", mock.Anything, testID, testData).Return(testErr)

		multi := NewMultiStorageBackend([]interfaces.StorageBackend{mock1}, testLogger())
		err := multi.Store(context.Background(), testID, testData)
		require.ErrorIs(t, err, testErr)
	})

	t.Run("fails when nothing is available", func(t *testing.T) {
		multi := NewMultiStorageBackend(nil, testLogger())
		err := multi.Store(context.Background(), testID, testData)
		require.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
	})
}

func TestMultiStorageBackend_LocationURI(t *testing.T) {
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{
		&MockStorageBackend{name: "a"},
		&MockStorageBackend{name: "b"},
	}, testLogger())
	assert.Equal(t, "multi:[mock://a,mock://b]", multi.LocationURI())
	assert.Equal(t, "multi-storage", multi.Name())
}
