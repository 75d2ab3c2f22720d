package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"coursevault/internal/domain"
)

// MockBackendAdapter is a mock implementation of port.BackendAdapter.
type MockBackendAdapter struct {
	mock.Mock
}

func (m *MockBackendAdapter) Kind() domain.BackendKind {
	args := m.Called()
	return args.Get(0).(domain.BackendKind)
}

func (m *MockBackendAdapter) SignSingleShot(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (*domain.SingleShotCredential, error) {
	args := m.Called(ctx, key, contentType, size, expiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SingleShotCredential), args.Error(1)
}

func (m *MockBackendAdapter) InitiateChunked(ctx context.Context, key, contentType string, totalChunks int, expiry time.Duration) (*domain.ChunkSetCredential, string, error) {
	args := m.Called(ctx, key, contentType, totalChunks, expiry)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*domain.ChunkSetCredential), args.String(1), args.Error(2)
}

func (m *MockBackendAdapter) CompleteChunked(ctx context.Context, sess *domain.UploadSession, acks []domain.ChunkAck) error {
	args := m.Called(ctx, sess, acks)
	return args.Error(0)
}

func (m *MockBackendAdapter) AbortChunked(ctx context.Context, sess *domain.UploadSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockBackendAdapter) SingleShotRequest(cred *domain.SingleShotCredential, size int64) (*domain.WriteRequest, error) {
	args := m.Called(cred, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WriteRequest), args.Error(1)
}

func (m *MockBackendAdapter) ChunkRequest(cred *domain.ChunkSetCredential, index int, span domain.ByteSpan) (*domain.WriteRequest, error) {
	args := m.Called(cred, index, span)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WriteRequest), args.Error(1)
}

func (m *MockBackendAdapter) WriteFailure(statusCode int, body []byte) error {
	args := m.Called(statusCode, body)
	return args.Error(0)
}

func (m *MockBackendAdapter) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
