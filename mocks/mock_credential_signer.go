package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coursevault/internal/domain"
)

// MockCredentialSigner is a mock implementation of port.CredentialSigner.
type MockCredentialSigner struct {
	mock.Mock
}

func (m *MockCredentialSigner) SignSingleShot(ctx context.Context, key, contentType string, size int64) (*domain.SingleShotCredential, error) {
	args := m.Called(ctx, key, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SingleShotCredential), args.Error(1)
}

func (m *MockCredentialSigner) InitiateChunked(ctx context.Context, key, contentType string, totalFileSize int64) (*domain.ChunkSetCredential, error) {
	args := m.Called(ctx, key, contentType, totalFileSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChunkSetCredential), args.Error(1)
}

func (m *MockCredentialSigner) Commit(ctx context.Context, sessionID string, acks []domain.ChunkAck) error {
	args := m.Called(ctx, sessionID, acks)
	return args.Error(0)
}
