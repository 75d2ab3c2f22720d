package signer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursevault/internal/config"
	"coursevault/internal/domain"
	"coursevault/internal/signer"
	"coursevault/mocks"
)

func newService(adapter *mocks.MockBackendAdapter) (*signer.Service, *signer.MemStore) {
	store := signer.NewMemStore()
	svc := signer.New(adapter, store, &config.UploadConfig{
		SingleShotTTL: time.Hour,
		ChunkedTTL:    2 * time.Hour,
	})
	return svc, store
}

func TestSignSingleShot(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, _ := newService(adapter)

	key := "LMS_Uploads/acme-101/thumbnail.png"
	adapter.On("SignSingleShot", mock.Anything, key, "image/png", int64(2048), time.Hour).
		Return(&domain.SingleShotCredential{TargetURL: "https://storage.example/put"}, nil)
	adapter.On("Kind").Return(domain.BackendS3)
	adapter.On("PublicURL", key).Return("https://cdn.example/" + key)

	cred, err := svc.SignSingleShot(context.Background(), key, "image/png", 2048)

	require.NoError(t, err)
	assert.Equal(t, domain.BackendS3, cred.Backend)
	assert.Equal(t, key, cred.Key)
	assert.Equal(t, "https://storage.example/put", cred.TargetURL)
	assert.Equal(t, "https://cdn.example/"+key, cred.PublicURL)
	adapter.AssertExpectations(t)
}

func TestSignSingleShot_EmptyKey(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, _ := newService(adapter)

	_, err := svc.SignSingleShot(context.Background(), "  ", "image/png", 2048)

	assert.ErrorIs(t, err, domain.ErrValidation)
	adapter.AssertNotCalled(t, "SignSingleShot", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateChunked(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, store := newService(adapter)

	key := "LMS_Uploads/acme-101/02_Safety_Basics/01_Overview/videos/01_x_clip.mp4"
	size := int64(10 * 1024 * 1024) // 3 chunks of 4 MiB

	adapter.On("InitiateChunked", mock.Anything, key, "video/mp4", 3, 2*time.Hour).
		Return(&domain.ChunkSetCredential{
			ChunkURLs:   []string{"u0", "u1", "u2"},
			ChunkSize:   domain.ChunkSize,
			TotalChunks: 3,
		}, "backend-upload-1", nil)
	adapter.On("Kind").Return(domain.BackendS3)
	adapter.On("PublicURL", key).Return("https://cdn.example/" + key)

	cred, err := svc.InitiateChunked(context.Background(), key, "video/mp4", size)

	require.NoError(t, err)
	assert.Equal(t, 3, cred.TotalChunks)
	assert.Equal(t, int64(domain.ChunkSize), cred.ChunkSize)
	assert.Equal(t, domain.BackendS3, cred.Backend)
	assert.NotEmpty(t, cred.SessionID)

	sess, err := store.Get(context.Background(), cred.SessionID)
	require.NoError(t, err)
	assert.Equal(t, key, sess.StorageKey)
	assert.Equal(t, "backend-upload-1", sess.BackendUploadID)
	assert.Equal(t, 3, sess.TotalChunks)
	assert.False(t, sess.Committed)
	adapter.AssertExpectations(t)
}

func TestInitiateChunked_InvalidSize(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, _ := newService(adapter)

	_, err := svc.InitiateChunked(context.Background(), "some/key", "video/mp4", 0)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInitiateChunked_StoreFailure(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	store := new(mocks.MockSessionStore)
	svc := signer.New(adapter, store, &config.UploadConfig{})

	adapter.On("InitiateChunked", mock.Anything, "k", "video/mp4", 1, 2*time.Hour).
		Return(&domain.ChunkSetCredential{ChunkURLs: []string{"u0"}, ChunkSize: domain.ChunkSize, TotalChunks: 1}, "bu-1", nil)
	store.On("Put", mock.Anything, mock.Anything).Return(errors.New("store full"))

	_, err := svc.InitiateChunked(context.Background(), "k", "video/mp4", 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing upload session")
	store.AssertExpectations(t)
}

func TestInitiateChunked_AdapterFailure(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, _ := newService(adapter)

	adapter.On("InitiateChunked", mock.Anything, "some/key", "video/mp4", 1, 2*time.Hour).
		Return(nil, "", errors.New("multipart init refused"))

	_, err := svc.InitiateChunked(context.Background(), "some/key", "video/mp4", 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "multipart init refused")
}

func TestCommit(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, store := newService(adapter)

	adapter.On("InitiateChunked", mock.Anything, "k", "video/mp4", 2, 2*time.Hour).
		Return(&domain.ChunkSetCredential{ChunkURLs: []string{"u0", "u1"}, ChunkSize: domain.ChunkSize, TotalChunks: 2}, "bu-1", nil)
	adapter.On("Kind").Return(domain.BackendS3)
	adapter.On("PublicURL", "k").Return("https://cdn.example/k")

	cred, err := svc.InitiateChunked(context.Background(), "k", "video/mp4", domain.ChunkSize+1)
	require.NoError(t, err)

	acks := []domain.ChunkAck{{Index: 0, ETag: "e0"}, {Index: 1, ETag: "e1"}}
	adapter.On("CompleteChunked", mock.Anything, mock.Anything, acks).Return(nil).Once()

	require.NoError(t, svc.Commit(context.Background(), cred.SessionID, acks))

	sess, err := store.Get(context.Background(), cred.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.Committed)

	// Second commit is a no-op: CompleteChunked must not run again.
	require.NoError(t, svc.Commit(context.Background(), cred.SessionID, acks))
	adapter.AssertExpectations(t)
}

func TestCommit_UnknownSession(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, _ := newService(adapter)

	err := svc.Commit(context.Background(), "no-such-session", nil)

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCommit_BackendFailure(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	svc, store := newService(adapter)

	adapter.On("InitiateChunked", mock.Anything, "k", "video/mp4", 1, 2*time.Hour).
		Return(&domain.ChunkSetCredential{ChunkURLs: []string{"u0"}, ChunkSize: domain.ChunkSize, TotalChunks: 1}, "bu-1", nil)
	adapter.On("Kind").Return(domain.BackendS3)
	adapter.On("PublicURL", "k").Return("https://cdn.example/k")

	cred, err := svc.InitiateChunked(context.Background(), "k", "video/mp4", 100)
	require.NoError(t, err)

	commitErr := domain.ErrCommitFailed
	adapter.On("CompleteChunked", mock.Anything, mock.Anything, mock.Anything).Return(commitErr)

	err = svc.Commit(context.Background(), cred.SessionID, []domain.ChunkAck{{Index: 0, ETag: "e0"}})
	assert.ErrorIs(t, err, domain.ErrCommitFailed)

	sess, err := store.Get(context.Background(), cred.SessionID)
	require.NoError(t, err)
	assert.False(t, sess.Committed)
}

func TestAdapterFromConfig_UnknownBackend(t *testing.T) {
	_, err := signer.AdapterFromConfig(&config.StorageConfig{Backend: "ftp"})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
