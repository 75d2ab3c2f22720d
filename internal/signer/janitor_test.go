package signer

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
	"coursevault/mocks"
)

func TestSweep_AbortsOrphanedSessions(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	store := NewMemStore()
	svc := New(adapter, store, &config.UploadConfig{})
	ctx := context.Background()

	orphan := &domain.UploadSession{
		SessionID:       "orphan",
		StorageKey:      "k1",
		BackendUploadID: "bu-1",
		ExpiresAt:       time.Now().Add(-time.Minute),
	}
	committed := &domain.UploadSession{
		SessionID:       "done",
		StorageKey:      "k2",
		BackendUploadID: "bu-2",
		Committed:       true,
		ExpiresAt:       time.Now().Add(-time.Minute),
	}
	live := &domain.UploadSession{
		SessionID: "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Put(ctx, orphan))
	require.NoError(t, store.Put(ctx, committed))
	require.NoError(t, store.Put(ctx, live))

	adapter.On("AbortChunked", mock.Anything, mock.MatchedBy(func(s *domain.UploadSession) bool {
		return s.SessionID == "orphan"
	})).Return(nil).Once()

	j := NewJanitor(svc, time.Minute)
	j.sweep(ctx)

	// Expired sessions are gone, live ones stay; only the uncommitted
	// session with a backend handle gets an abort call.
	expired, err := store.Expired(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	_, err = store.Get(ctx, "live")
	assert.NoError(t, err)
	adapter.AssertExpectations(t)
}

func TestSweep_AbortFailureKeepsSession(t *testing.T) {
	adapter := new(mocks.MockBackendAdapter)
	store := NewMemStore()
	svc := New(adapter, store, &config.UploadConfig{})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &domain.UploadSession{
		SessionID:       "stuck",
		StorageKey:      "k1",
		BackendUploadID: "bu-1",
		ExpiresAt:       time.Now().Add(-time.Minute),
	}))
	adapter.On("AbortChunked", mock.Anything, mock.Anything).
		Return(errors.New("backend unavailable"))

	j := NewJanitor(svc, time.Minute)
	j.sweep(ctx)

	// The session survives for the next sweep to retry the abort.
	expired, err := store.Expired(ctx)
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}
