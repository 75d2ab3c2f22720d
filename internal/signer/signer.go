// Package signer is the trust boundary that turns storage keys into
// time-boxed write credentials. It is the only component that touches
// storage account secrets, and it never reads or writes file bytes.
package signer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursevault/internal/config"
	"coursevault/internal/domain"
	"coursevault/internal/port"
	s3storage "coursevault/internal/storage/s3"
	"coursevault/internal/storage/supabase"
)

// Service implements port.CredentialSigner against one configured backend
// adapter. Credential TTLs are fixed per path: SingleShotTTL for
// whole-object PUTs, ChunkedTTL for chunk sets.
type Service struct {
	adapter       port.BackendAdapter
	store         port.SessionStore
	singleShotTTL time.Duration
	chunkedTTL    time.Duration
}

// New creates a Service over an already-constructed adapter and store.
func New(adapter port.BackendAdapter, store port.SessionStore, uploadCfg *config.UploadConfig) *Service {
	singleTTL := uploadCfg.SingleShotTTL
	if singleTTL <= 0 {
		singleTTL = time.Hour
	}
	chunkedTTL := uploadCfg.ChunkedTTL
	if chunkedTTL <= 0 {
		chunkedTTL = 2 * time.Hour
	}
	return &Service{
		adapter:       adapter,
		store:         store,
		singleShotTTL: singleTTL,
		chunkedTTL:    chunkedTTL,
	}
}

// NewFromConfig builds the backend adapter selected by cfg.Storage.Backend
// and returns a Service over it. Fails with domain.ErrConfiguration when
// the selected backend has no credentials configured.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	adapter, err := AdapterFromConfig(&cfg.Storage)
	if err != nil {
		return nil, err
	}
	return New(adapter, NewMemStore(), &cfg.Upload), nil
}

// AdapterFromConfig selects and constructs the configured backend adapter.
func AdapterFromConfig(cfg *config.StorageConfig) (port.BackendAdapter, error) {
	switch domain.BackendKind(cfg.Backend) {
	case domain.BackendS3:
		return s3storage.New(&cfg.S3)
	case domain.BackendSupabase:
		return supabase.New(&cfg.Supabase, "")
	default:
		return nil, fmt.Errorf("unknown storage backend %q: %w", cfg.Backend, domain.ErrConfiguration)
	}
}

// Adapter exposes the backend adapter for components that build public
// URLs server-side.
func (s *Service) Adapter() port.BackendAdapter { return s.adapter }

func (s *Service) SignSingleShot(ctx context.Context, key, contentType string, size int64) (*domain.SingleShotCredential, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("storage key: %w", domain.ErrValidation)
	}
	cred, err := s.adapter.SignSingleShot(ctx, key, contentType, size, s.singleShotTTL)
	if err != nil {
		return nil, err
	}
	cred.Backend = s.adapter.Kind()
	cred.Key = key
	cred.PublicURL = s.adapter.PublicURL(key)
	return cred, nil
}

func (s *Service) InitiateChunked(ctx context.Context, key, contentType string, totalFileSize int64) (*domain.ChunkSetCredential, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("storage key: %w", domain.ErrValidation)
	}
	if totalFileSize <= 0 {
		return nil, fmt.Errorf("total file size: %w", domain.ErrValidation)
	}

	totalChunks := domain.TotalChunks(totalFileSize)
	cred, backendUploadID, err := s.adapter.InitiateChunked(ctx, key, contentType, totalChunks, s.chunkedTTL)
	if err != nil {
		return nil, err
	}

	sess := &domain.UploadSession{
		SessionID:       uuid.New().String(),
		StorageKey:      key,
		BackendUploadID: backendUploadID,
		TotalChunks:     totalChunks,
		ChunkSize:       cred.ChunkSize,
		ExpiresAt:       time.Now().Add(s.chunkedTTL),
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("storing upload session: %w", err)
	}

	cred.Backend = s.adapter.Kind()
	cred.Key = key
	cred.PublicURL = s.adapter.PublicURL(key)
	cred.SessionID = sess.SessionID
	log.Printf("signer.InitiateChunked: session %s for %q, %d chunks of %d bytes",
		sess.SessionID, key, totalChunks, cred.ChunkSize)
	return cred, nil
}

// Commit finalizes a chunked session. On backends with a block-assembly
// protocol this submits the uploaded chunk list; elsewhere it is an
// acknowledgment only. Committing an already-committed session is a no-op.
func (s *Service) Commit(ctx context.Context, sessionID string, acks []domain.ChunkAck) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id: %w", domain.ErrValidation)
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Committed {
		return nil
	}
	if err := s.adapter.CompleteChunked(ctx, sess, acks); err != nil {
		return err
	}
	if err := s.store.MarkCommitted(ctx, sessionID); err != nil {
		return fmt.Errorf("marking session committed: %w", err)
	}
	log.Printf("signer.Commit: session %s for %q committed (%d chunk acks)",
		sessionID, sess.StorageKey, len(acks))
	return nil
}

var _ port.CredentialSigner = (*Service)(nil)
