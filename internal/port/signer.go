package port

import (
	"context"

	"coursevault/internal/domain"
)

// CredentialSigner is the trust boundary that issues time-boxed write
// credentials for storage keys. Implementations never read or write file
// bytes. The in-process signer and the HTTP signing client both satisfy
// this interface, so the upload facade runs unchanged on either side of
// the boundary.
type CredentialSigner interface {
	SignSingleShot(ctx context.Context, key, contentType string, size int64) (*domain.SingleShotCredential, error)
	InitiateChunked(ctx context.Context, key, contentType string, totalFileSize int64) (*domain.ChunkSetCredential, error)
	Commit(ctx context.Context, sessionID string, acks []domain.ChunkAck) error
}

// SessionStore keeps the transient chunked-upload sessions for the
// credential TTL window. Sessions are the only state the signer owns.
type SessionStore interface {
	Put(ctx context.Context, sess *domain.UploadSession) error
	Get(ctx context.Context, sessionID string) (*domain.UploadSession, error)
	MarkCommitted(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
	// Expired returns sessions whose TTL has passed, for janitor sweeps.
	Expired(ctx context.Context) ([]*domain.UploadSession, error)
}
