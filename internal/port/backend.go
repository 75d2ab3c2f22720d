package port

import (
	"context"
	"time"

	"coursevault/internal/domain"
)

// RequestBuilder is the secretless half of a backend adapter: it turns
// issued credentials into wire-level requests and normalizes write
// failures. It is pure, executes no I/O, and is safe to use on the far
// side of the signing boundary.
type RequestBuilder interface {
	// SingleShotRequest builds the wire-level PUT for a whole object.
	SingleShotRequest(cred *domain.SingleShotCredential, size int64) (*domain.WriteRequest, error)

	// ChunkRequest builds the wire-level PUT for chunk index covering span.
	ChunkRequest(cred *domain.ChunkSetCredential, index int, span domain.ByteSpan) (*domain.WriteRequest, error)

	// WriteFailure normalizes a failed write response into one error
	// shape, hiding whether the backend reports failures as HTTP status
	// text or a JSON error body.
	WriteFailure(statusCode int, body []byte) error
}

// BackendAdapter translates generic write intent into one storage service's
// wire protocol. Credential issuance runs at the signing boundary and is the
// only place long-lived secrets are used; request construction is pure and
// never executes I/O.
type BackendAdapter interface {
	RequestBuilder

	// Kind identifies the backend for logging and configuration.
	Kind() domain.BackendKind

	// SignSingleShot issues a credential authorizing exactly one
	// whole-object PUT of key, valid for expiry.
	SignSingleShot(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (*domain.SingleShotCredential, error)

	// InitiateChunked opens a chunked upload for key and issues one write
	// credential per chunk. It returns the backend's own upload handle
	// (empty on backends without a block-assembly protocol) alongside the
	// credential.
	InitiateChunked(ctx context.Context, key, contentType string, totalChunks int, expiry time.Duration) (*domain.ChunkSetCredential, string, error)

	// CompleteChunked assembles the uploaded chunks into one durable
	// object. acks may be empty; backends that require the chunk list
	// must recover it themselves or fail with ErrCommitFailed.
	CompleteChunked(ctx context.Context, sess *domain.UploadSession, acks []domain.ChunkAck) error

	// AbortChunked discards an uncommitted chunked upload. Used by the
	// session janitor; a no-op on backends without multipart state.
	AbortChunked(ctx context.Context, sess *domain.UploadSession) error

	// PublicURL returns the browser-accessible URL for key.
	PublicURL(key string) string
}
