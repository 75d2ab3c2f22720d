package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("storage backend credentials are not configured")
	ErrValidation        = errors.New("missing or empty required field")
	ErrSizeLimitExceeded = errors.New("file exceeds the size limit for its asset class")
	ErrSignRequestFailed = errors.New("credential signing request failed")
	ErrTransferFailed    = errors.New("object transfer failed")
	ErrChunkUploadFailed = errors.New("chunk upload failed")
	ErrCommitFailed      = errors.New("chunked upload commit failed")
	ErrSessionNotFound   = errors.New("upload session not found or expired")
	ErrUnauthorized      = errors.New("unauthorized")
)

// ChunkUploadError records which chunk of a chunked transfer failed. It
// unwraps to ErrChunkUploadFailed so callers can match the kind without
// losing the index.
type ChunkUploadError struct {
	Index int
	Err   error
}

func (e *ChunkUploadError) Error() string {
	return fmt.Sprintf("chunk %d: %s: %v", e.Index, ErrChunkUploadFailed, e.Err)
}

func (e *ChunkUploadError) Unwrap() error { return ErrChunkUploadFailed }

// FailedChunk extracts the failing chunk index from err, returning -1 when
// err does not carry one.
func FailedChunk(err error) int {
	var ce *ChunkUploadError
	if errors.As(err, &ce) {
		return ce.Index
	}
	return -1
}
