package signer

import (
	"time"

	"coursevault/internal/domain"
)

// The signing boundary is one JSON endpoint serving three request shapes:
// single-shot sign, chunked initiate, and chunked commit. These types are
// shared by the HTTP handler and the HTTP client so the two sides cannot
// drift apart.

// SignRequest is the request body of POST /api/v1/uploads/sign.
type SignRequest struct {
	Filename    string     `json:"filename,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	Path        string     `json:"path,omitempty"`
	FileSize    int64      `json:"fileSize,omitempty"`
	Chunked     bool       `json:"chunked,omitempty"`
	UploadID    string     `json:"uploadId,omitempty"`
	Action      string     `json:"action,omitempty"`
	Parts       []WirePart `json:"parts,omitempty"`
}

// ActionCommit selects the commit shape of the sign endpoint.
const ActionCommit = "commit"

// WirePart is one uploaded chunk acknowledgment. Part numbers are 1-based
// on the wire.
type WirePart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

// SingleShotResponse answers a single-shot sign request.
type SingleShotResponse struct {
	Backend   string            `json:"backend"`
	PutURL    string            `json:"putUrl"`
	PublicURL string            `json:"publicUrl"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// ChunkedInitResponse answers a chunked initiate request.
type ChunkedInitResponse struct {
	Backend     string            `json:"backend"`
	UploadID    string            `json:"uploadId"`
	ChunkURLs   []string          `json:"chunkUrls"`
	TotalChunks int               `json:"totalChunks"`
	ChunkSize   int64             `json:"chunkSize"`
	Key         string            `json:"key"`
	PublicURL   string            `json:"publicUrl"`
	Headers     map[string]string `json:"headers,omitempty"`
	ExpiresAt   time.Time         `json:"expiresAt"`
}

// CommitResponse answers a chunked commit request.
type CommitResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PartsFromAcks converts chunk acks to their wire form.
func PartsFromAcks(acks []domain.ChunkAck) []WirePart {
	if len(acks) == 0 {
		return nil
	}
	parts := make([]WirePart, len(acks))
	for i, a := range acks {
		parts[i] = WirePart{PartNumber: a.Index + 1, ETag: a.ETag}
	}
	return parts
}

// AcksFromParts converts wire parts back to chunk acks.
func AcksFromParts(parts []WirePart) []domain.ChunkAck {
	if len(parts) == 0 {
		return nil
	}
	acks := make([]domain.ChunkAck, len(parts))
	for i, p := range parts {
		acks[i] = domain.ChunkAck{Index: p.PartNumber - 1, ETag: p.ETag}
	}
	return acks
}
