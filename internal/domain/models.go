package domain

import (
	"time"
)

// ChunkSize is the fixed slice size for chunked transfers.
const ChunkSize int64 = 4 * 1024 * 1024

// SingleShotMaxBytes is the size ceiling for every asset class except video.
// Videos above this ceiling take the chunked path instead of failing.
const SingleShotMaxBytes int64 = 50 * 1024 * 1024

// TotalChunks returns ceil(size / ChunkSize) for a chunked transfer.
func TotalChunks(size int64) int {
	return int((size + ChunkSize - 1) / ChunkSize)
}

// SingleShotCredential authorizes exactly one whole-object PUT. Key and
// PublicURL ride along so a caller on the far side of the signing boundary
// never needs backend knowledge to assemble its result.
type SingleShotCredential struct {
	Backend         BackendKind       `json:"backend"`
	Key             string            `json:"key"`
	TargetURL       string            `json:"put_url"`
	PublicURL       string            `json:"public_url"`
	ExpiresAt       time.Time         `json:"expires_at"`
	RequiredHeaders map[string]string `json:"headers,omitempty"`
}

// ChunkSetCredential authorizes an ordered sequence of partial-object PUTs
// that must be finalized with a commit call.
type ChunkSetCredential struct {
	Backend         BackendKind       `json:"backend"`
	Key             string            `json:"key"`
	PublicURL       string            `json:"public_url"`
	SessionID       string            `json:"upload_id"`
	ChunkURLs       []string          `json:"chunk_urls"`
	ChunkSize       int64             `json:"chunk_size"`
	TotalChunks     int               `json:"total_chunks"`
	ExpiresAt       time.Time         `json:"expires_at"`
	RequiredHeaders map[string]string `json:"headers,omitempty"`
}

// UploadSession is the signer-side record of an in-flight chunked upload.
// BackendUploadID is the backend's own multipart handle where one exists;
// empty on backends that persist each chunk PUT directly.
type UploadSession struct {
	SessionID       string    `json:"session_id"`
	StorageKey      string    `json:"storage_key"`
	BackendUploadID string    `json:"backend_upload_id,omitempty"`
	TotalChunks     int       `json:"total_chunks"`
	ChunkSize       int64     `json:"chunk_size"`
	Committed       bool      `json:"committed"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// ChunkAck identifies one successfully uploaded chunk. ETag is the value the
// backend returned for that chunk's PUT; backends without a block-assembly
// protocol ignore it.
type ChunkAck struct {
	Index int    `json:"part_number"`
	ETag  string `json:"etag"`
}

// WriteRequest is a fully built wire-level write the transfer engine can
// execute without knowing which backend produced it.
type WriteRequest struct {
	Method  string
	URL     string
	Headers map[string]string
}

// ByteSpan describes a chunk's byte range within the whole object.
// End is exclusive.
type ByteSpan struct {
	Start int64
	End   int64
	Total int64
}

// Len returns the number of bytes in the span.
func (s ByteSpan) Len() int64 { return s.End - s.Start }

// Progress reports transfer progress to the caller. For single-shot
// transfers BytesSent advances per write; for chunked transfers progress is
// chunk-grained and BytesSent advances once per completed chunk.
type Progress struct {
	BytesSent   int64
	TotalBytes  int64
	ChunksDone  int
	TotalChunks int
}

// Fraction returns completed progress in [0, 1].
func (p Progress) Fraction() float64 {
	if p.TotalBytes <= 0 {
		return 0
	}
	return float64(p.BytesSent) / float64(p.TotalBytes)
}

// UploadResult is the terminal artifact of a successful upload.
type UploadResult struct {
	PublicURL  string `json:"public_url"`
	StorageKey string `json:"storage_key"`
	ByteSize   int64  `json:"byte_size"`
}
