// Package supabase implements the bearer-token storage backend. Every
// write is an HTTP PUT to a stable per-object endpoint authorized by a
// bearer credential plus an API-key header; the public URL is derived by
// template substitution of the object key, not returned by the write call.
//
// The backend has no block-assembly protocol: each chunk PUT is persisted
// as a working version of the object and same-key writes overwrite each
// other, so a chunked upload here is last-write-wins. Commit is therefore
// a no-op acknowledgment and logs a durability warning.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"coursevault/internal/config"
	"coursevault/internal/domain"

	"github.com/google/uuid"
)

// Adapter is the Supabase-storage implementation of port.BackendAdapter.
type Adapter struct {
	RequestBuilder

	projectURL   string
	bucket       string
	serviceKey   string
	apiKey       string
	publicBase   string
	sessionToken string
}

// New creates an Adapter from cfg. sessionToken, when non-empty, is
// preferred over the static service key for the bearer credential.
func New(cfg *config.SupabaseConfig, sessionToken string) (*Adapter, error) {
	if cfg.ProjectURL == "" {
		return nil, fmt.Errorf("supabase project URL: %w", domain.ErrConfiguration)
	}
	if cfg.ServiceKey == "" && sessionToken == "" {
		return nil, fmt.Errorf("supabase service key or session token: %w", domain.ErrConfiguration)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("supabase bucket: %w", domain.ErrConfiguration)
	}
	return &Adapter{
		projectURL:   strings.TrimRight(cfg.ProjectURL, "/"),
		bucket:       cfg.Bucket,
		serviceKey:   cfg.ServiceKey,
		apiKey:       cfg.APIKey,
		publicBase:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		sessionToken: sessionToken,
	}, nil
}

func (a *Adapter) Kind() domain.BackendKind { return domain.BackendSupabase }

func (a *Adapter) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", a.projectURL, a.bucket, key)
}

// bearer prefers the caller's session token and falls back to the static
// service key.
func (a *Adapter) bearer() string {
	if a.sessionToken != "" {
		return a.sessionToken
	}
	return a.serviceKey
}

func (a *Adapter) writeHeaders(contentType string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + a.bearer(),
		"x-upsert":      "true",
	}
	if a.apiKey != "" {
		h["apikey"] = a.apiKey
	}
	if contentType != "" {
		h["Content-Type"] = contentType
	}
	return h
}

func (a *Adapter) SignSingleShot(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (*domain.SingleShotCredential, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key: %w", domain.ErrValidation)
	}
	return &domain.SingleShotCredential{
		TargetURL:       a.objectURL(key),
		ExpiresAt:       time.Now().Add(expiry),
		RequiredHeaders: a.writeHeaders(contentType),
	}, nil
}

// InitiateChunked issues one credential per chunk. The endpoint is stable
// per object, so every chunk URL is the same; the byte span rides in the
// Content-Range header added by ChunkRequest.
func (a *Adapter) InitiateChunked(ctx context.Context, key, contentType string, totalChunks int, expiry time.Duration) (*domain.ChunkSetCredential, string, error) {
	if key == "" {
		return nil, "", fmt.Errorf("storage key: %w", domain.ErrValidation)
	}
	log.Printf("supabase.InitiateChunked: WARNING: backend has no block-assembly protocol; "+
		"chunked writes to %q overwrite each other and are not durable as an assembled object", key)

	urls := make([]string, totalChunks)
	target := a.objectURL(key)
	for i := range urls {
		urls[i] = target
	}
	return &domain.ChunkSetCredential{
		ChunkURLs:       urls,
		ChunkSize:       domain.ChunkSize,
		TotalChunks:     totalChunks,
		ExpiresAt:       time.Now().Add(expiry),
		RequiredHeaders: a.writeHeaders(contentType),
	}, uuid.New().String(), nil
}

// CompleteChunked acknowledges the commit without submitting anything:
// there is no block-commit operation on this backend. The durability gap
// is deliberate and surfaced loudly rather than hidden.
func (a *Adapter) CompleteChunked(ctx context.Context, sess *domain.UploadSession, acks []domain.ChunkAck) error {
	log.Printf("supabase.CompleteChunked: WARNING: acknowledging commit of session %s for %q "+
		"without block assembly; object content is whichever chunk wrote last", sess.SessionID, sess.StorageKey)
	return nil
}

func (a *Adapter) AbortChunked(ctx context.Context, sess *domain.UploadSession) error {
	// No multipart state to discard.
	return nil
}

// RequestBuilder is the secretless request-construction half of the
// bearer-token backend. The authorization headers ride inside the issued
// credential, so building a request needs no state of its own.
type RequestBuilder struct{}

func (RequestBuilder) SingleShotRequest(cred *domain.SingleShotCredential, size int64) (*domain.WriteRequest, error) {
	if cred == nil || cred.TargetURL == "" {
		return nil, fmt.Errorf("single-shot credential target URL: %w", domain.ErrValidation)
	}
	return &domain.WriteRequest{
		Method:  http.MethodPut,
		URL:     cred.TargetURL,
		Headers: copyHeaders(cred.RequiredHeaders),
	}, nil
}

// ChunkRequest adds the Content-Range header describing the chunk's byte
// span within the whole object; the endpoint itself is the same for every
// chunk.
func (RequestBuilder) ChunkRequest(cred *domain.ChunkSetCredential, index int, span domain.ByteSpan) (*domain.WriteRequest, error) {
	if cred == nil || index < 0 || index >= len(cred.ChunkURLs) {
		return nil, fmt.Errorf("chunk index %d: %w", index, domain.ErrValidation)
	}
	headers := copyHeaders(cred.RequiredHeaders)
	headers["Content-Range"] = fmt.Sprintf("bytes %d-%d/%d", span.Start, span.End-1, span.Total)
	return &domain.WriteRequest{
		Method:  http.MethodPut,
		URL:     cred.ChunkURLs[index],
		Headers: headers,
	}, nil
}

// WriteFailure decodes the backend's JSON error body, falling back to the
// HTTP status text.
func (RequestBuilder) WriteFailure(statusCode int, body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		if msg != "" {
			return fmt.Errorf("storage rejected write: %s", msg)
		}
	}
	return fmt.Errorf("storage rejected write: %s", http.StatusText(statusCode))
}

func (a *Adapter) PublicURL(key string) string {
	if a.publicBase != "" {
		return a.publicBase + "/" + key
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", a.projectURL, a.bucket, key)
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
