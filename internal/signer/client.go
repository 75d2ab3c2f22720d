package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursevault/internal/domain"
	"coursevault/internal/port"
)

// Client speaks the sign endpoint's wire contract from the caller's side
// of the boundary, so the upload facade runs unchanged remotely. It holds
// no storage secrets, only the caller's session token.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a Client for the signing boundary at baseURL. token is
// the caller's bearer session token; pass "" against an unauthenticated
// boundary.
func NewClient(baseURL, token string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   httpc,
	}
}

func (c *Client) SignSingleShot(ctx context.Context, key, contentType string, size int64) (*domain.SingleShotCredential, error) {
	var resp SingleShotResponse
	err := c.post(ctx, SignRequest{
		Path:        key,
		ContentType: contentType,
		FileSize:    size,
	}, &resp, domain.ErrSignRequestFailed)
	if err != nil {
		return nil, err
	}
	return &domain.SingleShotCredential{
		Backend:         domain.BackendKind(resp.Backend),
		Key:             resp.Key,
		TargetURL:       resp.PutURL,
		PublicURL:       resp.PublicURL,
		ExpiresAt:       resp.ExpiresAt,
		RequiredHeaders: resp.Headers,
	}, nil
}

func (c *Client) InitiateChunked(ctx context.Context, key, contentType string, totalFileSize int64) (*domain.ChunkSetCredential, error) {
	var resp ChunkedInitResponse
	err := c.post(ctx, SignRequest{
		Path:        key,
		ContentType: contentType,
		FileSize:    totalFileSize,
		Chunked:     true,
	}, &resp, domain.ErrSignRequestFailed)
	if err != nil {
		return nil, err
	}
	return &domain.ChunkSetCredential{
		Backend:         domain.BackendKind(resp.Backend),
		Key:             resp.Key,
		PublicURL:       resp.PublicURL,
		SessionID:       resp.UploadID,
		ChunkURLs:       resp.ChunkURLs,
		ChunkSize:       resp.ChunkSize,
		TotalChunks:     resp.TotalChunks,
		ExpiresAt:       resp.ExpiresAt,
		RequiredHeaders: resp.Headers,
	}, nil
}

func (c *Client) Commit(ctx context.Context, sessionID string, acks []domain.ChunkAck) error {
	var resp CommitResponse
	return c.post(ctx, SignRequest{
		UploadID: sessionID,
		Action:   ActionCommit,
		Parts:    PartsFromAcks(acks),
	}, &resp, domain.ErrCommitFailed)
}

// post sends one sign-endpoint request and decodes the 2xx response into
// out. Any non-2xx is fatal for that call and wraps kind with the
// boundary's error text.
func (c *Client) post(ctx context.Context, reqBody SignRequest, out interface{}, kind error) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encoding sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/uploads/sign", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", kind, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %s (status %d)", kind, e.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", kind, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", kind, err)
	}
	return nil
}

var _ port.CredentialSigner = (*Client)(nil)
