// Package transfer moves file bytes to storage using credentials issued by
// the signer and wire rules supplied by a backend request builder. One
// upload attempt runs on one goroutine: every network step is awaited, and
// chunks go out strictly one at a time, in order. The sequential loop is a
// deliberate simplification; it keeps ordering trivial at the cost of
// throughput on fat links.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursevault/internal/domain"
	"coursevault/internal/port"
)

// Engine executes single-shot and chunked transfers. The zero value is not
// usable; construct with New.
type Engine struct {
	builder port.RequestBuilder
	httpc   *http.Client
}

// New creates an Engine over builder. httpc may be nil, in which case a
// client with a 5 minute timeout is used so a stalled PUT eventually fails
// instead of hanging.
func New(builder port.RequestBuilder, httpc *http.Client) *Engine {
	if httpc == nil {
		httpc = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Engine{builder: builder, httpc: httpc}
}

// CheckSize enforces the size ceiling: every asset class except video must
// fit in a single shot. Oversized videos take the chunked path instead.
func CheckSize(class domain.AssetClass, size int64) error {
	if size > domain.SingleShotMaxBytes && class != domain.AssetClassVideo {
		return fmt.Errorf("%s of %d bytes: %w", class, size, domain.ErrSizeLimitExceeded)
	}
	return nil
}

// SingleShot PUTs the entire payload in one request. Any 2xx is success.
// Progress is reported per write through a counting reader; callers that
// want only coarse progress can ignore intermediate events.
func (e *Engine) SingleShot(ctx context.Context, cred *domain.SingleShotCredential, content io.ReaderAt, size int64, progress port.ProgressFunc) error {
	wr, err := e.builder.SingleShotRequest(cred, size)
	if err != nil {
		return err
	}

	report(progress, domain.Progress{BytesSent: 0, TotalBytes: size, TotalChunks: 1})

	body := &countingReader{
		r:        io.NewSectionReader(content, 0, size),
		total:    size,
		progress: progress,
	}
	status, respBody, _, err := e.put(ctx, wr, body, size)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: %v", domain.ErrTransferFailed, e.builder.WriteFailure(status, respBody))
	}

	report(progress, domain.Progress{BytesSent: size, TotalBytes: size, ChunksDone: 1, TotalChunks: 1})
	return nil
}

// Chunked slices the payload into cred.ChunkSize spans and PUTs them one
// at a time, in ascending index order, awaiting each response before the
// next request is sent. A failed chunk aborts the attempt with its index;
// there is no retry and no resume, a fresh attempt restarts from chunk 0
// with a new credential. The collected chunk acks are returned for the
// commit call.
func (e *Engine) Chunked(ctx context.Context, cred *domain.ChunkSetCredential, content io.ReaderAt, size int64, progress port.ProgressFunc) ([]domain.ChunkAck, error) {
	if cred == nil || cred.ChunkSize <= 0 || len(cred.ChunkURLs) == 0 {
		return nil, fmt.Errorf("chunk set credential: %w", domain.ErrValidation)
	}

	total := len(cred.ChunkURLs)
	report(progress, domain.Progress{TotalBytes: size, TotalChunks: total})

	acks := make([]domain.ChunkAck, 0, total)
	for i := 0; i < total; i++ {
		span := domain.ByteSpan{
			Start: int64(i) * cred.ChunkSize,
			End:   min64(int64(i+1)*cred.ChunkSize, size),
			Total: size,
		}

		wr, err := e.builder.ChunkRequest(cred, i, span)
		if err != nil {
			return nil, &domain.ChunkUploadError{Index: i, Err: err}
		}

		body := io.NewSectionReader(content, span.Start, span.Len())
		status, respBody, etag, err := e.put(ctx, wr, body, span.Len())
		if err != nil {
			return nil, &domain.ChunkUploadError{Index: i, Err: err}
		}
		if status < 200 || status > 299 {
			return nil, &domain.ChunkUploadError{Index: i, Err: e.builder.WriteFailure(status, respBody)}
		}

		acks = append(acks, domain.ChunkAck{Index: i, ETag: etag})
		report(progress, domain.Progress{
			BytesSent:   span.End,
			TotalBytes:  size,
			ChunksDone:  i + 1,
			TotalChunks: total,
		})
	}

	return acks, nil
}

// put executes one write request and returns the status, a bounded copy of
// the response body, and the response ETag with surrounding quotes removed.
func (e *Engine) put(ctx context.Context, wr *domain.WriteRequest, body io.Reader, size int64) (int, []byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, wr.Method, wr.URL, body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("building request: %w", err)
	}
	req.ContentLength = size
	for k, v := range wr.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.httpc.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return resp.StatusCode, nil, "", fmt.Errorf("reading response: %w", err)
	}
	etag := strings.Trim(resp.Header.Get("ETag"), `"`)
	return resp.StatusCode, respBody, etag, nil
}

func report(progress port.ProgressFunc, p domain.Progress) {
	if progress != nil {
		progress(p)
	}
}

// countingReader reports cumulative bytes read to the progress callback.
type countingReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress port.ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		report(c.progress, domain.Progress{BytesSent: c.sent, TotalBytes: c.total, TotalChunks: 1})
	}
	return n, err
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
