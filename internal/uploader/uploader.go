// Package uploader is the single entry point for moving an asset into
// storage: it derives the storage key, obtains credentials from the
// signer, drives the transfer engine, and returns a uniform result. It
// works identically over the in-process signer and the HTTP signing
// client, and never returns a partial result.
package uploader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"coursevault/internal/domain"
	"coursevault/internal/port"
	"coursevault/internal/storagekey"
	s3storage "coursevault/internal/storage/s3"
	"coursevault/internal/storage/supabase"
	"coursevault/internal/transfer"
)

// Input describes one upload: the payload plus the already-resolved
// hierarchy strings. The caller is assumed to be authorized; the facade
// performs no permission checks.
type Input struct {
	Content     io.ReaderAt
	Size        int64
	Filename    string
	ContentType string

	AssetClass    domain.AssetClass
	CourseSlug    string
	ModuleOrdinal int
	ModuleTitle   string
	LessonOrdinal int
	LessonTitle   string
	ItemID        string

	Progress port.ProgressFunc
}

// Uploader wires key derivation, credential signing, and transfer into one
// call.
type Uploader struct {
	deriver *storagekey.Deriver
	signer  port.CredentialSigner
	httpc   *http.Client
}

// New creates an Uploader. httpc may be nil; see transfer.New for the
// default timeout behavior.
func New(deriver *storagekey.Deriver, signer port.CredentialSigner, httpc *http.Client) *Uploader {
	if httpc == nil {
		httpc = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Uploader{deriver: deriver, signer: signer, httpc: httpc}
}

// Upload runs the full pipeline and returns the terminal result. Inner
// error kinds are preserved on every failure path, and no result is
// returned unless the whole transfer (and commit, when chunked) succeeded.
func (u *Uploader) Upload(ctx context.Context, in Input) (*domain.UploadResult, error) {
	if in.Content == nil || in.Size <= 0 {
		return nil, fmt.Errorf("upload content: %w", domain.ErrValidation)
	}

	key, err := u.deriver.Derive(storagekey.Input{
		AssetClass:    in.AssetClass,
		CourseSlug:    in.CourseSlug,
		ModuleOrdinal: in.ModuleOrdinal,
		ModuleTitle:   in.ModuleTitle,
		LessonOrdinal: in.LessonOrdinal,
		LessonTitle:   in.LessonTitle,
		Filename:      in.Filename,
		ItemID:        in.ItemID,
	})
	if err != nil {
		return nil, err
	}

	if err := transfer.CheckSize(in.AssetClass, in.Size); err != nil {
		return nil, err
	}

	if chunked(in.AssetClass, in.Size) {
		return u.uploadChunked(ctx, key, in)
	}
	return u.uploadSingleShot(ctx, key, in)
}

// chunked reports whether the upload must take the chunked path: only
// videos may exceed the single-shot ceiling, and everything at or under it
// goes out in one PUT.
func chunked(class domain.AssetClass, size int64) bool {
	return class == domain.AssetClassVideo && size > domain.SingleShotMaxBytes
}

func (u *Uploader) uploadSingleShot(ctx context.Context, key string, in Input) (*domain.UploadResult, error) {
	cred, err := u.signer.SignSingleShot(ctx, key, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}
	engine, err := u.engineFor(cred.Backend)
	if err != nil {
		return nil, err
	}
	if err := engine.SingleShot(ctx, cred, in.Content, in.Size, in.Progress); err != nil {
		return nil, err
	}
	return &domain.UploadResult{
		PublicURL:  cred.PublicURL,
		StorageKey: cred.Key,
		ByteSize:   in.Size,
	}, nil
}

func (u *Uploader) uploadChunked(ctx context.Context, key string, in Input) (*domain.UploadResult, error) {
	cred, err := u.signer.InitiateChunked(ctx, key, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}
	engine, err := u.engineFor(cred.Backend)
	if err != nil {
		return nil, err
	}
	acks, err := engine.Chunked(ctx, cred, in.Content, in.Size, in.Progress)
	if err != nil {
		return nil, err
	}
	if err := u.signer.Commit(ctx, cred.SessionID, acks); err != nil {
		return nil, err
	}
	return &domain.UploadResult{
		PublicURL:  cred.PublicURL,
		StorageKey: cred.Key,
		ByteSize:   in.Size,
	}, nil
}

func (u *Uploader) engineFor(kind domain.BackendKind) (*transfer.Engine, error) {
	builder, err := BuilderFor(kind)
	if err != nil {
		return nil, err
	}
	return transfer.New(builder, u.httpc), nil
}

// BuilderFor returns the secretless request builder for the backend kind a
// credential was issued against.
func BuilderFor(kind domain.BackendKind) (port.RequestBuilder, error) {
	switch kind {
	case domain.BackendS3:
		return s3storage.RequestBuilder{}, nil
	case domain.BackendSupabase:
		return supabase.RequestBuilder{}, nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q: %w", kind, domain.ErrConfiguration)
	}
}
