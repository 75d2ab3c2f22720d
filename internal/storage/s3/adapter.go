// Package s3 implements the query-string-signed storage backend. Every
// write is a plain HTTP PUT whose authorization lives in the presigned
// URL's query string; chunked uploads map onto S3 multipart uploads, so
// chunk writes carry a real part identifier instead of overwriting the
// object, and commit performs a genuine part-list assembly.
package s3

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"coursevault/internal/config"
	"coursevault/internal/domain"
)

// Adapter is the S3-compatible implementation of port.BackendAdapter.
type Adapter struct {
	RequestBuilder

	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	region     string
	endpoint   string
	publicBase string
}

// New creates an Adapter from cfg. Fails with domain.ErrConfiguration when
// no credentials are configured; this adapter is the only component that
// ever holds them.
func New(cfg *config.S3Config) (*Adapter, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key: %w", domain.ErrConfiguration)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket: %w", domain.ErrConfiguration)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &Adapter{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (a *Adapter) Kind() domain.BackendKind { return domain.BackendS3 }

func (a *Adapter) SignSingleShot(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (*domain.SingleShotCredential, error) {
	req, err := a.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return nil, fmt.Errorf("presign put %q: %w: %v", key, domain.ErrSignRequestFailed, err)
	}
	return &domain.SingleShotCredential{
		TargetURL:       req.URL,
		ExpiresAt:       time.Now().Add(expiry),
		RequiredHeaders: flattenHeader(req.SignedHeader),
	}, nil
}

func (a *Adapter) InitiateChunked(ctx context.Context, key, contentType string, totalChunks int, expiry time.Duration) (*domain.ChunkSetCredential, string, error) {
	create, err := a.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, "", fmt.Errorf("create multipart upload %q: %w: %v", key, domain.ErrSignRequestFailed, err)
	}
	uploadID := aws.ToString(create.UploadId)

	// Part numbers are 1-based on the wire; chunk indexes stay 0-based.
	urls := make([]string, 0, totalChunks)
	for part := 1; part <= totalChunks; part++ {
		req, err := a.presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(a.bucket),
			Key:        aws.String(key),
			UploadId:   aws.String(uploadID),
			PartNumber: aws.Int32(int32(part)),
		}, s3.WithPresignExpires(expiry))
		if err != nil {
			return nil, "", fmt.Errorf("presign part %d of %q: %w: %v", part, key, domain.ErrSignRequestFailed, err)
		}
		urls = append(urls, req.URL)
	}

	return &domain.ChunkSetCredential{
		ChunkURLs:   urls,
		ChunkSize:   domain.ChunkSize,
		TotalChunks: totalChunks,
		ExpiresAt:   time.Now().Add(expiry),
	}, uploadID, nil
}

// CompleteChunked submits the part list to S3's multipart completion. When
// the caller supplied no chunk acks the part list is recovered with
// ListParts, so a commit without ETags still assembles a durable object.
func (a *Adapter) CompleteChunked(ctx context.Context, sess *domain.UploadSession, acks []domain.ChunkAck) error {
	if len(acks) == 0 {
		recovered, err := a.listParts(ctx, sess)
		if err != nil {
			return err
		}
		acks = recovered
	}

	parts := make([]types.CompletedPart, 0, len(acks))
	for _, ack := range acks {
		parts = append(parts, types.CompletedPart{
			PartNumber: aws.Int32(int32(ack.Index + 1)),
			ETag:       aws.String(ack.ETag),
		})
	}
	sort.Slice(parts, func(i, j int) bool {
		return aws.ToInt32(parts[i].PartNumber) < aws.ToInt32(parts[j].PartNumber)
	})

	_, err := a.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(sess.StorageKey),
		UploadId:        aws.String(sess.BackendUploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		return fmt.Errorf("complete multipart upload %q: %w: %v", sess.StorageKey, domain.ErrCommitFailed, err)
	}
	return nil
}

func (a *Adapter) AbortChunked(ctx context.Context, sess *domain.UploadSession) error {
	_, err := a.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(sess.StorageKey),
		UploadId: aws.String(sess.BackendUploadID),
	})
	if err != nil {
		return fmt.Errorf("abort multipart upload %q: %w", sess.StorageKey, err)
	}
	return nil
}

func (a *Adapter) listParts(ctx context.Context, sess *domain.UploadSession) ([]domain.ChunkAck, error) {
	out, err := a.client.ListParts(ctx, &s3.ListPartsInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(sess.StorageKey),
		UploadId: aws.String(sess.BackendUploadID),
	})
	if err != nil {
		return nil, fmt.Errorf("list parts for %q: %w: %v", sess.StorageKey, domain.ErrCommitFailed, err)
	}
	acks := make([]domain.ChunkAck, 0, len(out.Parts))
	for _, p := range out.Parts {
		acks = append(acks, domain.ChunkAck{
			Index: int(aws.ToInt32(p.PartNumber)) - 1,
			ETag:  aws.ToString(p.ETag),
		})
	}
	return acks, nil
}

// RequestBuilder is the secretless request-construction half of the S3
// backend. It needs no credentials of its own, so clients on the far side
// of the signing boundary can use it directly.
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

// ChunkRequest builds the PUT for one part. The byte span is identified by
// the part number baked into the signed URL; S3 rejects Content-Range on
// uploads, so no range header is added here.
func (RequestBuilder) ChunkRequest(cred *domain.ChunkSetCredential, index int, span domain.ByteSpan) (*domain.WriteRequest, error) {
	if cred == nil || index < 0 || index >= len(cred.ChunkURLs) {
		return nil, fmt.Errorf("chunk index %d: %w", index, domain.ErrValidation)
	}
	return &domain.WriteRequest{
		Method:  http.MethodPut,
		URL:     cred.ChunkURLs[index],
		Headers: copyHeaders(cred.RequiredHeaders),
	}, nil
}

// WriteFailure decodes the S3-style XML error body, falling back to the
// HTTP status text.
func (RequestBuilder) WriteFailure(statusCode int, body []byte) error {
	var e struct {
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	}
	if err := xml.Unmarshal(body, &e); err == nil && e.Code != "" {
		return fmt.Errorf("storage rejected write: %s: %s", e.Code, e.Message)
	}
	return fmt.Errorf("storage rejected write: %s", http.StatusText(statusCode))
}

func (a *Adapter) PublicURL(key string) string {
	if a.publicBase != "" {
		return a.publicBase + "/" + key
	}
	if a.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", a.endpoint, a.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key)
}

func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

func copyHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
