package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursevault/internal/domain"
	"coursevault/internal/handler"
	"coursevault/internal/signer"
	"coursevault/mocks"
)

func setupRouter(ms *mocks.MockCredentialSigner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewUploadHandler(ms)
	r.POST("/api/v1/uploads/sign", h.Sign)
	return r
}

func postSign(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/sign", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSign_SingleShot(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	ms.On("SignSingleShot", mock.Anything, "LMS_Uploads/acme-101/thumbnail.png", "image/png", int64(2048)).
		Return(&domain.SingleShotCredential{
			Backend:   domain.BackendS3,
			Key:       "LMS_Uploads/acme-101/thumbnail.png",
			TargetURL: "https://bucket.s3.amazonaws.com/signed",
			PublicURL: "https://cdn.example/LMS_Uploads/acme-101/thumbnail.png",
			ExpiresAt: expires,
		}, nil)
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{
		Filename:    "cover.png",
		ContentType: "image/png",
		Path:        "LMS_Uploads/acme-101/thumbnail.png",
		FileSize:    2048,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp signer.SingleShotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://bucket.s3.amazonaws.com/signed", resp.PutURL)
	assert.Equal(t, "https://cdn.example/LMS_Uploads/acme-101/thumbnail.png", resp.PublicURL)
	assert.Equal(t, "LMS_Uploads/acme-101/thumbnail.png", resp.Key)
	assert.Equal(t, string(domain.BackendS3), resp.Backend)
	ms.AssertExpectations(t)
}

func TestSign_SingleShot_MissingPath(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{Filename: "cover.png", ContentType: "image/png"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp signer.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "path")
	ms.AssertNotCalled(t, "SignSingleShot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSign_ChunkedInitiate(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	size := int64(120 * 1024 * 1024)
	urls := make([]string, 30)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://bucket.s3.amazonaws.com/part/%d", i+1)
	}
	ms.On("InitiateChunked", mock.Anything, "k", "video/mp4", size).
		Return(&domain.ChunkSetCredential{
			Backend:     domain.BackendS3,
			Key:         "k",
			PublicURL:   "https://cdn.example/k",
			SessionID:   "sess-1",
			ChunkURLs:   urls,
			ChunkSize:   domain.ChunkSize,
			TotalChunks: 30,
		}, nil)
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Path:        "k",
		FileSize:    size,
		Chunked:     true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp signer.ChunkedInitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.UploadID)
	assert.Len(t, resp.ChunkURLs, 30)
	assert.Equal(t, 30, resp.TotalChunks)
	assert.Equal(t, int64(domain.ChunkSize), resp.ChunkSize)
	ms.AssertExpectations(t)
}

func TestSign_ChunkedInitiate_MissingFileSize(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{Path: "k", ContentType: "video/mp4", Chunked: true})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp signer.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "fileSize")
}

func TestSign_Commit(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	ms.On("Commit", mock.Anything, "sess-1", []domain.ChunkAck{
		{Index: 0, ETag: "e0"},
		{Index: 1, ETag: "e1"},
	}).Return(nil)
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{
		UploadID: "sess-1",
		Action:   signer.ActionCommit,
		Parts: []signer.WirePart{
			{PartNumber: 1, ETag: "e0"},
			{PartNumber: 2, ETag: "e1"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp signer.CommitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.Message)
	ms.AssertExpectations(t)
}

func TestSign_Commit_MissingUploadID(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{Action: signer.ActionCommit})

	require.Equal(t, http.StatusBadRequest, w.Code)
	ms.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSign_Commit_UnknownSession(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	ms.On("Commit", mock.Anything, "gone", mock.Anything).
		Return(fmt.Errorf("session %q: %w", "gone", domain.ErrSessionNotFound))
	r := setupRouter(ms)

	w := postSign(t, r, signer.SignRequest{UploadID: "gone", Action: signer.ActionCommit})

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp signer.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestSign_InvalidBody(t *testing.T) {
	ms := new(mocks.MockCredentialSigner)
	r := setupRouter(ms)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/sign", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp signer.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestMapDomainError(t *testing.T) {
	cases := map[error]int{
		domain.ErrValidation:        http.StatusBadRequest,
		domain.ErrUnauthorized:      http.StatusUnauthorized,
		domain.ErrSessionNotFound:   http.StatusNotFound,
		domain.ErrSizeLimitExceeded: http.StatusRequestEntityTooLarge,
		domain.ErrSignRequestFailed: http.StatusBadGateway,
		domain.ErrCommitFailed:      http.StatusBadGateway,
		domain.ErrConfiguration:     http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, handler.MapDomainError(err), "mapping %v", err)
	}
	assert.Equal(t, http.StatusInternalServerError, handler.MapDomainError(fmt.Errorf("unexpected")))
}
