package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coursevault/internal/port"
	"coursevault/internal/signer"
)

// UploadHandler serves the signing boundary: one endpoint, three request
// shapes (single-shot sign, chunked initiate, chunked commit). It issues
// credentials only; file bytes never pass through this process.
type UploadHandler struct {
	signer port.CredentialSigner
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(s port.CredentialSigner) *UploadHandler {
	return &UploadHandler{signer: s}
}

// Sign handles POST /api/v1/uploads/sign
// @Summary Issue time-boxed write credentials
// @Description Signs a single-shot PUT, initiates a chunked upload, or commits a chunked session depending on the request shape
// @Tags uploads
// @Accept json
// @Produce json
// @Param request body signer.SignRequest true "Sign request (single-shot, chunked: true, or action: commit)"
// @Success 200 {object} signer.SingleShotResponse "Signed credential"
// @Failure 400 {object} signer.ErrorResponse "Missing or empty required field"
// @Failure 404 {object} signer.ErrorResponse "Unknown or expired upload session"
// @Failure 502 {object} signer.ErrorResponse "Storage backend rejected the request"
// @Security BearerAuth
// @Router /uploads/sign [post]
func (h *UploadHandler) Sign(c *gin.Context) {
	var req signer.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	switch {
	case req.Action == signer.ActionCommit:
		h.commit(c, req)
	case req.Chunked:
		h.initiateChunked(c, req)
	default:
		h.signSingleShot(c, req)
	}
}

func (h *UploadHandler) signSingleShot(c *gin.Context, req signer.SignRequest) {
	if strings.TrimSpace(req.Path) == "" {
		RespondError(c, http.StatusBadRequest, "path is required")
		return
	}

	cred, err := h.signer.SignSingleShot(c.Request.Context(), req.Path, req.ContentType, req.FileSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, signer.SingleShotResponse{
		Backend:   string(cred.Backend),
		PutURL:    cred.TargetURL,
		PublicURL: cred.PublicURL,
		Key:       cred.Key,
		Headers:   cred.RequiredHeaders,
		ExpiresAt: cred.ExpiresAt,
	})
}

func (h *UploadHandler) initiateChunked(c *gin.Context, req signer.SignRequest) {
	if strings.TrimSpace(req.Path) == "" {
		RespondError(c, http.StatusBadRequest, "path is required")
		return
	}
	if req.FileSize <= 0 {
		RespondError(c, http.StatusBadRequest, "fileSize is required for chunked uploads")
		return
	}

	cred, err := h.signer.InitiateChunked(c.Request.Context(), req.Path, req.ContentType, req.FileSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, signer.ChunkedInitResponse{
		Backend:     string(cred.Backend),
		UploadID:    cred.SessionID,
		ChunkURLs:   cred.ChunkURLs,
		TotalChunks: cred.TotalChunks,
		ChunkSize:   cred.ChunkSize,
		Key:         cred.Key,
		PublicURL:   cred.PublicURL,
		Headers:     cred.RequiredHeaders,
		ExpiresAt:   cred.ExpiresAt,
	})
}

func (h *UploadHandler) commit(c *gin.Context, req signer.SignRequest) {
	if strings.TrimSpace(req.UploadID) == "" {
		RespondError(c, http.StatusBadRequest, "uploadId is required for commit")
		return
	}

	err := h.signer.Commit(c.Request.Context(), req.UploadID, signer.AcksFromParts(req.Parts))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, signer.CommitResponse{OK: true, Message: "upload committed"})
}
