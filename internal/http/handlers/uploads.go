package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
)

type signUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	TripID      string `json:"tripId" binding:"omitempty,uuid"`
}

type confirmUploadRequest struct {
	UploadID string `json:"uploadId" binding:"required,uuid"`
	Key      string `json:"key" binding:"omitempty,max=512"`
}

// POST /api/v1/uploads/sign
func (h *Handler) SignUpload(c *gin.Context) {
	var req signUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Uploads.Sign(c.Request.Context(), middleware.Actor(c), models.UploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		TripID:      req.TripID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Upload URL generated successfully", out)
}

// POST /api/v1/uploads/confirm
func (h *Handler) ConfirmUpload(c *gin.Context) {
	var req confirmUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Uploads.Confirm(c.Request.Context(), middleware.Actor(c), req.UploadID, req.Key)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Upload confirmed successfully", out)
}

// PUT /api/v1/uploads/mock/:uploadId stands in for object storage when no
// bucket is configured. The body is discarded.
func (h *Handler) MockUpload(c *gin.Context) {
	id, ok := uuidParam(c, "uploadId")
	if !ok {
		return
	}
	n, _ := io.Copy(io.Discard, http.MaxBytesReader(c.Writer, c.Request.Body, 10<<20))
	logrus.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"upload_id":  id,
		"bytes":      n,
	}).Info("Mock upload received")
	c.Status(http.StatusOK)
}
