package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxUploadBytes = 20 << 20

// UploadRequestFile accepts a multipart file upload from an authenticated
// user and stores it through the configured storage backend.
func (h *HTTPHandler) UploadRequestFile(c *gin.Context) {
	if h.storage == nil {
		ServiceUnavailable(c, "storage not available")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "file is required")
		return
	}
	if strings.TrimSpace(fileHeader.Filename) == "" {
		BadRequest(c, ErrCodeInvalidRequest, "invalid file name")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		BadRequest(c, ErrCodeInvalidRequest, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded file")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeUploadFailed, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded file")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeUploadFailed, "failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		BadRequest(c, ErrCodeInvalidRequest, "file too large")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	key, err := h.storage.Save(ctx, fileHeader.Filename, data)
	if err != nil {
		logrus.WithError(err).Error("failed to store uploaded file")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeUploadFailed, "failed to store upload")
		return
	}

	principal := CurrentPrincipal(c)
	if principal != nil {
		logrus.WithFields(logrus.Fields{
			"username": principal.Username,
			"key":      key,
		}).Info("stored uploaded file")
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": key,
		"url":      h.publicURL(key),
	})
}

func (h *HTTPHandler) publicURL(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(trimmed, "/"))
}
