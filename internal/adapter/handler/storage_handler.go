package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/errors"
	"github.com/call-manager-team/call-manager/internal/infrastructure/storage"
)

// Presigned URLs are short-lived; clients re-request when one expires.
const presignExpiry = 1 * time.Hour

// Storage handles direct object storage access for clients: presigned
// upload URLs for videos and presigned download URLs for stored objects
type Storage struct {
	minioClient *storage.MinIOClient
	logger      *zap.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(minioClient *storage.MinIOClient, logger *zap.Logger) *Storage {
	return &Storage{
		minioClient: minioClient,
		logger:      logger,
	}
}

// PresignUpload generates a presigned PUT URL for a new video object
// @Summary      Presign a video upload
// @Description  Generates a presigned upload URL; the returned object key is used to register an analysis
// @Tags         Storage
// @Produce      json
// @Security     BearerAuth
// @Param        filename  query     string  false  "Original file name (extension is preserved)"
// @Success      200       {object}  map[string]interface{}  "Upload URL and object key"
// @Failure      500       {object}  map[string]interface{}  "Failed to generate URL"
// @Router       /storage/uploads [post]
func (h *Storage) PresignUpload(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	ext := "mp4"
	if filename := c.QueryParam("filename"); filename != "" {
		for i := len(filename) - 1; i >= 0 && len(filename)-i <= 5; i-- {
			if filename[i] == '.' {
				ext = filename[i+1:]
				break
			}
		}
	}

	objectKey := fmt.Sprintf("videos/%s/%s.%s", userID, uuid.New(), ext)

	url, err := h.minioClient.GetUploadURL(ctx, objectKey, presignExpiry)
	if err != nil {
		h.logger.Error("failed to generate upload URL",
			zap.String("object_key", objectKey),
			zap.Error(err))
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"object_key": objectKey,
		"url":        url,
		"expires_in": int(presignExpiry.Seconds()),
	})
}

// PresignDownload generates a presigned GET URL for a stored object
// @Summary      Presign a download
// @Description  Generates a presigned download URL for an object in the bucket
// @Tags         Storage
// @Produce      json
// @Security     BearerAuth
// @Param        file  query  string  true  "Object key in bucket"
// @Success      200   {object}  map[string]interface{}  "Download URL"
// @Failure      400   {object}  map[string]interface{}  "Missing file parameter"
// @Failure      404   {object}  map[string]interface{}  "Object not found"
// @Router       /storage/downloads [get]
func (h *Storage) PresignDownload(c echo.Context) error {
	ctx := c.Request().Context()
	objectKey := c.QueryParam("file")

	if objectKey == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Missing file parameter"))
	}

	if _, err := h.minioClient.StatFile(ctx, objectKey); err != nil {
		h.logger.Warn("presign requested for missing object",
			zap.String("object_key", objectKey),
			zap.Error(err))
		return HandleError(h.logger, c, errors.ErrNotFound("object"))
	}

	url, err := h.minioClient.GetFileURL(ctx, objectKey, presignExpiry)
	if err != nil {
		h.logger.Error("failed to generate download URL",
			zap.String("object_key", objectKey),
			zap.Error(err))
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"file":       objectKey,
		"url":        url,
		"expires_in": int(presignExpiry.Seconds()),
	})
}
