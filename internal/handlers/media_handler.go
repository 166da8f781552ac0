package handlers

import (
	"bufio"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/httpx"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/service"
	"github.com/oginakoko/gaphy-trade-hive-sub001/internal/storage"
)

type MediaHandler struct {
	s3            *storage.S3Storage
	serverService *service.ServerService
}

func NewMediaHandler(s3 *storage.S3Storage, serverService *service.ServerService) *MediaHandler {
	return &MediaHandler{s3: s3, serverService: serverService}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

// maxAttachmentSize caps uploads at 25 MiB.
const maxAttachmentSize = 25 << 20

// UploadAttachment stores a file scoped to a server. Members only; the
// returned media_key goes into the message that references it.
func (h *MediaHandler) UploadAttachment(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	isMember, err := h.serverService.IsMember(serverID, userID)
	if err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	if !isMember {
		return httpx.Forbidden(c, "forbidden", "Not a member of this server")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "File is required")
	}
	if fileHeader.Size > maxAttachmentSize {
		return httpx.Error(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "File exceeds size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	defer file.Close()

	// Object name is random; the original name survives only as an
	// extension hint.
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if len(ext) > 10 {
		ext = ""
	}
	key := storage.AttachmentKey(serverID, uuid.NewString()+ext)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := h.s3.PutObject(c.Context(), key, file, fileHeader.Size, contentType); err != nil {
		log.Printf("[media] attachment put error key=%q err=%v", key, err)
		return httpx.Internal(c, "upload_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"media_key": key,
	})
}

// GetAttachment streams a server-scoped attachment to a member.
func (h *MediaHandler) GetAttachment(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}

	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	serverID, ok := serverIDParam(c)
	if !ok {
		return nil
	}

	isMember, err := h.serverService.IsMember(serverID, userID)
	if err != nil {
		return httpx.Internal(c, "media_fetch_failed")
	}
	if !isMember {
		return httpx.Forbidden(c, "forbidden", "Not a member of this server")
	}

	filename, err := storage.SafeJoinMediaPath("", strings.TrimSpace(c.Params("*")))
	if err != nil {
		return httpx.Error(c, fiber.StatusNotFound, "not_found", "Not found")
	}
	key := storage.AttachmentKey(serverID, filename)

	obj, st, err := h.s3.GetObject(c.Context(), key)
	if err != nil {
		log.Printf("[media] attachment get error key=%q err=%v", key, err)
		// Hide details.
		var resp minio.ErrorResponse
		if errors.As(err, &resp) {
			if resp.StatusCode == 404 || resp.Code == "NoSuchKey" || resp.Code == "NoSuchObject" {
				return httpx.Error(c, fiber.StatusNotFound, "not_found", "Not found")
			}
		}
		return httpx.Internal(c, "media_fetch_failed")
	}

	etag := st.ETag
	if etag != "" {
		c.Set("ETag", "\""+etag+"\"")
		if inm := normalizeETag(c.Get("If-None-Match")); inm != "" && inm == normalizeETag(etag) {
			_ = obj.Close()
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	if !st.LastModified.IsZero() {
		c.Set("Last-Modified", st.LastModified.UTC().Format(time.RFC1123))
	}

	c.Set("Cache-Control", "private, max-age=31536000, immutable")
	if st.ContentType != "" {
		c.Type(st.ContentType)
	} else {
		c.Type("application/octet-stream")
	}
	if st.Size > 0 {
		c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	}

	// Stream object while capturing any mid-stream errors.
	// (Fiber versions vary; use underlying fasthttp stream writer.)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = obj.Close()
		}()

		n, copyErr := io.Copy(w, obj)
		flushErr := w.Flush()

		if copyErr != nil {
			log.Printf("[media] attachment stream error key=%q copied=%d err=%v", key, n, copyErr)
			return
		}
		if flushErr != nil {
			log.Printf("[media] attachment stream flush error key=%q copied=%d err=%v", key, n, flushErr)
			return
		}
	})
	return nil
}
