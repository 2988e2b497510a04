package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

// UploadHandler stores an uploaded attachment, persists the file message, and
// broadcasts it to the chat room over the same fan-out path as text messages.
type UploadHandler struct {
	dispatcher  *ws.Dispatcher
	messageRepo repositories.MessageRepository
	uploadDir   string
	audit       *telemetry.AuditEmitter
	log         zerolog.Logger
}

// NewUploadHandler builds an UploadHandler writing files under uploadDir.
func NewUploadHandler(dispatcher *ws.Dispatcher, messageRepo repositories.MessageRepository, uploadDir string, audit *telemetry.AuditEmitter, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		dispatcher:  dispatcher,
		messageRepo: messageRepo,
		uploadDir:   uploadDir,
		audit:       audit,
		log:         logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Upload accepts a multipart file, saves it with a collision-safe name, and
// records it as an image or file message depending on the detected MIME type.
// Chat membership is not checked here.
func (h *UploadHandler) Upload(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}
	userID := c.GetInt("userID")

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	ext := filepath.Ext(file.Filename)
	stem := strings.TrimSuffix(filepath.Base(file.Filename), ext)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	dst := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s%s", stem, suffix, ext))

	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.log.Error().Err(err).Str("path", dst).Msg("save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	msgType := models.MessageTypeFile
	if mtype, err := mimetype.DetectFile(dst); err == nil && strings.HasPrefix(mtype.String(), "image/") {
		msgType = models.MessageTypeImage
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), chatID, userID, msgType, nil, &dst)
	if err != nil {
		h.log.Error().Err(err).Int("chat_id", chatID).Msg("persist file message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store message"})
		return
	}

	url := "/uploads/" + filepath.Base(dst)
	if err := h.dispatcher.BroadcastMessage(c.Request.Context(), msg, file.Filename, url); err != nil {
		h.log.Warn().Err(err).Int("message_id", msg.ID).Msg("broadcast file message")
	}

	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("file %q uploaded to chat %d as message %d", file.Filename, chatID, msg.ID),
		requestIDFromContext(c), userIDFromContext(c))

	c.JSON(http.StatusCreated, gin.H{
		"message_id": msg.ID,
		"type":       msg.Type,
		"url":        url,
	})
}
