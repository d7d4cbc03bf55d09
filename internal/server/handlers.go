package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"voice-avatar/internal/audio"
	"voice-avatar/internal/pipeline"
	"voice-avatar/pkg/models"
)

// Pipeline операции озвучивания, доступные по HTTP
type Pipeline interface {
	Chat(ctx context.Context, message string) (*models.ChatResponse, error)
	Convert(ctx context.Context, text string, opts *models.TranscodeOptions) (*models.ConvertResponse, error)
}

// VoiceCatalog источник списка голосов
type VoiceCatalog interface {
	ListVoices(ctx context.Context) (json.RawMessage, error)
}

// Handler обрабатывает запросы к /chat и /tts
type Handler struct {
	pipeline Pipeline
	voices   VoiceCatalog
	logger   *zap.Logger
}

// NewHandler создает новый обработчик
func NewHandler(p Pipeline, voices VoiceCatalog, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: p,
		voices:   voices,
		logger:   logger,
	}
}

// Chat POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.badRequest(c, err, "message", "Message is required")
		return
	}

	resp, err := h.pipeline.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.fail(c, err, "Message is required", "Failed to process chat message")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConvertText POST /tts/convert
func (h *Handler) ConvertText(c *gin.Context) {
	var req models.ConvertRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		h.badRequest(c, err, "text", "Text is required")
		return
	}

	resp, err := h.pipeline.Convert(c.Request.Context(), req.Text, req.Options)
	if err != nil {
		h.fail(c, err, "Text is required", "Failed to convert text to speech")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Voices GET /tts/voices
func (h *Handler) Voices(c *gin.Context) {
	voices, err := h.voices.ListVoices(c.Request.Context())
	if err != nil {
		h.logger.Error("ошибка получения списка голосов", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to fetch voices",
			Message: err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", voices)
}

// badRequest отвечает на тело, которое не удалось разобрать.
// Если обязательное поле в теле есть, причина передается в message.
func (h *Handler) badRequest(c *gin.Context, err error, field, required string) {
	h.logger.Debug("некорректное тело запроса", zap.String("path", c.FullPath()), zap.Error(err))

	var fields map[string]json.RawMessage
	if c.ShouldBindBodyWith(&fields, binding.JSON) == nil {
		var value string
		if json.Unmarshal(fields[field], &value) == nil && strings.TrimSpace(value) != "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid request body",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: required})
}

// fail отвечает ошибкой пайплайна: 400 для некорректного ввода,
// 503 при переполненной очереди перекодирования, иначе 500
func (h *Handler) fail(c *gin.Context, err error, required, failure string) {
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: required})
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, audio.ErrQueueFull) {
		status = http.StatusServiceUnavailable
	}

	h.logger.Error("ошибка обработки запроса",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err))

	c.JSON(status, models.ErrorResponse{
		Error:   failure,
		Message: err.Error(),
	})
}
