package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voice-avatar/internal/metrics"
)

// NewRouter собирает HTTP маршруты приложения.
// Файлы из audioDir раздаются по адресу /audios.
func NewRouter(h *Handler, mh *metrics.Handler, audioDir string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		RequestID(),
		Logger(logger),
		Recovery(logger),
		CORS(),
	)

	r.Static("/audios", audioDir)

	r.POST("/chat", h.Chat)

	ttsGroup := r.Group("/tts")
	{
		ttsGroup.POST("/convert", h.ConvertText)
		ttsGroup.GET("/voices", h.Voices)
	}

	r.GET("/health", mh.HealthHandler)
	r.GET("/metrics", mh.MetricsHandler)

	return r
}
