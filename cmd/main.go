package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-avatar/internal/assets"
	"voice-avatar/internal/audio"
	"voice-avatar/internal/config"
	"voice-avatar/internal/lipsync"
	"voice-avatar/internal/metrics"
	"voice-avatar/internal/pipeline"
	"voice-avatar/internal/scheduler"
	"voice-avatar/internal/server"
	"voice-avatar/internal/tts"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	logger, err := initLogger(&cfg.App)
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("запуск voice-avatar",
		zap.String("env", cfg.App.Env),
		zap.String("audio_dir", cfg.Audio.Dir))

	// Завершение по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализация метрик
	metricsSystem := metrics.New(logger)
	metricsHandler := metrics.NewHandler(metricsSystem, logger)

	// Инициализация TTS сервиса
	ttsService := tts.NewElevenLabsService(logger, tts.ElevenLabsConfig{
		APIKey:          cfg.ElevenLabs.APIKey,
		BaseURL:         cfg.ElevenLabs.BaseURL,
		ModelID:         cfg.ElevenLabs.ModelID,
		DefaultVoiceID:  cfg.ElevenLabs.VoiceID,
		Stability:       cfg.ElevenLabs.Stability,
		SimilarityBoost: cfg.ElevenLabs.SimilarityBoost,
		Timeout:         cfg.ElevenLabs.Timeout,
	})
	logger.Info("ElevenLabs сервис инициализирован",
		zap.String("model", cfg.ElevenLabs.ModelID),
		zap.String("voice_id", cfg.ElevenLabs.VoiceID))

	// Инициализация ffmpeg и пула перекодирования
	ffmpeg := audio.NewFFmpegTranscoder(logger, audio.FFmpegConfig{
		FFmpegPath:  cfg.Transcode.FFmpegPath,
		FFprobePath: cfg.Transcode.FFprobePath,
		Timeout:     cfg.Transcode.Timeout,
	})
	if err := ffmpeg.CheckTools(ctx); err != nil {
		logger.Warn("⚠️ ffmpeg недоступен, перекодирование будет завершаться ошибкой", zap.Error(err))
	}

	transcodePool, err := audio.NewPool(ffmpeg, cfg.Transcode.Workers, cfg.Transcode.QueueSize, logger)
	if err != nil {
		logger.Fatal("ошибка создания пула перекодирования", zap.Error(err))
	}
	metricsSystem.RegisterQueue(transcodePool)

	store := assets.NewStore(cfg.Audio.Dir, cfg.Audio.URLPrefix)

	// Генерация приветствий до открытия порта
	warmer := assets.NewWarmer(store, ttsService, transcodePool, cfg.ElevenLabs.VoiceID, logger, metricsSystem)
	if _, err := warmer.WarmUp(ctx); err != nil {
		logger.Error("ошибка подготовки приветствий, продолжаем запуск", zap.Error(err))
	}

	pipelineService := pipeline.NewService(
		store,
		ttsService,
		transcodePool,
		lipsync.NewPlaceholderAnalyzer(),
		cfg.ElevenLabs.VoiceID,
		logger,
		metricsSystem,
	)

	// Инициализация планировщика задач
	taskScheduler := scheduler.NewScheduler(logger)
	taskScheduler.AddJob(assets.NewJanitor(store.Dir(), cfg.Cleanup.MaxAge, logger, metricsSystem))

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(
		server.NewHandler(pipelineService, ttsService, logger),
		metricsHandler,
		store.Dir(),
		logger,
	)

	httpServer := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Очистка старых файлов
	g.Go(func() error {
		taskScheduler.Start(gctx, cfg.Cleanup.Interval)
		return nil
	})

	g.Go(func() error {
		logger.Info("🚀 HTTP сервер запущен",
			zap.String("address", httpServer.Addr),
			zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал завершения, начинаем graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ошибка при остановке HTTP сервера: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("приложение завершилось с ошибкой", zap.Error(err))
	}

	if err := transcodePool.Close(shutdownTimeout); err != nil {
		logger.Warn("пул перекодирования остановлен не полностью", zap.Error(err))
	}

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер
func initLogger(app *config.AppConfig) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if app.IsProduction() {
		config = zap.NewProductionConfig()
	}
	config.Level = app.GetLogLevel()
	config.OutputPaths = []string{"stdout", "logs/app.log"}
	config.ErrorOutputPaths = []string{"stderr", "logs/error.log"}

	// Создаем директорию для логов если её нет
	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
	}

	return config.Build()
}
