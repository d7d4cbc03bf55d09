package assets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"voice-avatar/internal/audio"
	"voice-avatar/internal/metrics"
	"voice-avatar/internal/tts"
	"voice-avatar/pkg/models"
)

// DefaultGreetings приветствия, которые генерируются при старте
var DefaultGreetings = []string{
	"Hello! I'm your virtual girlfriend. How are you today?",
	"Welcome back! I've missed you.",
	"Hi there! It's so nice to see you again.",
	"Hey! I'm really happy you're here.",
}

// greetingOptions параметры WAV для приветствий
var greetingOptions = models.TranscodeOptions{
	Format:     models.FormatWAV,
	Channels:   2,
	SampleRate: 44100,
}

// WarmUpReport итоги подготовки приветствий
type WarmUpReport struct {
	Generated int
	Skipped   int
	Failed    int
}

// Warmer генерирует недостающие приветственные аудио
type Warmer struct {
	store       *Store
	synthesizer tts.Synthesizer
	transcoder  audio.Transcoder
	voiceID     string
	greetings   []string
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewWarmer создает генератор приветствий со стандартным набором фраз
func NewWarmer(
	store *Store,
	synthesizer tts.Synthesizer,
	transcoder audio.Transcoder,
	voiceID string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Warmer {
	return &Warmer{
		store:       store,
		synthesizer: synthesizer,
		transcoder:  transcoder,
		voiceID:     voiceID,
		greetings:   DefaultGreetings,
		logger:      logger,
		metrics:     m,
	}
}

// WarmUp создает каталог и генерирует приветствия, которых еще нет.
// Ошибка одного приветствия не прерывает обработку остальных.
func (w *Warmer) WarmUp(ctx context.Context) (WarmUpReport, error) {
	var report WarmUpReport

	if err := w.store.EnsureDir(); err != nil {
		return report, err
	}

	start := time.Now()
	w.logger.Info("🔊 подготовка приветственных аудио", zap.Int("count", len(w.greetings)))

	for i, text := range w.greetings {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		asset := w.store.GreetingAsset(i)
		if exists(asset.MP3Path) && exists(asset.WAVPath) {
			w.logger.Debug("приветствие уже существует, пропускаем", zap.Int("index", i))
			report.Skipped++
			w.metrics.RecordGreeting("skipped")
			continue
		}

		if err := w.generate(ctx, text, asset); err != nil {
			w.logger.Error("ошибка генерации приветствия",
				zap.Int("index", i),
				zap.Error(err))
			report.Failed++
			w.metrics.RecordGreeting("failed")
			continue
		}

		w.logger.Info("приветствие сгенерировано",
			zap.Int("index", i),
			zap.String("file", asset.MP3URL))
		report.Generated++
		w.metrics.RecordGreeting("generated")
	}

	w.logger.Info("✅ подготовка приветствий завершена",
		zap.Int("generated", report.Generated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", time.Since(start)))

	return report, nil
}

func (w *Warmer) generate(ctx context.Context, text string, asset models.AudioAsset) error {
	if err := w.synthesizer.SynthesizeToFile(ctx, w.voiceID, text, asset.MP3Path); err != nil {
		return fmt.Errorf("синтез речи: %w", err)
	}
	if err := w.transcoder.Transcode(ctx, asset.MP3Path, asset.WAVPath, greetingOptions); err != nil {
		return fmt.Errorf("перекодирование в wav: %w", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
