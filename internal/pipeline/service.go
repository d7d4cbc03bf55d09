package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"go.uber.org/zap"

	"voice-avatar/internal/assets"
	"voice-avatar/internal/audio"
	"voice-avatar/internal/lipsync"
	"voice-avatar/internal/metrics"
	"voice-avatar/internal/tts"
	"voice-avatar/pkg/models"
)

// Режимы работы пайплайна
const (
	ModeChat = "chat"
	ModeTTS  = "tts"
)

// Значения по умолчанию для WAV в режиме tts
const (
	DefaultBitrate    = "192k"
	DefaultChannels   = 2
	DefaultSampleRate = 44100
)

// Service превращает текст в аудиофайлы: синтез MP3, перекодирование в WAV, липсинк
type Service struct {
	store       *assets.Store
	synthesizer tts.Synthesizer
	transcoder  audio.Transcoder
	analyzer    lipsync.Analyzer
	voiceID     string
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewService создает новый сервис пайплайна
func NewService(
	store *assets.Store,
	synthesizer tts.Synthesizer,
	transcoder audio.Transcoder,
	analyzer lipsync.Analyzer,
	voiceID string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:       store,
		synthesizer: synthesizer,
		transcoder:  transcoder,
		analyzer:    analyzer,
		voiceID:     voiceID,
		logger:      logger,
		metrics:     m,
	}
}

// Chat озвучивает сообщение, перекодирует его в WAV и добавляет разметку липсинка
func (s *Service) Chat(ctx context.Context, message string) (resp *models.ChatResponse, err error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Field: "message"}
	}

	start := time.Now()
	defer func() { s.metrics.RecordPipeline(ModeChat, err == nil, time.Since(start).Seconds()) }()

	asset, err := s.synthesize(ctx, assets.KindMessage, message)
	if err != nil {
		return nil, err
	}

	// Формат задается явно, остальные параметры остаются по умолчанию ffmpeg
	if err := s.transcode(ctx, asset, models.TranscodeOptions{Format: models.FormatWAV}); err != nil {
		return nil, err
	}

	lipSync, err := s.analyzer.Analyze(ctx, asset.WAVPath)
	if err != nil {
		return nil, err
	}

	s.logger.Info("сообщение озвучено",
		zap.String("id", asset.ID),
		zap.String("audio", asset.MP3URL),
		zap.Duration("duration", time.Since(start)))

	return &models.ChatResponse{
		Success: true,
		Message: message,
		Audio:   asset.MP3URL,
		LipSync: lipSync,
	}, nil
}

// Convert озвучивает текст; WAV создается только если opts.Format == "wav"
func (s *Service) Convert(ctx context.Context, text string, opts *models.TranscodeOptions) (resp *models.ConvertResponse, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "text"}
	}

	start := time.Now()
	defer func() { s.metrics.RecordPipeline(ModeTTS, err == nil, time.Since(start).Seconds()) }()

	asset, err := s.synthesize(ctx, assets.KindTTS, text)
	if err != nil {
		return nil, err
	}

	resp = &models.ConvertResponse{
		Success: true,
		MP3URL:  asset.MP3URL,
	}

	if opts != nil && opts.Format == models.FormatWAV {
		if err := s.transcode(ctx, asset, withDefaults(*opts)); err != nil {
			return nil, err
		}
		resp.WAVURL = asset.WAVURL
	}

	s.logger.Info("текст озвучен",
		zap.String("id", asset.ID),
		zap.String("mp3", resp.MP3URL),
		zap.Bool("wav", resp.WAVURL != ""),
		zap.Duration("duration", time.Since(start)))

	return resp, nil
}

// synthesize выделяет имя файла и записывает в него MP3
func (s *Service) synthesize(ctx context.Context, kind, text string) (models.AudioAsset, error) {
	if err := s.store.EnsureDir(); err != nil {
		return models.AudioAsset{}, &FilesystemError{Path: s.store.Dir(), Err: err}
	}

	asset := s.store.NewAsset(kind)

	step := time.Now()
	err := s.synthesizer.SynthesizeToFile(ctx, s.voiceID, text, asset.MP3Path)
	s.metrics.ObserveStep("synthesize", time.Since(step).Seconds())
	if err != nil {
		s.logger.Error("ошибка синтеза речи", zap.String("id", asset.ID), zap.Error(err))

		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return asset, &FilesystemError{Path: asset.MP3Path, Err: err}
		}
		return asset, &ProviderError{Err: err}
	}

	return asset, nil
}

func (s *Service) transcode(ctx context.Context, asset models.AudioAsset, opts models.TranscodeOptions) error {
	step := time.Now()
	err := s.transcoder.Transcode(ctx, asset.MP3Path, asset.WAVPath, opts)
	s.metrics.ObserveStep("transcode", time.Since(step).Seconds())
	if err != nil {
		s.logger.Error("ошибка перекодирования", zap.String("id", asset.ID), zap.Error(err))
		return &TranscodeError{Err: err}
	}
	return nil
}

// withDefaults заполняет незаданные параметры WAV значениями по умолчанию
func withDefaults(opts models.TranscodeOptions) models.TranscodeOptions {
	if opts.Bitrate == "" {
		opts.Bitrate = DefaultBitrate
	}
	if opts.Channels == 0 {
		opts.Channels = DefaultChannels
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	return opts
}
