package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ElevenLabsConfig настройки клиента ElevenLabs
type ElevenLabsConfig struct {
	APIKey          string
	BaseURL         string
	ModelID         string
	DefaultVoiceID  string
	Stability       float64
	SimilarityBoost float64
	Timeout         time.Duration
}

// ElevenLabsService предоставляет синтез речи через ElevenLabs API
type ElevenLabsService struct {
	logger *zap.Logger
	cfg    ElevenLabsConfig
	client *http.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewElevenLabsService создает новый ElevenLabs TTS сервис
func NewElevenLabsService(logger *zap.Logger, cfg ElevenLabsConfig) *ElevenLabsService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &ElevenLabsService{
		logger: logger,
		cfg:    cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SynthesizeToFile преобразует текст в MP3 через ElevenLabs и сохраняет в файл
func (s *ElevenLabsService) SynthesizeToFile(ctx context.Context, voiceID, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if voiceID == "" {
		voiceID = s.cfg.DefaultVoiceID
	}

	s.logger.Info("🎵 генерируем аудио через ElevenLabs",
		zap.String("voice_id", voiceID),
		zap.Int("text_length", len(text)),
		zap.String("output", outputPath))

	body, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: s.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       s.cfg.Stability,
			SimilarityBoost: s.cfg.SimilarityBoost,
		},
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.cfg.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("неожиданный статус от ElevenLabs: %d, тело: %s", resp.StatusCode, respBody)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("ошибка создания файла: %w", err)
	}

	written, err := writeAudio(file, resp.Body)
	if err != nil {
		return err
	}

	s.logger.Info("🎵 аудио успешно сгенерировано",
		zap.String("output", outputPath),
		zap.Int64("audio_size", written))

	return nil
}

// ListVoices возвращает список голосов ElevenLabs
func (s *ElevenLabsService) ListVoices(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус от ElevenLabs: %d, тело: %s", resp.StatusCode, truncate(body, 4096))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("некорректный JSON в ответе ElevenLabs")
	}

	return json.RawMessage(body), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// writeAudio копирует аудио в w и закрывает его, возвращая ошибку закрытия
func writeAudio(w io.WriteCloser, r io.Reader) (int64, error) {
	written, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return written, fmt.Errorf("ошибка записи аудио данных: %w", err)
	}
	if err := w.Close(); err != nil {
		return written, fmt.Errorf("ошибка закрытия файла: %w", err)
	}
	return written, nil
}
