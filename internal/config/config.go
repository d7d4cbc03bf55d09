package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// DefaultVoiceID голос ElevenLabs по умолчанию
const DefaultVoiceID = "kgG7dCoKCfLehAPWkJOE"

// Config содержит все конфигурационные параметры приложения
type Config struct {
	ElevenLabs ElevenLabsConfig
	Audio      AudioConfig
	Transcode  TranscodeConfig
	Cleanup    CleanupConfig
	App        AppConfig
}

// ElevenLabsConfig содержит настройки провайдера синтеза речи
type ElevenLabsConfig struct {
	APIKey          string
	BaseURL         string
	ModelID         string
	VoiceID         string
	Stability       float64
	SimilarityBoost float64
	Timeout         time.Duration
}

// AudioConfig содержит настройки каталога с аудиофайлами
type AudioConfig struct {
	Dir       string
	URLPrefix string
}

// TranscodeConfig содержит настройки ffmpeg и пула перекодирования
type TranscodeConfig struct {
	FFmpegPath  string
	FFprobePath string
	Workers     int
	QueueSize   int
	Timeout     time.Duration
}

// CleanupConfig содержит настройки очистки старых файлов
type CleanupConfig struct {
	Interval time.Duration
	MaxAge   time.Duration
}

// AppConfig содержит общие настройки приложения
type AppConfig struct {
	Env      string
	LogLevel string
	Port     int
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// ElevenLabs
	cfg.ElevenLabs.APIKey = os.Getenv("ELEVEN_LABS_API_KEY")
	cfg.ElevenLabs.BaseURL = getEnvDefault("ELEVEN_LABS_BASE_URL", "https://api.elevenlabs.io/v1")
	cfg.ElevenLabs.ModelID = getEnvDefault("ELEVEN_LABS_MODEL_ID", "eleven_multilingual_v2")
	cfg.ElevenLabs.VoiceID = getEnvDefault("VOICE_ID", DefaultVoiceID)
	cfg.ElevenLabs.Stability = getEnvFloatDefault("ELEVEN_LABS_STABILITY", 0.5)
	cfg.ElevenLabs.SimilarityBoost = getEnvFloatDefault("ELEVEN_LABS_SIMILARITY_BOOST", 0.75)
	cfg.ElevenLabs.Timeout = getEnvDurationDefault("ELEVEN_LABS_TIMEOUT", 60*time.Second)

	// Audio
	cfg.Audio.Dir = getEnvDefault("AUDIO_DIR", "audios")
	cfg.Audio.URLPrefix = "/audios"

	// Transcode
	cfg.Transcode.FFmpegPath = getEnvDefault("FFMPEG_PATH", "ffmpeg")
	cfg.Transcode.FFprobePath = getEnvDefault("FFPROBE_PATH", "ffprobe")
	cfg.Transcode.Workers = getEnvIntDefault("TRANSCODE_WORKERS", 4)
	cfg.Transcode.QueueSize = getEnvIntDefault("TRANSCODE_QUEUE", 32)
	cfg.Transcode.Timeout = getEnvDurationDefault("TRANSCODE_TIMEOUT", 2*time.Minute)

	// Cleanup
	cfg.Cleanup.Interval = getEnvDurationDefault("CLEANUP_INTERVAL", 6*time.Hour)
	cfg.Cleanup.MaxAge = getEnvDurationDefault("CLEANUP_MAX_AGE", 24*time.Hour)

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("PORT", 3001)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.ElevenLabs.APIKey == "" {
		return fmt.Errorf("ELEVEN_LABS_API_KEY не установлен")
	}
	if config.Audio.Dir == "" {
		return fmt.Errorf("AUDIO_DIR не может быть пустым")
	}
	if config.Transcode.Workers <= 0 {
		return fmt.Errorf("TRANSCODE_WORKERS должен быть больше нуля")
	}
	if config.Transcode.QueueSize <= 0 {
		return fmt.Errorf("TRANSCODE_QUEUE должен быть больше нуля")
	}
	if config.Transcode.Timeout <= 0 || config.ElevenLabs.Timeout <= 0 {
		return fmt.Errorf("таймауты должны быть положительными")
	}
	if config.Cleanup.Interval <= 0 || config.Cleanup.MaxAge <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL и CLEANUP_MAX_AGE должны быть положительными")
	}

	return nil
}

// Addr возвращает адрес для HTTP сервера
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
