package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"voice-avatar/pkg/models"
)

// ErrToolNotFound возвращается, если исполняемый файл ffmpeg/ffprobe не найден
var ErrToolNotFound = errors.New("инструмент перекодирования не найден")

// максимальный размер stderr ffmpeg, попадающий в текст ошибки
const stderrTail = 2048

// Transcoder перекодирует аудиофайл в другой формат
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string, opts models.TranscodeOptions) error
}

// FFmpegConfig пути к бинарникам и таймаут одного запуска
type FFmpegConfig struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
}

// FFmpegTranscoder перекодирует аудио внешним процессом ffmpeg
type FFmpegTranscoder struct {
	logger *zap.Logger
	cfg    FFmpegConfig
}

// NewFFmpegTranscoder создает новый транскодер
func NewFFmpegTranscoder(logger *zap.Logger, cfg FFmpegConfig) *FFmpegTranscoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return &FFmpegTranscoder{
		logger: logger,
		cfg:    cfg,
	}
}

// Transcode запускает ffmpeg и ждет его завершения
func (t *FFmpegTranscoder) Transcode(ctx context.Context, inputPath, outputPath string, opts models.TranscodeOptions) error {
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	args := BuildArgs(inputPath, outputPath, opts)

	t.logger.Debug("запуск ffmpeg",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Strings("args", args))

	start := time.Now()

	cmd := exec.CommandContext(ctx, t.cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s: %v", ErrToolNotFound, t.cfg.FFmpegPath, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg прерван: %w", ctxErr)
		}
		t.logger.Error("ошибка выполнения ffmpeg",
			zap.Error(err),
			zap.String("stderr", tail(stderr.String())))
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String()))
	}

	t.logger.Info("аудио перекодировано",
		zap.String("output", outputPath),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// CheckTools проверяет, что ffmpeg и ffprobe доступны
func (t *FFmpegTranscoder) CheckTools(ctx context.Context) error {
	var errs []error
	for _, tool := range []string{t.cfg.FFmpegPath, t.cfg.FFprobePath} {
		output, err := exec.CommandContext(ctx, tool, "-version").Output()
		if err != nil {
			if isNotFound(err) {
				err = fmt.Errorf("%w: %s", ErrToolNotFound, tool)
			}
			errs = append(errs, err)
			continue
		}

		version, _, _ := strings.Cut(string(output), "\n")
		t.logger.Debug("версия инструмента", zap.String("tool", tool), zap.String("version", version))
	}

	return errors.Join(errs...)
}

// BuildArgs собирает аргументы ffmpeg: формат, битрейт, каналы, частота
func BuildArgs(inputPath, outputPath string, opts models.TranscodeOptions) []string {
	args := []string{"-y", "-i", inputPath}

	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}
	if opts.Bitrate != "" {
		args = append(args, "-b:a", opts.Bitrate)
	}
	if opts.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(opts.Channels))
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}

	return append(args, outputPath)
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		return s[len(s)-stderrTail:]
	}
	return s
}
