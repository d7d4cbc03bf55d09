package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voice-avatar/pkg/models"
)

// writeFakeFFmpeg создает скрипт, который записывает аргументы в argsFile
// и создает выходной файл (последний аргумент)
func writeFakeFFmpeg(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		opts models.TranscodeOptions
		want []string
	}{
		{
			name: "без параметров",
			opts: models.TranscodeOptions{},
			want: []string{"-y", "-i", "in.mp3", "out.wav"},
		},
		{
			name: "только формат",
			opts: models.TranscodeOptions{Format: "wav"},
			want: []string{"-y", "-i", "in.mp3", "-f", "wav", "out.wav"},
		},
		{
			name: "все параметры по порядку",
			opts: models.TranscodeOptions{Format: "wav", Bitrate: "192k", Channels: 2, SampleRate: 44100},
			want: []string{"-y", "-i", "in.mp3", "-f", "wav", "-b:a", "192k", "-ac", "2", "-ar", "44100", "out.wav"},
		},
		{
			name: "частота без формата",
			opts: models.TranscodeOptions{SampleRate: 16000},
			want: []string{"-y", "-i", "in.mp3", "-ar", "16000", "out.wav"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildArgs("in.mp3", "out.wav", tt.opts))
		})
	}
}

func TestTranscode_Success(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	ffmpeg := writeFakeFFmpeg(t, dir, `echo "$@" > `+argsFile+`
for last; do :; done
echo RIFF > "$last"`)

	transcoder := NewFFmpegTranscoder(zap.NewNop(), FFmpegConfig{FFmpegPath: ffmpeg, Timeout: 5 * time.Second})

	out := filepath.Join(dir, "out.wav")
	err := transcoder.Transcode(context.Background(), "in.mp3", out, models.TranscodeOptions{Format: "wav", Channels: 2})
	require.NoError(t, err)

	_, err = os.Stat(out)
	assert.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-y -i in.mp3 -f wav -ac 2 "+out, strings.TrimSpace(string(args)))
}

func TestTranscode_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeFakeFFmpeg(t, dir, `echo "in.mp3: Invalid data found when processing input" >&2
exit 1`)

	transcoder := NewFFmpegTranscoder(zap.NewNop(), FFmpegConfig{FFmpegPath: ffmpeg})

	err := transcoder.Transcode(context.Background(), "in.mp3", filepath.Join(dir, "out.wav"), models.TranscodeOptions{Format: "wav"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found when processing input")
	assert.False(t, errors.Is(err, ErrToolNotFound))
}

func TestTranscode_ToolNotFound(t *testing.T) {
	transcoder := NewFFmpegTranscoder(zap.NewNop(), FFmpegConfig{
		FFmpegPath: filepath.Join(t.TempDir(), "missing-ffmpeg"),
	})

	err := transcoder.Transcode(context.Background(), "in.mp3", "out.wav", models.TranscodeOptions{})
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestTranscode_Timeout(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeFakeFFmpeg(t, dir, `exec sleep 5`)

	transcoder := NewFFmpegTranscoder(zap.NewNop(), FFmpegConfig{FFmpegPath: ffmpeg, Timeout: 100 * time.Millisecond})

	err := transcoder.Transcode(context.Background(), "in.mp3", filepath.Join(dir, "out.wav"), models.TranscodeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCheckTools(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeFakeFFmpeg(t, dir, `echo "ffmpeg version 6.1"`)

	ok := NewFFmpegTranscoder(zap.NewNop(), FFmpegConfig{FFmpegPath: ffmpeg, FFprobePath: ffmpeg})
	assert.NoError(t, ok.CheckTools(context.Background()))

	missing := NewFFmpegTranscoder(zap.NewNop(), FFmpegConfig{
		FFmpegPath:  ffmpeg,
		FFprobePath: filepath.Join(dir, "missing-ffprobe"),
	})
	assert.True(t, errors.Is(missing.CheckTools(context.Background()), ErrToolNotFound))
}
