package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voice-avatar/internal/assets"
	"voice-avatar/internal/audio"
	"voice-avatar/internal/lipsync"
	"voice-avatar/pkg/models"
)

type fakeSynthesizer struct {
	mu     sync.Mutex
	voices []string
	texts  []string
	err    error
}

func (f *fakeSynthesizer) SynthesizeToFile(_ context.Context, voiceID, text, outputPath string) error {
	f.mu.Lock()
	f.voices = append(f.voices, voiceID)
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("ID3"), 0o644)
}

func (f *fakeSynthesizer) ListVoices(context.Context) (json.RawMessage, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSynthesizer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

type transcodeCall struct {
	in, out string
	opts    models.TranscodeOptions
}

type fakeTranscoder struct {
	mu    sync.Mutex
	calls []transcodeCall
	err   error
}

func (f *fakeTranscoder) Transcode(_ context.Context, in, out string, opts models.TranscodeOptions) error {
	f.mu.Lock()
	f.calls = append(f.calls, transcodeCall{in: in, out: out, opts: opts})
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("RIFF"), 0o644)
}

func newTestService(t *testing.T, synth *fakeSynthesizer, transcoder *fakeTranscoder) (*Service, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "audios")
	store := assets.NewStore(dir, "/audios")
	return NewService(store, synth, transcoder, lipsync.NewPlaceholderAnalyzer(), "voice-1", zap.NewNop(), nil), dir
}

var chatAudioURL = regexp.MustCompile(`^/audios/message_\d+\.mp3$`)

func TestChat_Success(t *testing.T) {
	synth := &fakeSynthesizer{}
	transcoder := &fakeTranscoder{}
	svc, dir := newTestService(t, synth, transcoder)

	resp, err := svc.Chat(context.Background(), "Hi")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Hi", resp.Message)
	assert.Regexp(t, chatAudioURL, resp.Audio)
	assert.FileExists(t, filepath.Join(dir, filepath.Base(resp.Audio)))

	require.NotNil(t, resp.LipSync)
	assert.Empty(t, resp.LipSync.MouthCues)
	assert.NotNil(t, resp.LipSync.MouthCues)
	assert.Zero(t, resp.LipSync.Metadata.Duration)

	require.Len(t, transcoder.calls, 1)
	call := transcoder.calls[0]
	assert.Equal(t, models.TranscodeOptions{Format: "wav"}, call.opts)
	assert.Equal(t, call.out, resp.LipSync.Metadata.SoundFile)
	assert.Equal(t, ".wav", filepath.Ext(call.out))
	assert.Equal(t, []string{"voice-1"}, synth.voices)
}

func TestChat_Validation(t *testing.T) {
	synth := &fakeSynthesizer{}
	transcoder := &fakeTranscoder{}
	svc, _ := newTestService(t, synth, transcoder)

	for _, message := range []string{"", "   "} {
		_, err := svc.Chat(context.Background(), message)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "message", verr.Field)
	}

	assert.Zero(t, synth.count())
	assert.Empty(t, transcoder.calls)
}

func TestChat_ProviderError(t *testing.T) {
	synth := &fakeSynthesizer{err: errors.New("status 401")}
	transcoder := &fakeTranscoder{}
	svc, _ := newTestService(t, synth, transcoder)

	_, err := svc.Chat(context.Background(), "Hi")

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "status 401")
	assert.Empty(t, transcoder.calls)
}

func TestChat_TranscodeError(t *testing.T) {
	transcoder := &fakeTranscoder{err: audio.ErrQueueFull}
	svc, _ := newTestService(t, &fakeSynthesizer{}, transcoder)

	_, err := svc.Chat(context.Background(), "Hi")

	var terr *TranscodeError
	require.True(t, errors.As(err, &terr))
	assert.True(t, errors.Is(err, audio.ErrQueueFull))
}

func TestConvert_MP3Only(t *testing.T) {
	transcoder := &fakeTranscoder{}
	svc, _ := newTestService(t, &fakeSynthesizer{}, transcoder)

	for _, opts := range []*models.TranscodeOptions{nil, {}, {Format: "ogg", Bitrate: "64k"}} {
		resp, err := svc.Convert(context.Background(), "Hello", opts)
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Regexp(t, `^/audios/tts_\d+\.mp3$`, resp.MP3URL)
		assert.Empty(t, resp.WAVURL)
	}

	assert.Empty(t, transcoder.calls)
}

func TestConvert_WAVDefaults(t *testing.T) {
	transcoder := &fakeTranscoder{}
	svc, _ := newTestService(t, &fakeSynthesizer{}, transcoder)

	resp, err := svc.Convert(context.Background(), "Hello", &models.TranscodeOptions{Format: "wav"})
	require.NoError(t, err)

	assert.Regexp(t, `^/audios/tts_\d+\.wav$`, resp.WAVURL)
	assert.Equal(t, resp.MP3URL[:len(resp.MP3URL)-4], resp.WAVURL[:len(resp.WAVURL)-4])

	require.Len(t, transcoder.calls, 1)
	assert.Equal(t, models.TranscodeOptions{
		Format:     "wav",
		Bitrate:    "192k",
		Channels:   2,
		SampleRate: 44100,
	}, transcoder.calls[0].opts)
}

func TestConvert_WAVOverrides(t *testing.T) {
	transcoder := &fakeTranscoder{}
	svc, _ := newTestService(t, &fakeSynthesizer{}, transcoder)

	_, err := svc.Convert(context.Background(), "Hello", &models.TranscodeOptions{Format: "wav", Channels: 1, SampleRate: 16000})
	require.NoError(t, err)

	require.Len(t, transcoder.calls, 1)
	assert.Equal(t, models.TranscodeOptions{
		Format:     "wav",
		Bitrate:    "192k",
		Channels:   1,
		SampleRate: 16000,
	}, transcoder.calls[0].opts)
}

func TestConvert_Validation(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc, _ := newTestService(t, synth, &fakeTranscoder{})

	_, err := svc.Convert(context.Background(), "", &models.TranscodeOptions{Format: "wav"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "text", verr.Field)
	assert.Zero(t, synth.count())
}

func TestService_FilesystemError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	synth := &fakeSynthesizer{}
	store := assets.NewStore(filepath.Join(file, "audios"), "/audios")
	svc := NewService(store, synth, &fakeTranscoder{}, lipsync.NewPlaceholderAnalyzer(), "voice-1", zap.NewNop(), nil)

	_, err := svc.Convert(context.Background(), "Hello", nil)

	var ferr *FilesystemError
	require.True(t, errors.As(err, &ferr))
	assert.Zero(t, synth.count())
}

func TestService_ConcurrentRequestsGetDistinctFiles(t *testing.T) {
	synth := &fakeSynthesizer{}
	svc, _ := newTestService(t, synth, &fakeTranscoder{})

	const n = 20
	urls := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.Chat(context.Background(), fmt.Sprintf("message %d", i))
			if assert.NoError(t, err) {
				urls <- resp.Audio
			}
		}(i)
	}
	wg.Wait()
	close(urls)

	seen := make(map[string]bool)
	for url := range urls {
		assert.False(t, seen[url], "повторный файл %s", url)
		seen[url] = true
	}
	assert.Len(t, seen, n)
}
