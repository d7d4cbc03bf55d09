package tts

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrEmptyText возвращается, если текст для синтеза пустой
var ErrEmptyText = errors.New("текст для синтеза не может быть пустым")

// Synthesizer представляет интерфейс для Text-to-Speech провайдера
type Synthesizer interface {
	// SynthesizeToFile синтезирует речь и записывает MP3 в outputPath
	SynthesizeToFile(ctx context.Context, voiceID, text, outputPath string) error

	// ListVoices возвращает каталог голосов провайдера как есть
	ListVoices(ctx context.Context) (json.RawMessage, error)
}
