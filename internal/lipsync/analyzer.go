package lipsync

import (
	"context"

	"voice-avatar/pkg/models"
)

// Analyzer строит разметку положений рта по WAV файлу
type Analyzer interface {
	Analyze(ctx context.Context, wavPath string) (*models.LipSyncDescriptor, error)
}

// PlaceholderAnalyzer заглушка: всегда возвращает пустую разметку с нулевой длительностью.
// Файл не читается.
type PlaceholderAnalyzer struct{}

// NewPlaceholderAnalyzer создает анализатор-заглушку
func NewPlaceholderAnalyzer() *PlaceholderAnalyzer {
	return &PlaceholderAnalyzer{}
}

// Analyze возвращает пустой дескриптор для wavPath
func (PlaceholderAnalyzer) Analyze(_ context.Context, wavPath string) (*models.LipSyncDescriptor, error) {
	return &models.LipSyncDescriptor{
		Metadata: models.LipSyncMetadata{
			SoundFile: wavPath,
			Duration:  0,
		},
		MouthCues: []models.MouthCue{},
	}, nil
}
