package models

// Форматы аудио, с которыми работает пайплайн
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// TranscodeOptions параметры перекодирования; пустые поля не передаются в ffmpeg
type TranscodeOptions struct {
	Format     string `json:"format,omitempty"`
	Bitrate    string `json:"bitrate,omitempty"` // например "192k"
	Channels   int    `json:"channels,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

// AudioAsset пара файлов MP3/WAV с общим именем и их публичные ссылки.
// WAV существует только если аудио перекодировали.
type AudioAsset struct {
	ID      string
	MP3Path string
	WAVPath string
	MP3URL  string
	WAVURL  string
}

// LipSyncMetadata описывает исходный файл для липсинка
type LipSyncMetadata struct {
	SoundFile string  `json:"soundFile"`
	Duration  float64 `json:"duration"`
}

// MouthCue один интервал положения рта
type MouthCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value string  `json:"value"`
}

// LipSyncDescriptor результат анализа липсинка
type LipSyncDescriptor struct {
	Metadata  LipSyncMetadata `json:"metadata"`
	MouthCues []MouthCue      `json:"mouthCues"`
}

// ChatRequest тело запроса POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse ответ POST /chat
type ChatResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Audio   string             `json:"audio"`
	LipSync *LipSyncDescriptor `json:"lipSync"`
}

// ConvertRequest тело запроса POST /tts/convert
type ConvertRequest struct {
	Text    string            `json:"text"`
	Options *TranscodeOptions `json:"options,omitempty"`
}

// ConvertResponse ответ POST /tts/convert
type ConvertResponse struct {
	Success bool   `json:"success"`
	MP3URL  string `json:"mp3Url"`
	WAVURL  string `json:"wavUrl,omitempty"`
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
