package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"voice-avatar/pkg/models"
)

// GreetingPrefix префикс приветственных файлов, которые не удаляются очисткой
const GreetingPrefix = "welcome_"

// Виды сгенерированных файлов
const (
	KindMessage = "message"
	KindTTS     = "tts"
)

// Store отвечает за раскладку файлов в каталоге аудио и их публичные URL
type Store struct {
	dir       string
	urlPrefix string
	lastID    atomic.Int64
	now       func() time.Time
}

// NewStore создает хранилище поверх каталога dir.
// Файлы публикуются по адресу urlPrefix/<имя файла>.
func NewStore(dir, urlPrefix string) *Store {
	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Dir возвращает каталог хранилища
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDir создает каталог, если его нет
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог %s: %w", s.dir, err)
	}
	return nil
}

// NextID возвращает идентификатор на основе Unix времени в миллисекундах.
// Идентификаторы строго возрастают в пределах процесса.
func (s *Store) NextID() int64 {
	for {
		last := s.lastID.Load()
		id := s.now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if s.lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

// NewAsset выделяет пути для нового файла вида kind (message, tts)
func (s *Store) NewAsset(kind string) models.AudioAsset {
	id := strconv.FormatInt(s.NextID(), 10)
	return s.asset(kind+"_"+id, id)
}

// GreetingAsset возвращает пути приветствия с номером i
func (s *Store) GreetingAsset(i int) models.AudioAsset {
	id := strconv.Itoa(i)
	return s.asset(GreetingPrefix+id, id)
}

func (s *Store) asset(base, id string) models.AudioAsset {
	mp3Path := filepath.Join(s.dir, base+"."+models.FormatMP3)
	wavPath := filepath.Join(s.dir, base+"."+models.FormatWAV)
	return models.AudioAsset{
		ID:      id,
		MP3Path: mp3Path,
		WAVPath: wavPath,
		MP3URL:  s.URL(mp3Path),
		WAVURL:  s.URL(wavPath),
	}
}

// URL возвращает публичный адрес файла
func (s *Store) URL(filePath string) string {
	return path.Join(s.urlPrefix, filepath.Base(filePath))
}

// IsProtected сообщает, защищен ли файл от удаления
func IsProtected(name string) bool {
	return strings.HasPrefix(name, GreetingPrefix)
}
