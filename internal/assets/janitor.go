package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"voice-avatar/internal/metrics"
)

// SweepReport итоги одного прохода очистки
type SweepReport struct {
	Scanned   int
	Deleted   int
	Protected int
	Failed    int
}

// Janitor удаляет старые сгенерированные файлы.
// Файлы с префиксом welcome_ и подкаталоги не трогаются.
type Janitor struct {
	dir     string
	maxAge  time.Duration
	dryRun  bool
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	remove  func(name string) error
}

// NewJanitor создает задачу очистки каталога dir
func NewJanitor(dir string, maxAge time.Duration, logger *zap.Logger, m *metrics.Metrics) *Janitor {
	return &Janitor{
		dir:     dir,
		maxAge:  maxAge,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		remove:  os.Remove,
	}
}

// SetDryRun включает режим, в котором файлы только логируются
func (j *Janitor) SetDryRun(dryRun bool) {
	j.dryRun = dryRun
}

// Run выполняет очистку с настроенным максимальным возрастом
func (j *Janitor) Run(ctx context.Context) error {
	_, err := j.Sweep(ctx, j.maxAge)
	return err
}

// Sweep удаляет файлы старше maxAge
func (j *Janitor) Sweep(ctx context.Context, maxAge time.Duration) (SweepReport, error) {
	var report SweepReport

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return report, fmt.Errorf("ошибка чтения каталога %s: %w", j.dir, err)
	}

	now := j.now()
	j.logger.Info("🧹 запуск очистки старых аудио",
		zap.String("dir", j.dir),
		zap.Duration("max_age", maxAge),
		zap.Bool("dry_run", j.dryRun))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			j.logger.Warn("очистка прервана", zap.Error(err))
			return report, err
		}

		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		report.Scanned++

		if IsProtected(name) {
			report.Protected++
			continue
		}

		info, err := entry.Info()
		if err != nil {
			j.logger.Error("ошибка получения информации о файле",
				zap.String("file", name),
				zap.Error(err))
			report.Failed++
			continue
		}

		age := now.Sub(info.ModTime())
		if age <= maxAge {
			continue
		}

		if j.dryRun {
			j.logger.Info("[DRY RUN] файл был бы удален",
				zap.String("file", name),
				zap.Duration("age", age))
			report.Deleted++
			continue
		}

		if err := j.remove(filepath.Join(j.dir, name)); err != nil {
			j.logger.Error("ошибка удаления файла",
				zap.String("file", name),
				zap.Error(err))
			report.Failed++
			continue
		}

		j.logger.Info("удален старый файл",
			zap.String("file", name),
			zap.Duration("age", age))
		report.Deleted++
	}

	if !j.dryRun {
		j.metrics.RecordSweep(report.Deleted, report.Failed, float64(now.Unix()))
	}

	j.logger.Info("✅ очистка завершена",
		zap.Int("scanned", report.Scanned),
		zap.Int("deleted", report.Deleted),
		zap.Int("protected", report.Protected),
		zap.Int("failed", report.Failed))

	return report, nil
}
