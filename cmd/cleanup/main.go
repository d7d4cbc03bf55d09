package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"voice-avatar/internal/assets"
	"voice-avatar/internal/config"

	"go.uber.org/zap"
)

func main() {
	var (
		maxAge = flag.Duration("max-age", 0, "Удалять файлы старше указанного возраста (0 = CLEANUP_MAX_AGE)")
		dir    = flag.String("dir", "", "Каталог с аудио (пусто = AUDIO_DIR)")
		dryRun = flag.Bool("dry-run", false, "Показать что будет удалено без фактического удаления")
	)
	flag.Parse()

	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	if *maxAge <= 0 {
		*maxAge = cfg.Cleanup.MaxAge
	}
	if *dir == "" {
		*dir = cfg.Audio.Dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	janitor := assets.NewJanitor(*dir, *maxAge, logger, nil)
	janitor.SetDryRun(*dryRun)

	report, err := janitor.Sweep(ctx, *maxAge)
	if err != nil {
		logger.Fatal("Ошибка очистки аудио", zap.Error(err))
	}

	logger.Info("Очистка аудио завершена успешно",
		zap.String("dir", *dir),
		zap.Int("deleted", report.Deleted),
		zap.Int("failed", report.Failed),
		zap.Bool("dry_run", *dryRun))
}
