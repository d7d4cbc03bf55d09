package audio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"voice-avatar/pkg/models"
)

var (
	// ErrQueueFull возвращается, если очередь перекодирования заполнена
	ErrQueueFull = errors.New("очередь перекодирования переполнена")
	// ErrPoolClosed возвращается после остановки пула
	ErrPoolClosed = errors.New("пул перекодирования остановлен")
)

// Pool ограничивает число одновременных процессов перекодирования.
// Задачи сверх workers ждут в очереди длиной queueSize, остальные отклоняются.
// Ожидание в очереди прерывается отменой контекста запроса.
type Pool struct {
	next      Transcoder
	pool      *ants.Pool
	slots     *semaphore.Weighted
	queueSize int64
	waiting   atomic.Int64
	closed    atomic.Bool
	logger    *zap.Logger
}

// NewPool создает пул поверх транскодера next
func NewPool(next Transcoder, workers, queueSize int, logger *zap.Logger) (*Pool, error) {
	p, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула перекодирования: %w", err)
	}

	logger.Info("пул перекодирования создан",
		zap.Int("workers", workers),
		zap.Int("queue_size", queueSize))

	return &Pool{
		next:      next,
		pool:      p,
		slots:     semaphore.NewWeighted(int64(workers)),
		queueSize: int64(queueSize),
		logger:    logger,
	}, nil
}

// Transcode ждет свободного воркера и выполняет задачу
func (p *Pool) Transcode(ctx context.Context, inputPath, outputPath string, opts models.TranscodeOptions) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	if err := p.acquire(ctx); err != nil {
		return err
	}

	done := make(chan error, 1)
	err := p.pool.Submit(func() {
		defer p.slots.Release(1)
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- p.next.Transcode(ctx, inputPath, outputPath, opts)
	})
	if err != nil {
		p.slots.Release(1)
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return fmt.Errorf("ошибка постановки задачи в пул: %w", err)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acquire занимает слот воркера, при необходимости вставая в очередь
func (p *Pool) acquire(ctx context.Context) error {
	if p.slots.TryAcquire(1) {
		return nil
	}

	if p.waiting.Add(1) > p.queueSize {
		p.waiting.Add(-1)
		p.logger.Warn("очередь перекодирования переполнена",
			zap.Int("running", p.pool.Running()),
			zap.Int64("queue_size", p.queueSize))
		return ErrQueueFull
	}
	defer p.waiting.Add(-1)

	if err := p.slots.Acquire(ctx, 1); err != nil {
		p.logger.Debug("ожидание в очереди перекодирования прервано", zap.Error(err))
		return err
	}
	return nil
}

// Running количество выполняющихся задач
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Waiting количество задач, ожидающих свободного воркера
func (p *Pool) Waiting() int {
	return int(p.waiting.Load())
}

// Close останавливает пул, дожидаясь текущих задач не дольше timeout
func (p *Pool) Close(timeout time.Duration) error {
	p.closed.Store(true)
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("ошибка остановки пула перекодирования: %w", err)
	}
	return nil
}
