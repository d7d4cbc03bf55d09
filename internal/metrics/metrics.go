package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// QueueStats источник данных о загрузке пула перекодирования
type QueueStats interface {
	Running() int
	Waiting() int
}

// Metrics содержит все метрики приложения.
// Методы записи безопасно вызывать на nil.
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// Счетчики
	pipelineRequests *prometheus.CounterVec
	filesDeleted     *prometheus.CounterVec
	greetings        *prometheus.CounterVec

	// Гистограммы
	pipelineDuration *prometheus.HistogramVec
	stepDuration     *prometheus.HistogramVec

	// Gauge метрики
	lastSweep prometheus.Gauge
}

// New создает новый экземпляр метрик в собственном реестре
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),

		// Запросы к пайплайну
		pipelineRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_requests_total",
				Help: "Общее количество запросов к аудио пайплайну",
			},
			[]string{"mode", "status"}, // mode: chat, tts; status: success, failed
		),

		// Удаленные файлы
		filesDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "janitor_files_total",
				Help: "Файлы, обработанные очисткой",
			},
			[]string{"result"}, // deleted, failed
		),

		// Приветствия при старте
		greetings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greeting_assets_total",
				Help: "Результаты подготовки приветственных аудио",
			},
			[]string{"result"}, // generated, skipped, failed
		),

		pipelineDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_duration_seconds",
				Help:    "Время обработки запроса пайплайном в секундах",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),

		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_step_duration_seconds",
				Help:    "Время шагов пайплайна (синтез, перекодирование)",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"step"}, // synthesize, transcode
		),

		lastSweep: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "janitor_last_sweep_timestamp_seconds",
				Help: "Timestamp последней очистки",
			},
		),
	}

	// Регистрируем все метрики
	m.registry.MustRegister(
		m.pipelineRequests,
		m.filesDeleted,
		m.greetings,
		m.pipelineDuration,
		m.stepDuration,
		m.lastSweep,
	)

	return m
}

// RegisterQueue добавляет gauge метрики загрузки пула перекодирования
func (m *Metrics) RegisterQueue(stats QueueStats) {
	if m == nil {
		return
	}

	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "transcode_running",
			Help: "Количество выполняющихся процессов перекодирования",
		}, func() float64 { return float64(stats.Running()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "transcode_waiting",
			Help: "Количество задач в очереди перекодирования",
		}, func() float64 { return float64(stats.Waiting()) }),
	)
}

// RecordPipeline записывает результат обработки запроса
func (m *Metrics) RecordPipeline(mode string, success bool, seconds float64) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "failed"
	}

	m.pipelineRequests.WithLabelValues(mode, status).Inc()
	m.pipelineDuration.WithLabelValues(mode).Observe(seconds)
	m.logger.Debug("метрика пайплайна записана", zap.String("mode", mode), zap.String("status", status))
}

// ObserveStep записывает длительность шага пайплайна
func (m *Metrics) ObserveStep(step string, seconds float64) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(seconds)
}

// RecordSweep записывает итоги очистки
func (m *Metrics) RecordSweep(deleted, failed int, timestamp float64) {
	if m == nil {
		return
	}
	m.filesDeleted.WithLabelValues("deleted").Add(float64(deleted))
	m.filesDeleted.WithLabelValues("failed").Add(float64(failed))
	m.lastSweep.Set(timestamp)
}

// RecordGreeting записывает результат подготовки одного приветствия
func (m *Metrics) RecordGreeting(result string) {
	if m == nil {
		return
	}
	m.greetings.WithLabelValues(result).Inc()
}

// Handler возвращает HTTP handler для метрик
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
