package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQueue struct{ running, waiting int }

func (f fakeQueue) Running() int { return f.running }
func (f fakeQueue) Waiting() int { return f.waiting }

func TestMetrics(t *testing.T) {
	m := New(zap.NewNop())

	m.RecordPipeline("chat", true, 1.5)
	m.RecordPipeline("chat", false, 0.2)
	m.RecordPipeline("tts", true, 0.7)
	m.ObserveStep("synthesize", 0.4)
	m.RecordSweep(3, 1, 1700000000)
	m.RecordGreeting("generated")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRequests.WithLabelValues("chat", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRequests.WithLabelValues("chat", "failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.filesDeleted.WithLabelValues("deleted")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastSweep))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.greetings.WithLabelValues("generated")))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Два экземпляра не конфликтуют при регистрации
	assert.NotPanics(t, func() {
		New(zap.NewNop())
		New(zap.NewNop())
	})
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPipeline("chat", true, 1)
		m.ObserveStep("transcode", 1)
		m.RecordSweep(1, 0, 0)
		m.RecordGreeting("failed")
		m.RegisterQueue(fakeQueue{})
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(zap.NewNop())
	m.RegisterQueue(fakeQueue{running: 2, waiting: 5})
	m.RecordPipeline("tts", true, 0.1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pipeline_requests_total{mode="tts",status="success"} 1`)
	assert.Contains(t, string(body), "transcode_running 2")
	assert.Contains(t, string(body), "transcode_waiting 5")
}
