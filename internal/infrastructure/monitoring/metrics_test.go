package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowSummary(t *testing.T) {
	w := NewWindow(4)
	assert.Equal(t, Summary{}, w.Summary())

	for _, v := range []float64{10, 20, 30, 40} {
		w.Add(v)
	}
	s := w.Summary()
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 25, s.Mean, 1e-9)
	assert.Equal(t, 20.0, s.P50)
	assert.Equal(t, 40.0, s.P95)
	assert.Equal(t, 40.0, s.Max)

	// Oldest sample is evicted
	w.Add(100)
	s = w.Summary()
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 47.5, s.Mean, 1e-9)
	assert.Equal(t, 100.0, s.Max)
}

func TestRecordExecution(t *testing.T) {
	m := NewMetrics()

	m.RecordExecution("python", "ok", 20*time.Millisecond)
	m.RecordExecution("python", "timeout", 5*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExecutionsTotal.WithLabelValues("python", "timeout")))
	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Executions)
	assert.Equal(t, int64(1), snap.Timeouts)
	assert.Equal(t, 2, m.ExecutionLatency().Count)
}

func TestRecordTopic(t *testing.T) {
	m := NewMetrics()
	m.RecordTopic("control-flow", 5, 1)
	m.SetTopics(4)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.SectionsParsed.WithLabelValues("control-flow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DroppedParagraphs.WithLabelValues("control-flow")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Topics))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/topics/:key", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/topics/lists", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/topics/:key", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)
}
