package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/disclosure"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/views"
	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/tracing"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Executor runs one program on a pre-warmed interpreter
type Executor interface {
	Execute(ctx context.Context, source string) (execution.Response, error)
	Stats() execution.PoolStats
}

// Deps are the collaborators the handlers need. Executors maps a
// language name to its pool; a language missing from the map is
// reported as unavailable.
type Deps struct {
	Registry        *registry.Registry
	Views           *views.Manager
	Renderer        *disclosure.Renderer
	Executors       map[string]Executor
	DefaultLanguage string
	Metrics         *monitoring.Metrics
	Tracer          *tracing.Tracer
	Logger          *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	registry  *registry.Registry
	views     *views.Manager
	renderer  *disclosure.Renderer
	executors map[string]Executor
	language  string
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer
	logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	h := &Handlers{
		registry:  deps.Registry,
		views:     deps.Views,
		renderer:  deps.Renderer,
		executors: deps.Executors,
		language:  deps.DefaultLanguage,
		metrics:   deps.Metrics,
		tracer:    deps.Tracer,
		logger:    deps.Logger,
	}
	if h.renderer == nil {
		h.renderer = disclosure.NewRenderer()
	}
	if h.executors == nil {
		h.executors = map[string]Executor{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// Register mounts every route on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	router.GET("/topics", h.ListTopics)
	router.GET("/topics/:key", h.GetTopic)
	router.GET("/topics/:key/render", h.RenderTopic)

	router.POST("/views", h.MountView)
	router.GET("/views/:id", h.GetView)
	router.GET("/views/:id/render", h.RenderView)
	router.POST("/views/:id/toggle/:index", h.ToggleSection)
	router.POST("/views/:id/expand-all", h.ExpandAll)
	router.POST("/views/:id/collapse-all", h.CollapseAll)
	router.DELETE("/views/:id", h.UnmountView)

	router.POST("/execute", h.Execute)

	if h.metrics != nil {
		router.GET("/metrics/json", h.MetricsJSON)
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "PyLearn Backend (Go)",
		"version": Version,
	})
}

// Health reports pool, registry and view state. The service is degraded
// when the default language has no pool.
func (h *Handlers) Health(c *gin.Context) {
	pools := make(gin.H, len(h.executors))
	for lang, exec := range h.executors {
		stats := exec.Stats()
		pools[lang] = stats
		if h.metrics != nil && lang == h.language {
			h.metrics.SetPoolAvailable(stats.Available)
		}
	}

	status := "healthy"
	if _, ok := h.executors[h.language]; !ok {
		status = "degraded"
	}

	body := gin.H{
		"status":           status,
		"default_language": h.language,
		"pools":            pools,
		"topics":           h.registry.Len(),
		"views":            h.views.Stats(),
	}
	if h.metrics != nil {
		body["execution_latency_ms"] = h.metrics.ExecutionLatency()
		body["uptime_seconds"] = int64(h.metrics.UptimeDuration() / time.Second)
	}
	c.JSON(http.StatusOK, body)
}

// MetricsJSON returns the running totals alongside the latency summary
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":            time.Now().UTC(),
		"totals":               h.metrics.Snapshot(),
		"execution_latency_ms": h.metrics.ExecutionLatency(),
		"uptime_seconds":       h.metrics.UptimeDuration().Seconds(),
	})
}

func (h *Handlers) syncViewGauge() {
	if h.metrics != nil {
		h.metrics.SetViewsMounted(h.views.Stats().Mounted)
	}
}
