package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

// ExecuteRequest is the body of POST /execute
type ExecuteRequest struct {
	SourceCode string `json:"sourceCode" binding:"required"`
	Language   string `json:"language"`
}

// ExecuteResponse carries the classified outcome of one run
type ExecuteResponse struct {
	execution.Result
	Language string `json:"language"`
}

// Execute runs a program and reports ok, timeout or error
func (h *Handlers) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := utils.ValidateSource(req.SourceCode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lang := req.Language
	if lang == "" {
		lang = h.language
	}
	if lang != config.LanguagePython && lang != config.LanguageJavaScript {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language: " + lang})
		return
	}
	exec, ok := h.executors[lang]
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": lang + " interpreter is unavailable"})
		return
	}

	ctx := c.Request.Context()
	if h.tracer != nil {
		span, spanCtx := h.tracer.StartSpan(ctx, "execution.run")
		span.SetTag("language", lang)
		ctx = spanCtx
		defer func() {
			span.Finish()
			h.tracer.Submit(span)
		}()
	}

	result, err := h.run(ctx, exec, req.SourceCode)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, execution.ErrPoolTimeout) || errors.Is(err, execution.ErrPoolClosed) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("Execution failed",
			zap.String("language", lang),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		elapsed := time.Duration(result.ExecutionTimeMs * float64(time.Millisecond))
		h.metrics.RecordExecution(lang, string(result.Status), elapsed)
	}

	c.JSON(http.StatusOK, ExecuteResponse{Result: result, Language: lang})
}

// run executes source and folds an unresponsive worker into a timeout
func (h *Handlers) run(ctx context.Context, exec Executor, source string) (execution.Result, error) {
	start := time.Now()
	resp, err := exec.Execute(ctx, source)
	if errors.Is(err, execution.ErrUnresponsive) {
		return execution.Summarize(execution.TimedOut{
			Message: execution.TimeoutMessage,
			Elapsed: time.Since(start),
		}), nil
	}
	if err != nil {
		return execution.Result{}, err
	}
	return execution.Summarize(resp), nil
}
