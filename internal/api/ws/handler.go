package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/id"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/utils"
)

const writeWait = 10 * time.Second

// Config wires the stream handler
type Config struct {
	// Loaders maps a language to its interpreter loader
	Loaders         map[string]execution.Loader
	DefaultLanguage string
	Client          execution.ClientConfig
	Metrics         *monitoring.Metrics
	Logger          *zap.Logger
}

// Handler serves the execution stream. Each connection owns one worker.
type Handler struct {
	config   Config
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(config Config) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		config: config,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades the request and serves bridge messages until
// the peer disconnects. ?language= picks the interpreter.
func (h *Handler) HandleConnection(c *gin.Context) {
	lang := c.Query("language")
	if lang == "" {
		lang = h.config.DefaultLanguage
	}
	loader, ok := h.config.Loaders[lang]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language: " + lang})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(utils.MaxMessageSize)

	s := &stream{
		handler:  h,
		conn:     conn,
		loader:   loader,
		language: lang,
		logger: h.logger.With(
			zap.String("conn_id", id.NewConnectionID().String()),
			zap.String("correlation_id", uuid.NewString()),
			zap.String("language", lang),
		),
	}
	s.serve()
}

// stream is one connection and its dedicated client
type stream struct {
	handler  *Handler
	conn     *websocket.Conn
	loader   execution.Loader
	language string
	client   *execution.Client
	logger   *zap.Logger
}

func (s *stream) serve() {
	metrics := s.handler.config.Metrics
	if metrics != nil {
		metrics.IncWSConnections()
		defer metrics.DecWSConnections()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.client = s.dial()
	// A worker stuck in a run must not hold the socket open
	defer func() { go s.client.Close() }()

	s.logger.Info("Stream connected")
	defer s.logger.Info("Stream closed")

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.handle(ctx, data)
		if err := s.send(resp); err != nil {
			s.logger.Warn("WebSocket write error", zap.Error(err))
			return
		}
	}
}

func (s *stream) handle(ctx context.Context, data []byte) execution.Response {
	metrics := s.handler.config.Metrics

	req, err := execution.DecodeRequest(data, nil)
	if err != nil {
		if metrics != nil {
			metrics.RecordWSMessage("in", "malformed")
		}
		s.logger.Debug("Rejected message", zap.Error(err))
		return execution.Failed{Message: err.Error()}
	}
	if metrics != nil {
		metrics.RecordWSMessage("in", string(req.Kind()))
	}

	switch r := req.(type) {
	case execution.InitRequest:
		if err := s.client.Init(ctx); err != nil {
			s.logger.Warn("Interpreter init failed", zap.Error(err))
			return execution.InitFailed{ID: r.ID, Message: err.Error()}
		}
		return execution.InitComplete{ID: r.ID}

	case execution.ExecuteRequest:
		start := time.Now()
		resp, err := s.client.Execute(ctx, r.Source)
		switch {
		case errors.Is(err, execution.ErrUnresponsive):
			s.logger.Warn("Worker ignored cancellation, replacing it")
			s.replace(ctx)
			resp = execution.TimedOut{Message: execution.TimeoutMessage, Elapsed: time.Since(start)}
		case err != nil:
			resp = execution.Failed{Message: err.Error(), Elapsed: time.Since(start)}
		}

		resp = execution.Relabel(resp, r.ID)
		if metrics != nil {
			result := execution.Summarize(resp)
			elapsed := time.Duration(result.ExecutionTimeMs * float64(time.Millisecond))
			metrics.RecordExecution(s.language, string(result.Status), elapsed)
		}
		return resp
	}

	return execution.Failed{ID: req.RequestID(), Message: "unsupported request"}
}

func (s *stream) dial() *execution.Client {
	cfg := s.handler.config.Client
	cfg.Logger = s.logger
	return execution.Dial(s.loader, cfg)
}

// replace swaps an unresponsive client for a fresh, initialized one.
// The old worker is still busy, so it is terminated in the background.
func (s *stream) replace(ctx context.Context) {
	old := s.client
	go old.Close()
	s.client = s.dial()
	if err := s.client.Init(ctx); err != nil {
		s.logger.Error("Failed to reinitialize interpreter", zap.Error(err))
	}
}

func (s *stream) send(resp execution.Response) error {
	data, err := execution.EncodeResponse(resp)
	if err != nil {
		return err
	}
	if metrics := s.handler.config.Metrics; metrics != nil {
		metrics.RecordWSMessage("out", string(resp.Outcome()))
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
