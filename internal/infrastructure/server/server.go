package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/PyLearn/backend/internal/api/http"
	"github.com/GriffinCanCode/PyLearn/backend/internal/api/middleware"
	"github.com/GriffinCanCode/PyLearn/backend/internal/api/ws"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/content"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/disclosure"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/registry"
	"github.com/GriffinCanCode/PyLearn/backend/internal/domain/views"
	"github.com/GriffinCanCode/PyLearn/backend/internal/execution"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PyLearn/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PyLearn/backend/internal/interpreter/javascript"
	"github.com/GriffinCanCode/PyLearn/backend/internal/interpreter/python"
	"github.com/GriffinCanCode/PyLearn/backend/internal/shared/paths"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	pools   map[string]*execution.Pool
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewServer builds every component. ctx bounds content loading and
// interpreter warm-up. A language whose pool cannot start is left out and
// reported as unavailable rather than failing the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing PyLearn Server",
		zap.String("port", cfg.Server.Port),
		zap.String("language", cfg.Exec.Language),
		zap.Duration("exec_timeout", cfg.Exec.Timeout),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("backend", logger.Component("tracing"))

	// Content
	topics := registry.New()
	loader := registry.NewLoader(logger.Component("registry"))
	if err := loader.Populate(ctx, topics, registry.Sources{
		SkipSeed: cfg.Content.SkipSeed,
		Dir:      cfg.Content.Dir,
		URL:      cfg.Content.URL,
	}); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	recordContent(topics, metrics)
	viewManager := views.NewManager(topics)

	// Execution bridge
	clientCfg := execution.ClientConfig{
		Timeout: cfg.Exec.Timeout,
		Grace:   cfg.Exec.Grace,
		Logger:  logger.Component("execution"),
	}
	loaders := interpreterLoaders(cfg, logger)
	pools := startPools(ctx, cfg, loaders, clientCfg, logger.Logger)
	executors := make(map[string]apihttp.Executor, len(pools))
	for lang, pool := range pools {
		executors[lang] = pool
	}
	if pool, ok := pools[cfg.Exec.Language]; ok {
		metrics.SetPoolAvailable(pool.Stats().Available)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Registry:        topics,
		Views:           viewManager,
		Renderer:        disclosure.NewRenderer(),
		Executors:       executors,
		DefaultLanguage: cfg.Exec.Language,
		Metrics:         metrics,
		Tracer:          tracer,
		Logger:          logger.Component("http"),
	})
	handlers.Register(router)

	wsHandler := ws.NewHandler(ws.Config{
		Loaders:         loaders,
		DefaultLanguage: cfg.Exec.Language,
		Client:          clientCfg,
		Metrics:         metrics,
		Logger:          logger.Component("ws"),
	})
	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	assets, err := fs.Sub(disclosure.Assets, "assets")
	if err != nil {
		return nil, fmt.Errorf("failed to mount assets: %w", err)
	}
	router.StaticFS("/assets", http.FS(assets))

	logger.Info("Server initialized successfully",
		zap.Int("topics", topics.Len()),
		zap.Int("pools", len(pools)),
	)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		pools:   pools,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// Router exposes the handler tree
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves HTTP until Close is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains in-flight requests, then stops every worker
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}

	for lang, pool := range s.pools {
		pool.Close()
		s.logger.Info("Closed execution pool", zap.String("language", lang))
	}
	s.tracer.Close()

	_ = s.logger.Sync()
	return err
}

func recordContent(topics *registry.Registry, metrics *monitoring.Metrics) {
	list := topics.List()
	for _, t := range list {
		doc := content.Parse(t.Intro)
		metrics.RecordTopic(t.Key, len(doc.Sections), doc.Dropped)
	}
	metrics.SetTopics(len(list))
}

func interpreterLoaders(cfg *config.Config, logger *logging.Logger) map[string]execution.Loader {
	fetchCfg := python.DefaultFetchConfig()
	if cfg.Python.DistURL != "" {
		fetchCfg.URL = cfg.Python.DistURL
	}
	if cfg.Python.DistVersion != "" {
		fetchCfg.Version = cfg.Python.DistVersion
	}
	if cfg.Python.CacheDir != "" {
		fetchCfg.CacheDir = cfg.Python.CacheDir
	}
	fetchCfg.SHA256 = cfg.Python.DistSHA256

	pyCfg := python.DefaultConfig()
	pyCfg.CompilationCacheDir = paths.CompilationCache()

	pyLogger := logger.Component("python")
	return map[string]execution.Loader{
		config.LanguagePython:     python.NewLoader(python.NewFetcher(fetchCfg, pyLogger), pyCfg, pyLogger),
		config.LanguageJavaScript: javascript.NewLoader(javascript.DefaultConfig()),
	}
}

// startPools warms the configured language at full size and keeps a
// single JavaScript worker for the algorithm scratchpad
func startPools(
	ctx context.Context,
	cfg *config.Config,
	loaders map[string]execution.Loader,
	clientCfg execution.ClientConfig,
	logger *zap.Logger,
) map[string]*execution.Pool {
	sizes := map[string]int{cfg.Exec.Language: cfg.Exec.PoolSize}
	if _, ok := sizes[config.LanguageJavaScript]; !ok {
		sizes[config.LanguageJavaScript] = 1
	}

	pools := make(map[string]*execution.Pool, len(sizes))
	for lang, size := range sizes {
		start := time.Now()
		pool, err := execution.NewPool(ctx, loaders[lang], execution.PoolConfig{
			Size:   size,
			Client: clientCfg,
		})
		if err != nil {
			logger.Warn("Interpreter unavailable",
				zap.String("language", lang),
				zap.Error(err),
			)
			continue
		}
		logger.Info("Interpreter pool ready",
			zap.String("language", lang),
			zap.Int("size", size),
			zap.Duration("warmup", time.Since(start)),
		)
		pools[lang] = pool
	}
	return pools
}
