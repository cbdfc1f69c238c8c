/*
Package monitoring collects Prometheus metrics for the backend.

Each Metrics value owns a private prometheus.Registry so collectors can
be created per server (and per test) without duplicate registration.

Tracked:

  - HTTP requests by route template, status and latency
  - Executions by language and outcome, interpreter wall-clock time
  - Topic count, sections and dropped paragraphs per topic
  - Mounted views, WebSocket connections and messages
  - Go runtime, process and uptime

Recent execution times also feed a Window whose Summary (mean, p50, p95,
computed with gonum/stat) is reported on /health.

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
*/
package monitoring
