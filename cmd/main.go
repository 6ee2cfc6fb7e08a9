package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/scorecard/internal/adapters/http/api"
	"github.com/okian/scorecard/internal/adapters/http/swagger"
	"github.com/okian/scorecard/internal/adapters/snapshot"
	"github.com/okian/scorecard/internal/adapters/ws"
	app "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/config"
	"github.com/okian/scorecard/internal/domain/course"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		os.Stderr.WriteString("invalid log_level: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	svc, hub, err := newService(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()
	defer hub.Close()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, hub).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// newService builds the service and its scoreboard hub from cfg.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, *ws.Hub, error) {
	catalog := course.Default()
	if cfg.CourseFile != "" {
		c, err := course.Load(cfg.CourseFile)
		if err != nil {
			return nil, nil, err
		}
		catalog = c
	}

	hub := ws.NewHub(ws.WithSendBuffer(cfg.WSSendBuffer))
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.SnapshotWorkers),
		app.WithQueueSize(cfg.SnapshotQueueSize),
		app.WithIdempotencySize(cfg.IdempotencySize),
		app.WithDefaultOrderMode(cfg.OrderMode()),
		app.WithCatalog(catalog),
		app.WithPublisher(hub),
	}
	if cfg.SnapshotDir != "" {
		store, err := snapshot.NewFileStore(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, app.WithSnapshotStore(store))
	}
	return app.New(opts...), hub, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes the gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if rounds, ok := stats["rounds"].(int); ok {
		metrics.UpdateActiveRounds(rounds)
	}
	if subscribers, ok := stats["subscribers"].(int); ok {
		metrics.UpdateWebsocketSubscribers(subscribers)
	}
}
