package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"foodlens/internal/app"
	"foodlens/internal/common/camunda"
	"foodlens/internal/common/config"
	"foodlens/internal/common/logger"
	"foodlens/internal/common/observability"
	"foodlens/internal/common/validation"
	af "foodlens/internal/workers/health/analyze-food"
	ehp "foodlens/internal/workers/health/enrich-health-profile"
	"foodlens/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting worker manager",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("searchBackend", cfg.APIs.WebSearch.Backend),
	)

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
		obs = observability.Noop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.Build(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("core initialization failed", zap.Error(err))
	}
	defer core.Close()

	if !core.KeysConfigured() {
		zapLog.Warn("api keys are not configured; analyze-food jobs will fail until they are set")
	}

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry", zap.Error(err))
	}

	zc, err := camunda.NewClient(ctx, camunda.DefaultClientConfig(cfg.Camunda.BrokerAddress), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zc.Close()

	var workers []*camunda.Worker

	if config.IsWorkerEnabled(cfg, ehp.TaskType) {
		wc := config.GetWorkerConfig(cfg, ehp.TaskType)
		handlerCfg := &ehp.Config{
			Enabled:       true,
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
			InputSchema:   inputSchema(reg, ehp.TaskType, zapLog),
		}
		if err := handlerCfg.Validate(); err != nil {
			zapLog.Fatal("invalid worker configuration", zap.String("taskType", ehp.TaskType), zap.Error(err))
		}
		handler := ehp.NewHandler(handlerCfg, core.Profiles, obs, log)
		workers = append(workers, camunda.NewWorker(zc.Raw(), ehp.TaskType, handlerCfg.MaxJobsActive, handlerCfg.Timeout, handler, log))
	}

	if config.IsWorkerEnabled(cfg, af.TaskType) {
		wc := config.GetWorkerConfig(cfg, af.TaskType)
		handlerCfg := &af.Config{
			Enabled:       true,
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
			InputSchema:   inputSchema(reg, af.TaskType, zapLog),
			EmailReports:  core.Mailer != nil,
		}
		if err := handlerCfg.Validate(); err != nil {
			zapLog.Fatal("invalid worker configuration", zap.String("taskType", af.TaskType), zap.Error(err))
		}
		deps := af.Dependencies{
			Profiles:      core.Profiles,
			Runner:        core.Orchestrator,
			Observability: obs,
			Logger:        log,
		}
		if core.Mailer != nil {
			deps.Sender = core.Mailer
		}
		handler := af.NewHandler(handlerCfg, deps)
		workers = append(workers, camunda.NewWorker(zc.Raw(), af.TaskType, handlerCfg.MaxJobsActive, handlerCfg.Timeout, handler, log))
	}

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	var srv *http.Server
	if cfg.Metrics.Address != "" {
		srv = startMetricsServer(cfg.Metrics.Address, zc, zapLog)
	}

	<-ctx.Done()
	zapLog.Info("shutting down")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Warn("metrics server shutdown", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("observability shutdown", zap.Error(err))
	}
}

func inputSchema(reg *registry.ActivityRegistry, taskType string, log *zap.Logger) *validation.Schema {
	activity, ok := reg.Find(taskType)
	if !ok {
		log.Warn("task type missing from activity registry", zap.String("taskType", taskType))
		return nil
	}
	schema, err := activity.InputValidator()
	if err != nil {
		log.Fatal("invalid input schema", zap.String("taskType", taskType), zap.Error(err))
	}
	return schema
}

func startMetricsServer(addr string, zc *camunda.Client, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := zc.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics endpoint listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
