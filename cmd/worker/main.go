package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/document-converter/internal/bootstrap"
	"github.com/kirillkom/document-converter/internal/config"
	"github.com/kirillkom/document-converter/internal/observability/logging"
	"github.com/kirillkom/document-converter/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup("converter-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")

	app, err := bootstrap.New(ctx, cfg, "worker", workerMetrics)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeConversionRequested(ctx, func(handlerCtx context.Context, jobID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if job, err := app.Jobs.GetByID(processCtx, jobID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(job.CreatedAt))
		}

		workerMetrics.StartJob()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, jobID)
		workerMetrics.FinishJob("worker", time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
