package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/document-converter/internal/adapters/http"
	"github.com/kirillkom/document-converter/internal/bootstrap"
	"github.com/kirillkom/document-converter/internal/config"
	"github.com/kirillkom/document-converter/internal/observability/logging"
	"github.com/kirillkom/document-converter/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup("converter-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.APIHost, cfg.APIPort)
	warnIfAddrBusy(addr)

	httpMetrics := metrics.NewHTTPServerMetrics("api")

	app, err := bootstrap.New(ctx, cfg, "api", httpMetrics)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.ConvertUC, app.SubmitUC, app.Jobs).
		WithMetrics(httpMetrics).
		Handler()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}

// warnIfAddrBusy probes the listen address so a stale instance shows up in
// the logs before ListenAndServe fails with a bind error.
func warnIfAddrBusy(addr string) {
	conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	if err != nil {
		return
	}
	_ = conn.Close()
	log.Printf("warning: %s already accepts connections, another instance may be running", addr)
}
