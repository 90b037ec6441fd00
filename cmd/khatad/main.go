// Command khatad serves the Khata credit ledger over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/xraph/khata"
	"github.com/xraph/khata/api"
	audithook "github.com/xraph/khata/audit_hook"
	"github.com/xraph/khata/export/pdf"
	"github.com/xraph/khata/export/xlsx"
	"github.com/xraph/khata/observability"
	"github.com/xraph/khata/store/backend"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("khatad: could not read .env", "error", err)
	}

	cfg, err := loadConfig(viper.New())
	if err != nil {
		slog.Error("khatad: invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("khatad: exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := backend.Open(cfg.Store)
	if err != nil {
		return err
	}

	opts, err := engineOptions(cfg, logger)
	if err != nil {
		_ = s.Close() //nolint:errcheck // already failing
		return err
	}
	k := khata.New(s, opts...)
	if err := k.Start(ctx); err != nil {
		_ = s.Close() //nolint:errcheck // already failing
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		if err := k.Stop(); err != nil {
			logger.Error("khatad: stop engine", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, k, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("khatad: listening",
			"addr", cfg.Addr,
			"base_path", cfg.BasePath,
			"store", string(cfg.Store.Driver),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("khatad: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func engineOptions(cfg Config, logger *slog.Logger) ([]khata.Option, error) {
	audit := audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
		logger.InfoContext(ctx, "audit",
			"action", evt.Action,
			"resource", evt.Resource,
			"resource_id", evt.ResourceID,
			"outcome", evt.Outcome,
			"metadata", evt.Metadata,
		)
		return nil
	}), audithook.WithLogger(logger))

	opts := []khata.Option{
		khata.WithLogger(logger),
		khata.WithCreditMultiplier(cfg.CreditMultiplier),
		khata.WithBillLimitPolicy(cfg.EnforceBillLimit),
		khata.WithNumberAttempts(cfg.NumberAttempts),
		khata.WithPlugin(&pdf.Formatter{Title: cfg.PDFTitle}),
		khata.WithPlugin(xlsx.New()),
		khata.WithPlugin(audit),
	}
	if cfg.Metrics {
		factory := observability.NewPrometheusFactory(prometheus.DefaultRegisterer)
		opts = append(opts, khata.WithPlugin(observability.NewMetricsExtension(factory)))
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
		opts = append(opts, khata.WithLocation(loc))
	}
	return opts, nil
}

func newRouter(cfg Config, k *khata.Khata, logger *slog.Logger) *gin.Engine {
	var middleware []gin.HandlerFunc
	if len(cfg.CORSOrigins) > 0 {
		middleware = append(middleware, cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}
	r := api.New(k, api.WithLogger(logger)).Router(cfg.BasePath, middleware...)

	if cfg.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		if err := k.Store().Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}
