package bootstrap

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

	"github.com/stagepass/portal/config"
	httpx "github.com/stagepass/portal/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHandler maps configuration and services onto the portal router.
func BuildHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Auth:      cfg.Services.Auth,
		Billing:   cfg.Services.Billing,
		Resources: cfg.Services.Resources,
		Contact:   cfg.Services.Contact,
		Cookies: httpx.Cookies{
			Domain: appCfg.HTTP.CookieDomain,
			Secure: appCfg.HTTP.CookieSecure,
		},
		Limiter: httpx.NewSignInLimiter(float64(appCfg.Auth.SignInRateLimit), appCfg.Auth.SignInBurst),
		Logger:  logger,
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{
			Level:   appCfg.HTTP.CompressionLevel,
			MinSize: appCfg.HTTP.CompressionMinSize,
			Logger:  logger,
		}
	}
	return httpx.NewRouter(services)
}

// StartHTTPServer creates the HTTP server and starts serving in the background.
// Listener failures other than a clean shutdown are sent on the returned channel.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, <-chan error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      BuildHandler(cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return server, errCh
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

// RunWithShutdown serves until SIGINT/SIGTERM, ctx cancellation or a listener failure.
func RunWithShutdown(ctx context.Context, cfg *HTTPServerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, errCh := StartHTTPServer(cfg)
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownErr := ShutdownHTTPServer(context.WithoutCancel(ctx), server, logger)
	if cfg.Services.Metrics != nil {
		if err := cfg.Services.Metrics.Close(); err != nil {
			logger.Warn("close statsd client failed", "error", err)
		}
	}
	return errors.Join(serveErr, shutdownErr)
}
