package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tachyonhq/tachyon-eval/config"
	"github.com/tachyonhq/tachyon-eval/ctxutil"
	"github.com/tachyonhq/tachyon-eval/data"
	"github.com/tachyonhq/tachyon-eval/handler"
	"github.com/tachyonhq/tachyon-eval/logging/logger"
	"github.com/tachyonhq/tachyon-eval/net/resp"
	"github.com/tachyonhq/tachyon-eval/service"
	"github.com/tachyonhq/tachyon-eval/version"
)

// App holds the wired application components.
type App struct {
	config  *config.Config
	logger  *logger.Logger
	data    *data.Data
	svc     *service.Service
	handler *handler.Handler
	server  *http.Server
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := NewApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Run()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

// NewApp loads configuration and wires the application layers.
func NewApp(configPath string) (*App, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, loggerCleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log.SetVersion(version.Version)

	d, err := data.New(cfg.Data.MongoDB, log)
	if err != nil {
		loggerCleanup()
		return nil, nil, fmt.Errorf("failed to create data layer: %w", err)
	}

	config.Watch(func(*config.Config) {
		log.Info(context.Background(), "configuration reloaded")
	})

	svc := service.New(cfg, d, log)
	h := handler.New(svc, log)

	app := &App{
		config:  cfg,
		logger:  log,
		data:    d,
		svc:     svc,
		handler: h,
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc.Shutdown(shutdownCtx)
		if err := d.Close(); err != nil {
			log.Errorf(context.Background(), "failed to close data layer: %v", err)
		}
		loggerCleanup()
	}

	return app, cleanup, nil
}

// Run starts the server and blocks until an interrupt arrives.
func (a *App) Run() error {
	if a.config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(a.traceMiddleware())
	router.Use(a.loggerMiddleware())

	a.handler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		if err := a.data.Ping(c.Request.Context()); err != nil {
			resp.Fail(c.Writer, resp.ServiceUnavailable("store unreachable"))
			return
		}
		resp.Success(c.Writer, map[string]any{
			"status":  "healthy",
			"workers": a.svc.Evaluation.WorkerMetrics(),
		})
	})

	addr := a.config.Addr()
	a.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.logger.Infof(context.Background(), "starting server on %s", addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(context.Background(), "server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info(context.Background(), "shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Errorf(ctx, "server forced to shutdown: %v", err)
		return err
	}

	a.logger.Info(context.Background(), "server exited")
	return nil
}

// traceMiddleware attaches a trace id to every request context.
func (a *App) traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, traceID := ctxutil.EnsureTraceID(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-ID", traceID)
		c.Next()
	}
}

// loggerMiddleware logs each request with method, path, status, and latency.
func (a *App) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		a.logger.Infof(c.Request.Context(), "%s %s %d %s %s",
			method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
