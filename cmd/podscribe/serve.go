package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kbukum/podscribe/api"
	"github.com/kbukum/podscribe/component"
	"github.com/kbukum/podscribe/jobs"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/observability"
	"github.com/kbukum/podscribe/pipeline"
	"github.com/kbukum/podscribe/server"
	"github.com/kbukum/podscribe/server/endpoint"
	"github.com/kbukum/podscribe/server/middleware"
	"github.com/kbukum/podscribe/storage"
	"github.com/kbukum/podscribe/util"
	"github.com/kbukum/podscribe/version"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP transcription job service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup("")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, nil, log)
	if err != nil {
		log.Error("startup failed", logger.ErrorFields("init", err))
		return err
	}
	if err := app.start(ctx); err != nil {
		log.Error("startup failed", logger.ErrorFields("start", err))
		_ = app.stop(context.Background())
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.stop(stopCtx)
}

// application is the wired job service: storage, pipeline and HTTP server
// registered as components in start order.
type application struct {
	cfg       *AppConfig
	log       *logger.Logger
	registry  *component.Registry
	server    *server.Server
	telemetry func(context.Context) error
}

// newApplication wires every component without starting any. A nil audio
// uses the ffmpeg adapter.
func newApplication(ctx context.Context, cfg *AppConfig, audio pipeline.AudioTools, log *logger.Logger) (*application, error) {
	serviceVersion := cfg.Version
	if serviceVersion == "" {
		serviceVersion = version.GetShortVersion()
	}
	telemetry, err := observability.Setup(ctx, cfg.Observability, cfg.Name, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		_ = telemetry(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}

	app := &application{cfg: cfg, log: log, registry: component.NewRegistry(), telemetry: telemetry}
	if err := app.wire(audio, metrics); err != nil {
		_ = telemetry(ctx)
		return nil, err
	}
	return app, nil
}

func (a *application) wire(audio pipeline.AudioTools, metrics *observability.Metrics) error {
	cfg := a.cfg

	store, err := storage.NewComponent(cfg.Storage, a.log)
	if err != nil {
		return err
	}
	orchestrator, err := buildOrchestrator(cfg, audio, metrics, a.log)
	if err != nil {
		return err
	}
	svc, err := pipeline.NewService(cfg.Pipeline, orchestrator, store.Storage(), jobs.NewRegistry(), a.log)
	if err != nil {
		return err
	}

	a.server = server.New(cfg.Server, a.log)
	a.server.ApplyMiddleware()

	engine := a.server.GinEngine()
	engine.Use(middleware.Metrics(metrics))
	engine.GET("/health", endpoint.Health(cfg.Name, a.registry.HealthAll))
	engine.GET("/info", endpoint.Info(cfg.Name))

	var mws []gin.HandlerFunc
	if cfg.Auth.Enabled {
		validate, err := middleware.NewJWTValidator(cfg.Auth)
		if err != nil {
			return err
		}
		mws = append(mws, middleware.Auth(validate))
	}
	mws = append(mws, middleware.RateLimit(cfg.Server.RateLimit))
	api.NewHandler(svc).Register(engine, mws...)

	for _, c := range []component.Component{store, svc, server.NewComponent(a.server)} {
		if err := a.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// start starts every component in registration order.
func (a *application) start(ctx context.Context) error {
	if err := a.registry.StartAll(ctx); err != nil {
		return err
	}
	for _, r := range a.server.Routes() {
		a.log.Debug("route", logger.Fields("method", r.Method, "path", r.Path, "handler", r.Handler))
	}
	a.log.Info("podscribe ready", logger.Fields(
		"addr", a.server.Addr(),
		"version", version.GetShortVersion(),
		"max_body_size", util.FormatSize(util.ParseSize(a.cfg.Server.MaxBodySize, 0)),
		"max_chunk_size", util.FormatSize(a.cfg.Pipeline.MaxChunkBytes),
		"auth", a.cfg.Auth.Enabled,
	))
	return nil
}

// stop stops components in reverse order, so running jobs drain before
// storage goes away, then flushes telemetry.
func (a *application) stop(ctx context.Context) error {
	err := a.registry.StopAll(ctx)
	if terr := a.telemetry(ctx); terr != nil {
		a.log.Warn("telemetry shutdown failed", logger.ErrorFields("telemetry", terr))
	}
	return err
}
